package hnsw

import (
	"errors"
	"sync"

	"github.com/coder/hnsw"

	"github.com/vrcarchive/assetbrowser/internal/similarity"
)

// Index is an approximate-nearest-neighbor index over item embeddings,
// backed by the coder/hnsw generic graph. It powers related-item lookups;
// the exhaustive threshold scan used by search does not go through it.
type Index struct {
	mu    sync.Mutex
	graph *hnsw.Graph[string]
	dim   int
	keys  map[string]bool
}

// New creates an Index for embeddings of the given dimension.
func New(dim int) *Index {
	return &Index{
		graph: hnsw.NewGraph[string](),
		dim:   dim,
		keys:  make(map[string]bool),
	}
}

// Add inserts or replaces the embedding for the given item id.
func (x *Index) Add(id string, vec []float64) error {
	if len(vec) != x.dim {
		return errors.New("hnsw: embedding dimension mismatch")
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.graph.Add(hnsw.MakeNode(id, float32Slice(vec)))
	x.keys[id] = true
	return nil
}

// Nearest returns up to k item ids whose embeddings score at or above
// threshold against the query vector, best first.
func (x *Index) Nearest(vec []float64, k int, threshold float64) ([]string, error) {
	if len(vec) != x.dim {
		return nil, errors.New("hnsw: query dimension mismatch")
	}
	x.mu.Lock()
	defer x.mu.Unlock()

	neighbors := x.graph.Search(float32Slice(vec), k)
	ids := make([]string, 0, len(neighbors))
	for _, node := range neighbors {
		score, err := similarity.Cosine(vec, float64Slice(node.Value))
		if err != nil {
			continue
		}
		if score >= threshold {
			ids = append(ids, node.Key)
		}
	}
	return ids, nil
}

// Len reports the number of indexed items.
func (x *Index) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.keys)
}

func float32Slice(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

func float64Slice(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
