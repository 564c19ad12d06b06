package search

import (
	"context"
	"fmt"

	"github.com/vrcarchive/assetbrowser/internal/archive"
	"github.com/vrcarchive/assetbrowser/internal/embedding"
	hnswindex "github.com/vrcarchive/assetbrowser/internal/similarity/hnsw"
)

// startPrecomputeLocked launches the background embedding task. Caller holds
// o.mu and has already verified the session is Ready.
func (o *Orchestrator) startPrecomputeLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	o.bgCancel = cancel
	o.bgDone = done
	go o.precompute(ctx, done, o.provider, o.items)
}

// stopPrecomputeLocked cancels the background task if one is running.
// Caller holds o.mu.
func (o *Orchestrator) stopPrecomputeLocked() {
	if o.bgCancel != nil {
		o.bgCancel()
		o.bgCancel = nil
	}
}

// precompute eagerly embeds every embeddable field of every item through the
// shared cache, then builds the related-item index from the description
// vectors. It shares no loop state with foreground searches; the cache is
// the only meeting point.
func (o *Orchestrator) precompute(ctx context.Context, done chan struct{}, provider embedding.Provider, items []archive.Item) {
	defer close(done)

	var descIDs []string
	var descVecs [][]float64

	for _, field := range archive.EmbeddingFields() {
		if ctx.Err() != nil {
			return
		}
		o.progress(fmt.Sprintf("Computing %s embeddings...", field))

		var idx []int
		var texts []string
		for i, it := range items {
			if it.FieldValue(field) == "" {
				continue
			}
			idx = append(idx, i)
			texts = append(texts, it.FieldValue(field))
		}

		for start := 0; start < len(texts); start += embedChunkSize {
			if ctx.Err() != nil {
				return
			}
			end := start + embedChunkSize
			if end > len(texts) {
				end = len(texts)
			}

			// Reuse anything a foreground search already cached.
			for k := start; k < end; k++ {
				it := items[idx[k]]
				vec, ok := o.cache.Get(it.AvatarID, field)
				if !ok {
					vecs, err := provider.EmbedBatch(ctx, []string{texts[k]})
					if err != nil || len(vecs) == 0 {
						o.log.Printf("ERROR: session %s: precompute %s: %v", o.id, field, err)
						return
					}
					vec = vecs[0]
					o.cache.Put(it.AvatarID, field, vec)
				}
				if field == archive.FieldDescription {
					descIDs = append(descIDs, it.AvatarID)
					descVecs = append(descVecs, vec)
				}
			}
		}
	}

	if ctx.Err() != nil || len(descVecs) == 0 {
		return
	}
	index := hnswindex.New(len(descVecs[0]))
	for i, id := range descIDs {
		if err := index.Add(id, descVecs[i]); err != nil {
			o.log.Printf("ERROR: session %s: index %s: %v", o.id, id, err)
		}
	}

	o.mu.Lock()
	if o.status == StatusReady {
		o.related = index
	}
	o.mu.Unlock()
	o.progress("Embeddings ready")
}

// Related returns up to k items most similar to the given item's
// description. It returns nothing until the background index has been built;
// related-item lookup is an accelerator, not a search path.
func (o *Orchestrator) Related(ctx context.Context, itemID string, k int) ([]archive.Item, error) {
	o.mu.Lock()
	status := o.status
	provider := o.provider
	index := o.related
	items := o.items
	o.mu.Unlock()

	if status == StatusTerminated {
		return nil, ErrTerminated
	}
	if status != StatusReady || index == nil || k <= 0 {
		return nil, nil
	}

	var self *archive.Item
	for i := range items {
		if items[i].AvatarID == itemID {
			self = &items[i]
			break
		}
	}
	if self == nil || self.Description == "" {
		return nil, nil
	}

	vec, ok := o.cache.Get(itemID, archive.FieldDescription)
	if !ok {
		vecs, err := provider.EmbedBatch(ctx, []string{self.Description})
		if err != nil || len(vecs) == 0 {
			return nil, fmt.Errorf("embed description for %s: %w", itemID, err)
		}
		vec = vecs[0]
		o.cache.Put(itemID, archive.FieldDescription, vec)
	}

	// Ask for one extra neighbor so the item itself can be dropped.
	ids, err := index.Nearest(vec, k+1, 0)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]archive.Item, len(items))
	for _, it := range items {
		byID[it.AvatarID] = it
	}
	out := make([]archive.Item, 0, k)
	for _, id := range ids {
		if id == itemID {
			continue
		}
		if it, found := byID[id]; found {
			out = append(out, it)
		}
		if len(out) == k {
			break
		}
	}
	return out, nil
}
