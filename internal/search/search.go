// Package search implements the session orchestrator: it owns the item
// collection, the embedding model lifecycle and the embedding cache, and
// resolves every search request to a ranked, substring or aborted result.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/vrcarchive/assetbrowser/internal/archive"
	"github.com/vrcarchive/assetbrowser/internal/cache"
	"github.com/vrcarchive/assetbrowser/internal/embedding"
	"github.com/vrcarchive/assetbrowser/internal/similarity"
	hnswindex "github.com/vrcarchive/assetbrowser/internal/similarity/hnsw"
)

// DefaultThreshold is the minimum cosine score for a semantic match when a
// request does not carry its own threshold.
const DefaultThreshold = 0.4

// embedChunkSize bounds how many uncached texts are sent to the provider per
// call, so aborts are honored between chunks.
const embedChunkSize = 50

// ErrTerminated is returned for every command issued after Terminate.
var ErrTerminated = errors.New("search: session terminated")

var errAborted = errors.New("search: aborted")

// Status describes the session lifecycle.
type Status int

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusReady
	StatusDegraded
	StatusTerminated
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusDegraded:
		return "degraded"
	case StatusTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Config carries the orchestrator's collaborators and tuning knobs.
type Config struct {
	// Loader obtains the embedding model; required.
	Loader *embedding.Loader
	// Cache stores computed embeddings. nil disables caching; the session
	// still works, every search just recomputes.
	Cache cache.Cache
	// Threshold overrides DefaultThreshold when positive.
	Threshold float64
	// Precompute eagerly embeds every embeddable field after a successful
	// Init, as a cancellable background task.
	Precompute bool
	// Notify receives non-terminal progress messages; may be nil.
	Notify func(message string)
	// Logger receives diagnostics; nil discards them.
	Logger *log.Logger
}

// Orchestrator is one search session. All state transitions happen inside
// its methods; the host only talks to it through commands.
type Orchestrator struct {
	id        string
	loader    *embedding.Loader
	cache     cache.Cache
	threshold float64
	eager     bool
	notify    func(string)
	log       *log.Logger

	mu       sync.Mutex
	status   Status
	items    []archive.Item
	provider embedding.Provider
	loadErr  error
	current  *searchToken
	bgCancel context.CancelFunc
	bgDone   chan struct{}
	related  *hnswindex.Index
	suggest  map[string][]string
}

// New creates a session orchestrator. The Loader is the only required
// collaborator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Loader == nil {
		return nil, errors.New("search: Config.Loader is required")
	}
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	c := cfg.Cache
	if c == nil {
		c = nopCache{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Orchestrator{
		id:        uuid.New().String(),
		loader:    cfg.Loader,
		cache:     c,
		threshold: threshold,
		eager:     cfg.Precompute,
		notify:    cfg.Notify,
		log:       logger,
		suggest:   make(map[string][]string),
	}, nil
}

// ID returns the session's unique id.
func (o *Orchestrator) ID() string { return o.id }

// Status returns the current lifecycle state.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Init stores the item collection and triggers the model load. It is
// idempotent with respect to the load: a second Init while a load is in
// flight attaches to it instead of starting another. The returned Ready
// reports whether the session is degraded to substring search and why.
func (o *Orchestrator) Init(ctx context.Context, items []archive.Item) (Ready, error) {
	o.mu.Lock()
	if o.status == StatusTerminated {
		o.mu.Unlock()
		return Ready{}, ErrTerminated
	}
	o.stopPrecomputeLocked()
	o.items = append([]archive.Item(nil), items...)
	o.suggest = make(map[string][]string)
	if o.status == StatusUninitialized {
		o.status = StatusLoading
	}
	o.mu.Unlock()

	o.progress("Loading embedding model...")
	provider, err := o.loader.Load(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status == StatusTerminated {
		return Ready{}, ErrTerminated
	}
	if err != nil {
		o.status = StatusDegraded
		o.loadErr = err
		o.log.Printf("ERROR: session %s: model load failed: %v", o.id, err)
		return Ready{Degraded: true, Err: err.Error()}, nil
	}
	o.status = StatusReady
	o.provider = provider
	o.loadErr = nil
	if o.eager {
		o.startPrecomputeLocked()
	}
	return Ready{}, nil
}

// Request is one search command.
type Request struct {
	Query string        `json:"query"`
	Field archive.Field `json:"field"`
	// Threshold overrides the session default when positive.
	Threshold float64 `json:"threshold,omitempty"`
}

// Search resolves a request to a result. It never blocks forever and never
// panics across this boundary: failures degrade to substring matching with
// the error attached. Starting a new search aborts any prior in-flight one.
func (o *Orchestrator) Search(ctx context.Context, req Request) Result {
	o.mu.Lock()
	if o.status == StatusTerminated {
		o.mu.Unlock()
		return Result{Err: ErrTerminated.Error()}
	}
	if o.current != nil {
		o.current.abort()
	}
	tok := &searchToken{}
	o.current = tok
	items := o.items
	status := o.status
	provider := o.provider
	o.mu.Unlock()

	res := o.runSearch(ctx, tok, status, provider, items, req)

	o.mu.Lock()
	if o.current == tok {
		// The abort flag dies with its token; it cannot leak into the
		// next request.
		o.current = nil
	}
	o.mu.Unlock()
	return res
}

// Abort cooperatively cancels the in-flight search, if any.
func (o *Orchestrator) Abort() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current != nil {
		o.current.abort()
	}
}

// Terminate releases every resource held by the session: the in-flight
// search, the background precompute task, the item collection and the cache
// handle. Every later command fails with ErrTerminated.
func (o *Orchestrator) Terminate() error {
	o.mu.Lock()
	if o.status == StatusTerminated {
		o.mu.Unlock()
		return nil
	}
	o.status = StatusTerminated
	if o.current != nil {
		o.current.abort()
		o.current = nil
	}
	o.stopPrecomputeLocked()
	done := o.bgDone
	o.items = nil
	o.provider = nil
	o.related = nil
	o.suggest = nil
	o.mu.Unlock()

	if done != nil {
		<-done
	}
	return o.cache.Close()
}

func (o *Orchestrator) runSearch(ctx context.Context, tok *searchToken, status Status, provider embedding.Provider, items []archive.Item, req Request) Result {
	normalized := strings.ToLower(strings.TrimSpace(req.Query))
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = o.threshold
	}

	if tok.aborted(ctx) {
		return abortedResult()
	}

	// Empty query is a pass-through, not an error: the host gets the full
	// collection in its original order.
	if normalized == "" {
		return Result{Items: items}
	}

	// Identifier fields are matched exactly regardless of model state.
	if archive.IsIdentifier(req.Field) {
		return Result{Items: exactMatch(items, req.Field, normalized)}
	}

	if status != StatusReady || provider == nil {
		return Result{Items: substringMatch(items, req.Field, normalized)}
	}

	o.progress("Processing search...")
	res, err := o.semanticSearch(ctx, tok, provider, items, req.Field, req.Query, normalized, threshold)
	if err != nil {
		if errors.Is(err, errAborted) {
			return abortedResult()
		}
		o.log.Printf("ERROR: session %s: semantic search failed, falling back to substring: %v", o.id, err)
		return Result{Items: substringMatch(items, req.Field, normalized), Err: err.Error()}
	}
	return res
}

func (o *Orchestrator) semanticSearch(ctx context.Context, tok *searchToken, provider embedding.Provider, items []archive.Item, field archive.Field, query, normalized string, threshold float64) (Result, error) {
	qvecs, err := provider.EmbedBatch(ctx, []string{query})
	if err != nil {
		return Result{}, fmt.Errorf("embed query: %w", err)
	}
	if len(qvecs) == 0 {
		return Result{}, errors.New("provider returned no query embedding")
	}
	qvec := qvecs[0]
	if tok.aborted(ctx) {
		return Result{}, errAborted
	}

	// First pass: find which field values still need embedding.
	var missIdx []int
	var missTexts []string
	for i, it := range items {
		text := it.FieldValue(field)
		if text == "" {
			continue
		}
		if _, ok := o.cache.Get(it.AvatarID, field); !ok {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, text)
		}
	}

	// Embed the misses in bounded chunks, honoring aborts between chunks.
	for start := 0; start < len(missTexts); start += embedChunkSize {
		if tok.aborted(ctx) {
			return Result{}, errAborted
		}
		end := start + embedChunkSize
		if end > len(missTexts) {
			end = len(missTexts)
		}
		vecs, err := provider.EmbedBatch(ctx, missTexts[start:end])
		if err != nil {
			return Result{}, fmt.Errorf("embed %s values: %w", field, err)
		}
		if len(vecs) != end-start {
			return Result{}, fmt.Errorf("provider returned %d vectors for %d texts", len(vecs), end-start)
		}
		for j, vec := range vecs {
			o.cache.Put(items[missIdx[start+j]].AvatarID, field, vec)
		}
	}

	type scored struct {
		item  archive.Item
		score float64
	}
	var hits []scored
	for _, it := range items {
		if tok.aborted(ctx) {
			return Result{}, errAborted
		}
		text := it.FieldValue(field)
		if text == "" {
			continue
		}
		vec, ok := o.cache.Get(it.AvatarID, field)
		if !ok {
			// Evicted between the two passes; recompute inline.
			vecs, err := provider.EmbedBatch(ctx, []string{text})
			if err != nil || len(vecs) == 0 {
				return Result{}, fmt.Errorf("embed %s for %s: %w", field, it.AvatarID, err)
			}
			vec = vecs[0]
			o.cache.Put(it.AvatarID, field, vec)
		}
		score, err := similarity.Cosine(qvec, vec)
		if err != nil {
			return Result{}, fmt.Errorf("score %s: %w", it.AvatarID, err)
		}
		if score >= threshold {
			hits = append(hits, scored{item: it, score: score})
		}
	}
	if tok.aborted(ctx) {
		return Result{}, errAborted
	}

	// Stable descending sort: ties keep their collection order.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	if len(hits) == 0 {
		// Recall over precision: a looser substring match beats showing
		// the user nothing.
		return Result{Items: substringMatch(items, field, normalized)}, nil
	}
	out := make([]archive.Item, len(hits))
	for i, h := range hits {
		out[i] = h.item
	}
	return Result{Items: out}, nil
}

func (o *Orchestrator) progress(message string) {
	if o.notify != nil {
		o.notify(message)
	}
}

// searchToken tracks cooperative cancellation for one in-flight search.
type searchToken struct {
	cancelled atomic.Bool
}

func (t *searchToken) abort() { t.cancelled.Store(true) }

func (t *searchToken) aborted(ctx context.Context) bool {
	return t.cancelled.Load() || ctx.Err() != nil
}

func abortedResult() Result {
	return Result{Items: []archive.Item{}, Aborted: true, Err: "search aborted"}
}

func exactMatch(items []archive.Item, field archive.Field, normalized string) []archive.Item {
	out := []archive.Item{}
	for _, it := range items {
		if strings.ToLower(it.FieldValue(field)) == normalized {
			out = append(out, it)
		}
	}
	return out
}

// substringMatch is the degraded and fallback matching rule: plain
// case-insensitive containment, not space-insensitive.
func substringMatch(items []archive.Item, field archive.Field, normalized string) []archive.Item {
	out := []archive.Item{}
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.FieldValue(field)), normalized) {
			out = append(out, it)
		}
	}
	return out
}

// nopCache is the always-cold cache used when none is configured.
type nopCache struct{}

func (nopCache) Get(string, archive.Field) ([]float64, bool) { return nil, false }
func (nopCache) Put(string, archive.Field, []float64)        {}
func (nopCache) Clear()                                      {}
func (nopCache) Close() error                                { return nil }
