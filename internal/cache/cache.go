package cache

import "github.com/vrcarchive/assetbrowser/internal/archive"

// Cache stores embedding vectors keyed by (item id, field). Implementations
// report failures as misses: search correctness never depends on a hit, only
// performance does.
type Cache interface {
	Get(itemID string, field archive.Field) ([]float64, bool)
	Put(itemID string, field archive.Field, vec []float64)
	Clear()
	Close() error
}

// Key builds the composite cache key for one (item, field) embedding.
func Key(itemID string, field archive.Field) string {
	return itemID + "_" + string(field)
}
