// Package sqlitecache persists embeddings in a SQLite database so unchanged
// items keep their vectors across sessions. Rows are tagged with the model
// name that produced them; vectors from another model are never served.
package sqlitecache

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vrcarchive/assetbrowser/internal/archive"
)

const schema = `
CREATE TABLE IF NOT EXISTS embeddings (
	item_id    TEXT NOT NULL,
	field      TEXT NOT NULL,
	model      TEXT NOT NULL,
	vec        BLOB NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (item_id, field, model)
)`

// Cache is a durable embedding cache backed by SQLite. Read and write
// failures surface as cache misses so a broken database degrades to a cold
// cache rather than breaking search.
type Cache struct {
	mu    sync.Mutex
	db    *sql.DB
	model string
}

// Open creates or opens the cache database at path for the given model name.
func Open(path, model string) (*Cache, error) {
	if model == "" {
		return nil, fmt.Errorf("sqlitecache: model name is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitecache: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitecache: ensure schema: %w", err)
	}
	return &Cache{db: db, model: model}, nil
}

// Get returns the cached vector for (itemID, field) produced by this cache's
// model, or a miss.
func (c *Cache) Get(itemID string, field archive.Field) ([]float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var blob []byte
	err := c.db.QueryRow(
		`SELECT vec FROM embeddings WHERE item_id = ? AND field = ? AND model = ?`,
		itemID, string(field), c.model,
	).Scan(&blob)
	if err != nil {
		return nil, false
	}
	vec, err := DecodeVector(blob)
	if err != nil {
		return nil, false
	}
	return vec, true
}

// Put stores or replaces the vector for (itemID, field).
func (c *Cache) Put(itemID string, field archive.Field, vec []float64) {
	blob, err := EncodeVector(vec)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = c.db.Exec(
		`INSERT OR REPLACE INTO embeddings (item_id, field, model, vec, created_at) VALUES (?, ?, ?, ?, ?)`,
		itemID, string(field), c.model, blob, time.Now().Unix(),
	)
}

// Clear drops every vector stored for this cache's model. Entries from other
// models are left for their own sessions.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = c.db.Exec(`DELETE FROM embeddings WHERE model = ?`, c.model)
}

// Close releases the database handle.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Close()
}
