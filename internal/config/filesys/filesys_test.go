package filesys

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
model:
  name: all-MiniLM-L6-v2
  loadTimeoutSeconds: 30
search:
  threshold: 0.5
  precompute: true
cache:
  backend: sqlite
  path: /var/lib/browser/emb.db
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "browser.cfg.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	prov, err := NewFilesysConfigProvider(path)
	if err != nil {
		t.Fatalf("NewFilesysConfigProvider failed: %v", err)
	}
	cfg, err := prov.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Model.Name != "all-MiniLM-L6-v2" || cfg.Model.LoadTimeoutSeconds != 30 {
		t.Fatalf("model section: %+v", cfg.Model)
	}
	if cfg.Search.Threshold != 0.5 || !cfg.Search.Precompute {
		t.Fatalf("search section: %+v", cfg.Search)
	}
	if cfg.Cache.Backend != "sqlite" {
		t.Fatalf("cache section: %+v", cfg.Cache)
	}
	// Omitted keys keep their defaults.
	if cfg.Cache.FieldLimit != 10 {
		t.Fatalf("default field limit lost: %d", cfg.Cache.FieldLimit)
	}
}

func TestMissingFile(t *testing.T) {
	if _, err := NewFilesysConfigProvider("/no/such/file.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
