package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/vrcarchive/assetbrowser/internal/archive"
	"github.com/vrcarchive/assetbrowser/internal/cache"
	"github.com/vrcarchive/assetbrowser/internal/cache/inmemory"
	"github.com/vrcarchive/assetbrowser/internal/cache/sqlitecache"
	"github.com/vrcarchive/assetbrowser/internal/config"
	"github.com/vrcarchive/assetbrowser/internal/config/filesys"
	"github.com/vrcarchive/assetbrowser/internal/embedding"
	"github.com/vrcarchive/assetbrowser/internal/embedding/openai"
	"github.com/vrcarchive/assetbrowser/internal/search"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		dataPath   = flag.String("data", "", "path to JSON item collection")
		query      = flag.String("query", "", "search query")
		field      = flag.String("field", "description", "field to search")
	)
	flag.Parse()

	var provider config.Provider
	if *configPath != "" {
		p, err := filesys.NewFilesysConfigProvider(*configPath)
		if err != nil {
			log.Fatalf("config provider: %v", err)
		}
		provider = p
	}
	cfg, err := config.Load(provider, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	items, err := loadItems(*dataPath)
	if err != nil {
		log.Fatalf("load items: %v", err)
	}

	client := openai.NewClient(cfg.Model.APIKey, cfg.Model.Name, cfg.Model.Endpoint)
	loader := embedding.NewLoader(func(ctx context.Context) (embedding.Provider, error) {
		// Warm the model with a single probe so load failures surface now,
		// not in the middle of the first search.
		if _, err := client.EmbedBatch(ctx, []string{"warmup"}); err != nil {
			return nil, err
		}
		return client, nil
	}, time.Duration(cfg.Model.LoadTimeoutSeconds)*time.Second)

	var store cache.Cache
	switch cfg.Cache.Backend {
	case "sqlite":
		store, err = sqlitecache.Open(cfg.Cache.Path, cfg.Model.Name)
		if err != nil {
			log.Fatalf("open cache: %v", err)
		}
	default:
		store = inmemory.New(cfg.Cache.FieldLimit)
	}

	orc, err := search.New(search.Config{
		Loader:     loader,
		Cache:      store,
		Threshold:  cfg.Search.Threshold,
		Precompute: cfg.Search.Precompute,
		Notify:     func(message string) { fmt.Fprintln(os.Stderr, message) },
		Logger:     log.New(os.Stderr, "", log.Ldate|log.Ltime),
	})
	if err != nil {
		log.Fatalf("create session: %v", err)
	}
	defer orc.Terminate()

	ready, err := orc.Init(context.Background(), items)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	if ready.Degraded {
		fmt.Fprintf(os.Stderr, "semantic search unavailable (%s); using substring matching\n", ready.Err)
	}

	res := orc.Search(context.Background(), search.Request{
		Query: *query,
		Field: archive.Field(*field),
	})
	if res.Err != "" {
		fmt.Fprintf(os.Stderr, "search warning: %s\n", res.Err)
	}
	for _, it := range res.Items {
		fmt.Printf("%s\t%s\t%s\n", it.AvatarID, it.Title, it.Author)
	}
	fmt.Fprintf(os.Stderr, "%d of %d items\n", len(res.Items), len(items))
}

func loadItems(path string) ([]archive.Item, error) {
	if path == "" {
		return sampleItems(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []archive.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func sampleItems() []archive.Item {
	return []archive.Item{
		{
			AvatarID:    "avtr_0001",
			UserID:      "usr_alpha",
			Title:       "Cyber Punk Suit",
			Author:      "NeonForge",
			Description: "Futuristic armored suit with glowing circuit trims.",
			DateTime:    "2024-03-11 | 18:42",
			Version:     "v4",
			Size:        "12.4 MB",
		},
		{
			AvatarID:    "avtr_0002",
			UserID:      "usr_beta",
			Title:       "Forest Spirit",
			Author:      "MossWorks",
			Description: "Leafy woodland guardian with antlers and fireflies.",
			DateTime:    "2023-11-02 | 09:15",
			Version:     "v2",
			Size:        "8.1 MB",
		},
		{
			AvatarID:    "avtr_0003",
			UserID:      "usr_gamma",
			Title:       "Retro Diner Bot",
			Author:      "ChromeCafe",
			Description: "Fifties style service robot with a milkshake tray.",
			DateTime:    "2024-01-27 | 21:03",
			Version:     "v7",
			Size:        "15.9 MB",
		},
	}
}
