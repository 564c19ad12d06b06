package embedding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type staticProvider struct{}

func (staticProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{1, 0}
	}
	return out, nil
}

func TestLoaderSingleFlight(t *testing.T) {
	loader := NewLoader(func(ctx context.Context) (Provider, error) {
		time.Sleep(50 * time.Millisecond)
		return staticProvider{}, nil
	}, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := loader.Load(context.Background()); err != nil {
				t.Errorf("Load failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := loader.Loads(); got != 1 {
		t.Fatalf("load attempts = %d, want 1", got)
	}
	if loader.Failed() {
		t.Fatal("loader reports failed after a successful load")
	}
}

func TestLoaderTimeout(t *testing.T) {
	loader := NewLoader(func(ctx context.Context) (Provider, error) {
		// Deliberately ignores ctx to exercise the abandon path.
		time.Sleep(500 * time.Millisecond)
		return staticProvider{}, nil
	}, 30*time.Millisecond)

	_, err := loader.Load(context.Background())
	if !errors.Is(err, ErrLoadTimeout) {
		t.Fatalf("err = %v, want ErrLoadTimeout", err)
	}
	if !loader.Failed() {
		t.Fatal("loader must report failed after timeout")
	}

	// Failure is memoized: no retry, the same error comes back immediately.
	start := time.Now()
	_, err = loader.Load(context.Background())
	if !errors.Is(err, ErrLoadTimeout) {
		t.Fatalf("second err = %v, want ErrLoadTimeout", err)
	}
	if time.Since(start) > 20*time.Millisecond {
		t.Fatal("second Load did not short-circuit")
	}
	if got := loader.Loads(); got != 1 {
		t.Fatalf("load attempts = %d, want 1", got)
	}
}

func TestLoaderPropagatesLoadError(t *testing.T) {
	boom := errors.New("no such model")
	loader := NewLoader(func(ctx context.Context) (Provider, error) {
		return nil, boom
	}, time.Second)

	if _, err := loader.Load(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if !loader.Failed() {
		t.Fatal("loader must report failed")
	}
}

func TestLoaderCallerContextDetaches(t *testing.T) {
	release := make(chan struct{})
	loader := NewLoader(func(ctx context.Context) (Provider, error) {
		<-release
		return staticProvider{}, nil
	}, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := loader.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	// The shared attempt keeps going and later callers see its outcome.
	close(release)
	if _, err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load after release failed: %v", err)
	}
	if got := loader.Loads(); got != 1 {
		t.Fatalf("load attempts = %d, want 1", got)
	}
}
