package embedding

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultLoadTimeout bounds how long a model load may take before the
// session degrades to substring search.
const DefaultLoadTimeout = 15 * time.Second

// ErrLoadTimeout is returned when the model does not become available within
// the load timeout. The attempt is not retried.
var ErrLoadTimeout = errors.New("embedding: model load timed out")

// LoadFunc obtains the embedding model, typically by downloading or warming
// it, and returns a Provider bound to it.
type LoadFunc func(ctx context.Context) (Provider, error)

// Loader memoizes a single model load per session. Concurrent Load calls
// attach to the one in-flight attempt; after the outcome is recorded every
// later call returns it without touching the model again.
type Loader struct {
	mu      sync.Mutex
	load    LoadFunc
	timeout time.Duration

	inflight chan struct{}
	done     bool
	provider Provider
	err      error
	loads    int
}

// NewLoader creates a Loader around load. A non-positive timeout falls back
// to DefaultLoadTimeout.
func NewLoader(load LoadFunc, timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = DefaultLoadTimeout
	}
	return &Loader{load: load, timeout: timeout}
}

// Load returns the memoized provider, starting the one-and-only load attempt
// if none has run yet. ctx cancellation detaches the caller but does not
// cancel the shared attempt.
func (l *Loader) Load(ctx context.Context) (Provider, error) {
	l.mu.Lock()
	if l.done {
		p, err := l.provider, l.err
		l.mu.Unlock()
		return p, err
	}
	if l.inflight == nil {
		l.inflight = make(chan struct{})
		l.loads++
		go l.run(l.inflight)
	}
	wait := l.inflight
	l.mu.Unlock()

	select {
	case <-wait:
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.provider, l.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Loader) run(inflight chan struct{}) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	type outcome struct {
		provider Provider
		err      error
	}
	ch := make(chan outcome, 1)
	go func() {
		p, err := l.load(ctx)
		ch <- outcome{p, err}
	}()

	var out outcome
	select {
	case out = <-ch:
		if out.err != nil && errors.Is(out.err, context.DeadlineExceeded) {
			out.err = ErrLoadTimeout
		}
	case <-ctx.Done():
		// The load function is ignoring its context; abandon it.
		out = outcome{nil, ErrLoadTimeout}
	}

	l.mu.Lock()
	l.provider = out.provider
	l.err = out.err
	l.done = true
	close(inflight)
	l.mu.Unlock()
}

// Failed reports whether the load attempt has finished with an error.
// Callers must check this before expecting EmbedBatch to succeed.
func (l *Loader) Failed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done && l.err != nil
}

// Loads reports how many load attempts have started. It can never exceed 1
// for a single Loader; tests assert on it.
func (l *Loader) Loads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads
}
