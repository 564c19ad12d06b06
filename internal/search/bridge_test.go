package search

import (
	"testing"
	"time"

	"github.com/vrcarchive/assetbrowser/internal/archive"
	"github.com/vrcarchive/assetbrowser/internal/cache/inmemory"
)

func awaitResponse(t *testing.T, b *Bridge, wantType string) Response {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case r, ok := <-b.Responses():
			if !ok {
				t.Fatalf("response stream closed while waiting for %q", wantType)
			}
			if r.Type == wantType {
				return r
			}
			// Progress messages are non-terminal; skip them.
		case <-deadline:
			t.Fatalf("timed out waiting for %q response", wantType)
		}
	}
}

func TestBridgeDegradedFlow(t *testing.T) {
	orc, err := New(Config{Loader: failingLoader(), Cache: inmemory.New(0)})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	b := NewBridge(orc)

	b.Send(Command{Type: CommandInit, Items: testItems()})
	ready := awaitResponse(t, b, ResponseReady)
	if !ready.Degraded || ready.Err == "" {
		t.Fatalf("ready = %+v, want degraded with reason", ready)
	}

	b.Send(Command{Type: CommandSearch, Query: "cyber punk", Field: archive.FieldTitle})
	result := awaitResponse(t, b, ResponseResult)
	if len(result.Items) != 1 || result.Items[0].Title != "Cyber Punk Suit" {
		t.Fatalf("result items: %v", ids(result.Items))
	}

	b.Close()
	if orc.Status() != StatusTerminated {
		t.Fatal("Close must terminate the session")
	}

	// Late sends are dropped, never panic.
	b.Send(Command{Type: CommandSearch, Query: "x", Field: archive.FieldTitle})
}

func TestBridgeUnknownCommand(t *testing.T) {
	orc, err := New(Config{Loader: failingLoader(), Cache: inmemory.New(0)})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	b := NewBridge(orc)
	defer b.Close()

	b.Send(Command{Type: "reticulate"})
	res := awaitResponse(t, b, ResponseResult)
	if res.Err == "" {
		t.Fatal("unknown command must produce a deterministic error response")
	}
}
