package search

import (
	"strings"

	"github.com/vrcarchive/assetbrowser/internal/archive"
)

const (
	suggestMinLength = 2
	suggestLimit     = 20
)

// Suggest returns up to 20 distinct lowercase field values containing the
// partial query, drawn from the embeddable fields. Results are memoized per
// collection; Init resets the memo.
func (o *Orchestrator) Suggest(partial string) []string {
	normalized := strings.ToLower(strings.TrimSpace(partial))
	if len(normalized) < suggestMinLength {
		return nil
	}

	o.mu.Lock()
	if o.status == StatusTerminated {
		o.mu.Unlock()
		return nil
	}
	if cached, ok := o.suggest[normalized]; ok {
		o.mu.Unlock()
		return cached
	}
	items := o.items
	o.mu.Unlock()

	seen := make(map[string]bool)
	var out []string
collect:
	for _, it := range items {
		for _, field := range archive.EmbeddingFields() {
			value := strings.ToLower(it.FieldValue(field))
			if value == "" || seen[value] || !strings.Contains(value, normalized) {
				continue
			}
			seen[value] = true
			out = append(out, value)
			if len(out) == suggestLimit {
				break collect
			}
		}
	}

	o.mu.Lock()
	if o.suggest != nil {
		o.suggest[normalized] = out
	}
	o.mu.Unlock()
	return out
}
