package search

import "github.com/vrcarchive/assetbrowser/internal/archive"

// Command types accepted from the host bridge.
const (
	CommandInit      = "init"
	CommandSearch    = "search"
	CommandAbort     = "abort"
	CommandTerminate = "terminate"
)

// Response types emitted to the host bridge.
const (
	ResponseProgress = "progress"
	ResponseReady    = "ready"
	ResponseResult   = "result"
)

// Command is the serialized request envelope. Only the fields relevant to
// the command type are populated.
type Command struct {
	Type string `json:"type"`

	// init
	Items []archive.Item `json:"items,omitempty"`

	// search
	Query     string        `json:"query,omitempty"`
	Field     archive.Field `json:"field,omitempty"`
	Threshold float64       `json:"threshold,omitempty"`
}

// Response is the serialized response envelope.
type Response struct {
	Type string `json:"type"`

	// progress
	Message string `json:"message,omitempty"`

	// ready
	Degraded bool `json:"degraded,omitempty"`

	// result
	Items   []archive.Item `json:"items,omitempty"`
	Aborted bool           `json:"aborted,omitempty"`

	// ready and result both may carry an error alongside a usable payload.
	Err string `json:"error,omitempty"`
}

// Ready reports the outcome of Init: whether semantic search is available,
// and if not, why, so the host can tell the user search is degraded rather
// than silently worse.
type Ready struct {
	Degraded bool   `json:"degraded"`
	Err      string `json:"error,omitempty"`
}

// Result is the outcome of one search. Err may be present alongside a
// fallback item list; the two are not mutually exclusive.
type Result struct {
	Items   []archive.Item `json:"items"`
	Aborted bool           `json:"aborted,omitempty"`
	Err     string         `json:"error,omitempty"`
}
