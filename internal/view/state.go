// Package view drives a page's view state from parameter changes: it opens a
// request session per change, runs the load, and commits the outcome only
// while that session is still the page's current one.
package view

import (
	"github.com/sells-group/site-advisor/internal/fetcher"
)

// Phase is the lifecycle stage of a page.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// NoResultsNotice accompanies a successful but empty result.
const NoResultsNotice = "추천 결과가 비어 있습니다."

// State is a snapshot of a page. On success Data is set and ErrorMessage is
// empty; on error Data keeps its last committed value.
type State[T any] struct {
	Phase        Phase           `json:"phase" yaml:"phase"`
	Data         T               `json:"data" yaml:"data"`
	HasData      bool            `json:"has_data" yaml:"has_data"`
	ErrorMessage string          `json:"error,omitempty" yaml:"error,omitempty"`
	Notice       string          `json:"notice,omitempty" yaml:"notice,omitempty"`
	DebugPayload fetcher.Payload `json:"debug_payload,omitempty" yaml:"-"`
	Generation   uint64          `json:"generation" yaml:"generation"`
}

// Settled reports whether no load is in flight.
func (s State[T]) Settled() bool {
	return s.Phase != PhaseLoading
}

// Outcome is the result of one load.
type Outcome[T any] struct {
	Data T
	// Empty marks a legitimate "no matches" result.
	Empty bool
	// Payload is the raw backend response, kept for debugging.
	Payload fetcher.Payload
}
