// Package session tracks request generations so that only the most recently
// opened request for a page may mutate that page's state.
package session

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
)

var (
	// ErrSuperseded is the cancel cause of a session replaced by a newer one.
	ErrSuperseded = eris.New("session superseded")
	// ErrUnmounted is the cancel cause of a session whose page was closed.
	ErrUnmounted = eris.New("page unmounted")
)

// Session is one logical query attempt. It is never reused.
type Session struct {
	generation uint64
	ctx        context.Context
	cancel     context.CancelCauseFunc
}

// Generation returns the session's generation number.
func (s *Session) Generation() uint64 {
	return s.generation
}

// Context returns the context bound to the session. It is done once the
// session is cancelled; transport calls made with it are aborted.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Cancelled reports whether the session has been cancelled.
func (s *Session) Cancelled() bool {
	return s.ctx.Err() != nil
}

// Err returns the cancel cause, or nil while the session is live.
func (s *Session) Err() error {
	if s.ctx.Err() == nil {
		return nil
	}
	return context.Cause(s.ctx)
}

// Cancel cancels the session with the given cause.
func (s *Session) Cancel(cause error) {
	s.cancel(cause)
}

// Tracker hands out sessions for a single page. Each page owns its own
// tracker; nothing is shared between trackers.
type Tracker struct {
	mu      sync.Mutex
	current *Session
	gen     uint64
	closed  bool
}

// NewTracker creates a tracker with generation zero.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Open starts a new session with generation = previous + 1 and cancels the
// previous session. After Close, Open returns an already-cancelled session
// that is never current.
func (t *Tracker) Open(parent context.Context) *Session {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancelCause(parent)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	s := &Session{generation: t.gen, ctx: ctx, cancel: cancel}

	if t.current != nil {
		t.current.cancel(ErrSuperseded)
	}
	if t.closed {
		cancel(ErrUnmounted)
		t.current = nil
		return s
	}
	t.current = s
	return s
}

// Current returns the generation of the most recently opened session.
func (t *Tracker) Current() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen
}

// IsCurrent reports whether s is the session allowed to apply effects.
func (t *Tracker) IsCurrent(s *Session) bool {
	if s == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.closed && t.current == s && s.generation == t.gen
}

// Cancel cancels the current session without opening a new one, e.g. when
// the page's parameters are cleared. The generation is bumped so a late
// completion of the cancelled session can never be current again.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != nil {
		t.current.cancel(ErrSuperseded)
		t.current = nil
	}
	t.gen++
}

// Close cancels the current session and marks the page unmounted.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	if t.current != nil {
		t.current.cancel(ErrUnmounted)
		t.current = nil
	}
}

// Closed reports whether Close has been called.
func (t *Tracker) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
