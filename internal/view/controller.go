package view

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/site-advisor/internal/fetcher"
	"github.com/sells-group/site-advisor/internal/session"
)

// LoadFunc performs the request for params. ctx is the session's context and
// is cancelled when the session is superseded or the page is closed.
type LoadFunc[P, T any] func(ctx context.Context, params P) (Outcome[T], error)

// Validator rejects parameters that must not trigger a request. Its error
// message becomes the idle notice.
type Validator[P any] func(params P) error

// Controller owns the view state of one page.
type Controller[P, T any] struct {
	name     string
	load     LoadFunc[P, T]
	validate Validator[P]
	parent   context.Context
	tracker  *session.Tracker

	mu      sync.Mutex
	state   State[T]
	changed chan struct{}
	wg      sync.WaitGroup
}

// NewController creates an idle controller. parent bounds every session the
// controller opens; validate may be nil.
func NewController[P, T any](parent context.Context, name string, load LoadFunc[P, T], validate Validator[P]) *Controller[P, T] {
	if parent == nil {
		parent = context.Background()
	}
	return &Controller[P, T]{
		name:     name,
		load:     load,
		validate: validate,
		parent:   parent,
		tracker:  session.NewTracker(),
		state:    State[T]{Phase: PhaseIdle},
		changed:  make(chan struct{}),
	}
}

// Name returns the page name used in logs.
func (c *Controller[P, T]) Name() string {
	return c.name
}

// Update applies new parameters. Invalid parameters cancel any in-flight
// load and leave the page idle; valid ones supersede the in-flight load and
// start a new one. It returns the generation the page is now at.
func (c *Controller[P, T]) Update(params P) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tracker.Closed() {
		return c.state.Generation
	}

	if c.validate != nil {
		if err := c.validate(params); err != nil {
			c.tracker.Cancel()
			c.state.Phase = PhaseIdle
			c.state.ErrorMessage = ""
			c.state.Notice = err.Error()
			c.state.Generation = c.tracker.Current()
			c.notifyLocked()
			return c.state.Generation
		}
	}

	s := c.tracker.Open(c.parent)
	c.state.Phase = PhaseLoading
	c.state.ErrorMessage = ""
	c.state.Notice = ""
	c.state.Generation = s.Generation()
	c.notifyLocked()

	c.wg.Add(1)
	go c.run(s, params)
	return s.Generation()
}

func (c *Controller[P, T]) run(s *session.Session, params P) {
	defer c.wg.Done()

	out, err := c.load(s.Context(), params)

	c.mu.Lock()
	defer c.mu.Unlock()

	// The currency check and the commit share c.mu with Update, so no newer
	// session can be opened in between.
	if !c.tracker.IsCurrent(s) {
		zap.L().Debug("view: dropping stale completion",
			zap.String("page", c.name),
			zap.Uint64("generation", s.Generation()),
			zap.Uint64("current", c.tracker.Current()),
		)
		return
	}

	if err != nil {
		if fetcher.IsCancelled(err) || errors.Is(err, context.Canceled) {
			// Only the parent context can cancel a current session.
			c.state.Phase = PhaseIdle
			c.notifyLocked()
			return
		}
		c.state.Phase = PhaseError
		c.state.ErrorMessage = err.Error()
		c.state.Notice = ""
		if he, ok := fetcher.AsHTTPStatus(err); ok {
			c.state.DebugPayload = he.Payload
		}
		zap.L().Warn("view: load failed",
			zap.String("page", c.name),
			zap.Uint64("generation", s.Generation()),
			zap.Error(err),
		)
		c.notifyLocked()
		return
	}

	c.state.Phase = PhaseSuccess
	c.state.Data = out.Data
	c.state.HasData = true
	c.state.ErrorMessage = ""
	c.state.Notice = ""
	if out.Empty {
		c.state.Notice = NoResultsNotice
	}
	c.state.DebugPayload = out.Payload
	c.notifyLocked()
}

func (c *Controller[P, T]) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// State returns the current snapshot.
func (c *Controller[P, T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Changes returns a channel closed at the next state change.
func (c *Controller[P, T]) Changes() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

// Wait blocks until no load is in flight, then returns the snapshot.
func (c *Controller[P, T]) Wait(ctx context.Context) (State[T], error) {
	for {
		c.mu.Lock()
		st, ch := c.state, c.changed
		closed := c.tracker.Closed()
		c.mu.Unlock()

		if st.Settled() || closed {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-ch:
		}
	}
}

// Close unmounts the page: the in-flight load is cancelled and no later
// completion is committed. Close blocks until running loads return.
func (c *Controller[P, T]) Close() {
	c.mu.Lock()
	c.tracker.Close()
	if c.state.Phase == PhaseLoading {
		c.state.Phase = PhaseIdle
	}
	c.notifyLocked()
	c.mu.Unlock()

	c.wg.Wait()
}

// Closed reports whether the page has been unmounted.
func (c *Controller[P, T]) Closed() bool {
	return c.tracker.Closed()
}
