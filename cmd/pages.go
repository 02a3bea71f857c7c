package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-advisor/internal/view"
)

// runPage drives one page through a single parameter change and returns the
// settled state. Invalid parameters come back as the validator's error.
func runPage[P, T any](ctx context.Context, page *view.Controller[P, T], params P) (view.State[T], error) {
	defer page.Close()

	page.Update(params)
	st := page.State()
	if st.Phase == view.PhaseIdle && st.Notice != "" {
		return st, eris.New(st.Notice)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	st, err := page.Wait(ctx)
	if err != nil {
		return st, eris.Wrapf(err, "%s: waiting for backend", page.Name())
	}
	return st, nil
}

// pageErr reports an error-phase state as a command failure, after it has
// been rendered.
func pageErr[T any](st view.State[T]) error {
	if st.Phase == view.PhaseError {
		return eris.New(st.ErrorMessage)
	}
	return nil
}
