// Package workflow runs multi-write operations as explicit step lists.
//
// Run executes steps in order. A failed required step stops the run and the
// compensations of already-completed steps run in reverse order. A failed
// optional step is recorded and the run continues. FanOut runs independent
// steps concurrently and joins on all of them.
//
// Either way the caller gets a Report naming what completed, what failed,
// and what was compensated, so a partial failure is never silent.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Step is one unit of work.
type Step struct {
	Name       string
	Do         func(ctx context.Context) error
	Compensate func(ctx context.Context) error // optional
	Optional   bool
}

// Failure records a step that returned an error.
type Failure struct {
	Step string
	Err  error
}

// Report describes the outcome of a run.
type Report struct {
	Completed   []string
	Failed      []Failure
	Compensated []string
}

// OK reports whether every step completed.
func (r Report) OK() bool { return len(r.Failed) == 0 }

// Incomplete returns the names of failed steps.
func (r Report) Incomplete() []string {
	out := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		out = append(out, f.Step)
	}
	return out
}

// Err combines every step failure into one error (nil when OK).
func (r Report) Err() error {
	var err error
	for _, f := range r.Failed {
		err = multierr.Append(err, fmt.Errorf("%s: %w", f.Step, f.Err))
	}
	return err
}

// Error is returned when a run did not complete. Cause is the first
// failure; Report has the rest.
type Error struct {
	Step   string
	Cause  error
	Report Report
}

func (e *Error) Error() string {
	return fmt.Sprintf("step %q failed: %v (completed: %s)", e.Step, e.Cause, strings.Join(e.Report.Completed, ","))
}

func (e *Error) Unwrap() error { return e.Cause }

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var we *Error
	ok := errors.As(err, &we)
	return we, ok
}

// Run executes steps in order.
func Run(ctx context.Context, steps ...Step) (Report, error) {
	var rep Report
	done := make([]Step, 0, len(steps))

	for _, s := range steps {
		err := s.Do(ctx)
		if err == nil {
			rep.Completed = append(rep.Completed, s.Name)
			done = append(done, s)
			continue
		}
		rep.Failed = append(rep.Failed, Failure{Step: s.Name, Err: err})
		if s.Optional {
			continue
		}

		for i := len(done) - 1; i >= 0; i-- {
			c := done[i]
			if c.Compensate == nil {
				continue
			}
			if cerr := c.Compensate(ctx); cerr != nil {
				rep.Failed = append(rep.Failed, Failure{Step: c.Name + ":compensate", Err: cerr})
				continue
			}
			rep.Compensated = append(rep.Compensated, c.Name)
		}
		return rep, &Error{Step: s.Name, Cause: err, Report: rep}
	}
	return rep, nil
}

// FanOut runs steps concurrently with at most limit in flight (limit <= 0
// means unbounded). A failing step does not cancel its siblings. The report
// keeps input order, and the returned error is the first failure in input
// order. Compensations are not run; fan-out steps should be idempotent so
// the whole fan-out can be retried.
func FanOut(ctx context.Context, limit int, steps ...Step) (Report, error) {
	errs := make([]error, len(steps))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	var mu sync.Mutex
	for i, s := range steps {
		g.Go(func() error {
			err := s.Do(ctx)
			mu.Lock()
			errs[i] = err
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	var rep Report
	var first *Error
	for i, s := range steps {
		if errs[i] == nil {
			rep.Completed = append(rep.Completed, s.Name)
			continue
		}
		rep.Failed = append(rep.Failed, Failure{Step: s.Name, Err: errs[i]})
		if first == nil {
			first = &Error{Step: s.Name, Cause: errs[i]}
		}
	}
	if first != nil {
		first.Report = rep
		return rep, first
	}
	return rep, nil
}
