package reconcile

import "context"

// Step is one stage of a run. Once a Barrier step applies, earlier steps are
// no longer rolled back and later steps ignore cancellation.
type Step struct {
	Name     string
	Apply    func(context.Context) error
	Rollback func(context.Context) error
	Barrier  bool
}
