package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func recordStep(name string, log *[]string, applyErr error) Step {
	return Step{
		Name: name,
		Apply: func(context.Context) error {
			*log = append(*log, "apply:"+name)
			return applyErr
		},
		Rollback: func(context.Context) error {
			*log = append(*log, "rollback:"+name)
			return nil
		},
	}
}

func TestTransaction_RollsBackInReverse(t *testing.T) {
	var log []string
	err := NewTransaction(nil).Apply(context.Background(), []Step{
		recordStep("one", &log, nil),
		recordStep("two", &log, nil),
		recordStep("three", &log, errors.New("boom")),
	})
	require.Error(t, err)
	require.Equal(t, "three", FailureStage(err))
	require.Equal(t, []string{"apply:one", "apply:two", "apply:three", "rollback:two", "rollback:one"}, log)
}

func TestTransaction_NoRollbackAfterBarrier(t *testing.T) {
	var log []string
	barrier := recordStep("barrier", &log, nil)
	barrier.Barrier = true
	err := NewTransaction(nil).Apply(context.Background(), []Step{
		recordStep("before", &log, nil),
		barrier,
		recordStep("after", &log, errors.New("boom")),
	})
	require.Error(t, err)
	require.Equal(t, "after", FailureStage(err))
	require.Equal(t, []string{"apply:before", "apply:barrier", "apply:after"}, log)
}

func TestTransaction_CanceledBeforeBarrierRollsBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var log []string
	first := recordStep("first", &log, nil)
	first.Apply = func(context.Context) error {
		log = append(log, "apply:first")
		cancel()
		return nil
	}
	err := NewTransaction(nil).Apply(ctx, []Step{first, recordStep("second", &log, nil)})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, "second", FailureStage(err))
	require.Equal(t, []string{"apply:first", "rollback:first"}, log)
}

func TestTransaction_CanceledAfterBarrierCompletes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var log []string
	barrier := recordStep("barrier", &log, nil)
	barrier.Barrier = true
	barrier.Apply = func(context.Context) error {
		log = append(log, "apply:barrier")
		cancel()
		return nil
	}
	var sawCanceled bool
	tail := Step{
		Name: "tail",
		Apply: func(stepCtx context.Context) error {
			sawCanceled = stepCtx.Err() != nil
			log = append(log, "apply:tail")
			return nil
		},
	}
	require.NoError(t, NewTransaction(nil).Apply(ctx, []Step{barrier, tail}))
	require.False(t, sawCanceled)
	require.Equal(t, []string{"apply:barrier", "apply:tail"}, log)
}

func TestTransaction_RollbackFailureJoined(t *testing.T) {
	rollbackErr := errors.New("rollback broke")
	step := Step{
		Name:     "one",
		Apply:    func(context.Context) error { return nil },
		Rollback: func(context.Context) error { return rollbackErr },
	}
	var log []string
	err := NewTransaction(nil).Apply(context.Background(), []Step{step, recordStep("two", &log, errors.New("boom"))})
	require.Error(t, err)
	require.ErrorIs(t, err, rollbackErr)
	require.Contains(t, err.Error(), "rollback: rollback broke")
}
