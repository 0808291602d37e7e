package reconcile

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

type Transaction struct {
	logger *zap.Logger
}

func NewTransaction(logger *zap.Logger) *Transaction {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transaction{logger: logger}
}

func (t *Transaction) Apply(ctx context.Context, steps []Step) error {
	applied := make([]Step, 0, len(steps))
	committed := false
	for _, step := range steps {
		if !committed {
			if err := ctx.Err(); err != nil {
				return t.fail(ctx, step.Name, err, applied)
			}
		}
		if err := step.Apply(ctx); err != nil {
			if committed {
				return WrapStage(step.Name, err)
			}
			return t.fail(ctx, step.Name, err, applied)
		}
		if step.Barrier {
			committed = true
			applied = applied[:0]
			ctx = context.WithoutCancel(ctx)
			continue
		}
		if !committed {
			applied = append(applied, step)
		}
	}
	return nil
}

func (t *Transaction) fail(ctx context.Context, stage string, err error, applied []Step) error {
	stageErr := WrapStage(stage, err)
	rollbackCtx := context.WithoutCancel(ctx)
	if rollbackErr := t.rollbackSteps(rollbackCtx, applied); rollbackErr != nil {
		t.logger.Warn("run rollback failed",
			zap.String("failure_stage", stage),
			zap.Error(rollbackErr),
		)
		return errors.Join(stageErr, WrapStage(StageRollback, rollbackErr))
	}
	if len(applied) > 0 {
		t.logger.Info("run rolled back", zap.String("failure_stage", stage))
	}
	return stageErr
}

func (t *Transaction) rollbackSteps(ctx context.Context, steps []Step) error {
	var rollbackErr error
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if step.Rollback == nil {
			continue
		}
		if err := step.Rollback(ctx); err != nil {
			rollbackErr = errors.Join(rollbackErr, err)
		}
	}
	return rollbackErr
}
