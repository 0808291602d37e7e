package reconcile

import "errors"

const (
	StagePrepare  = "prepare"
	StageProxy    = "proxy"
	StageSources  = "sources"
	StageRefresh  = "refresh"
	StagePlan     = "plan"
	StageInstall  = "install"
	StageRestart  = "restart"
	StageRollback = "rollback"
)

// StageError records which stage of a run failed.
type StageError struct {
	Stage string
	Err   error
}

func (e StageError) Error() string {
	if e.Stage == "" {
		return e.Err.Error()
	}
	return e.Stage + ": " + e.Err.Error()
}

func (e StageError) Unwrap() error {
	return e.Err
}

func WrapStage(stage string, err error) error {
	if err == nil {
		return nil
	}
	var stageErr StageError
	if errors.As(err, &stageErr) {
		return err
	}
	return StageError{Stage: stage, Err: err}
}

func FailureStage(err error) string {
	var stageErr StageError
	if errors.As(err, &stageErr) && stageErr.Stage != "" {
		return stageErr.Stage
	}
	return "unknown"
}
