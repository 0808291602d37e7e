package reconcile

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pluginsync/internal/domain"
	"pluginsync/internal/infra/telemetry"
)

func TestObserver_DoesNotWriteIntoSharedFields(t *testing.T) {
	backing := make([]zap.Field, 1, 8)
	backing[0] = telemetry.RunIDField("run-1")
	sentinel := zap.String("sentinel", "untouched")
	full := backing[:cap(backing)]
	for i := 1; i < len(full); i++ {
		full[i] = sentinel
	}

	obs := NewObserver(nil, zap.NewNop())
	source := domain.Source{ID: "default", URL: "https://updates.example.org"}
	obs.ObserveRefresh(backing, source, domain.RefreshResultSuccess, nil)
	obs.ObserveRestart(backing)
	obs.ObserveRun(backing, domain.ActionPlan{}, errors.New("boom"), time.Second)
	obs.ObserveRun(backing, domain.ActionPlan{}, nil, time.Second)

	for i := 1; i < len(full); i++ {
		require.Equal(t, sentinel, full[i], "index %d", i)
	}
}
