package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"pluginsync/internal/domain"
)

func TestNewLogger_Levels(t *testing.T) {
	logger, err := newLogger("debug")
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = newLogger("warn")
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = newLogger("loud")
	require.Error(t, err)
}

func TestExitCodeFor(t *testing.T) {
	require.Equal(t, exitInvalid, exitCodeFor(domain.Malformed("load config", "bad")))
	require.Equal(t, exitInvalid, exitCodeFor(fmt.Errorf("prepare: %w", domain.ErrInvalidVersionFormat)))
	require.Equal(t, exitFailure, exitCodeFor(fmt.Errorf("%w: git", domain.ErrInstallFailure)))
	require.Equal(t, exitFailure, exitCodeFor(errors.New("boom")))
}

func TestRootCommand_FlagBindings(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"--config", "plugins.toml", "--log-level", "error", "--json", "validate", "--help"})
	require.NoError(t, root.Execute())

	flag := root.PersistentFlags().Lookup("config")
	require.Equal(t, "plugins.toml", flag.Value.String())
	cmd, _, err := root.Find([]string{"watch"})
	require.NoError(t, err)
	require.NotNil(t, cmd.Flags().Lookup("metrics-addr"))
}
