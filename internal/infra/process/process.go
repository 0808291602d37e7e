package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"pluginsync/internal/domain"
)

// PromotedEnv carries the promoted components to restart commands as
// comma-separated id=version pairs.
const PromotedEnv = "PLUGINSYNC_PROMOTED"

// Run starts argv and waits for it to exit or for ctx to end.
func Run(ctx context.Context, argv []string, env []string) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = env
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", argv[0], err)
	}
	if err := Wait(ctx, cmd); err != nil {
		if ctx != nil && ctx.Err() != nil && cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}

// Wait blocks until cmd exits or ctx ends. Any non-zero exit, including
// termination by a signal, is returned as an error.
func Wait(ctx context.Context, cmd *exec.Cmd) error {
	if cmd == nil {
		return nil
	}
	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()
	if ctx == nil {
		return <-done
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CommandRestarter returns a host restart hook that runs command through the
// shell with the promoted components exported in PromotedEnv.
func CommandRestarter(ctx context.Context, command string, logger *zap.Logger) func([]domain.InstalledComponent) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("restart")
	return func(promoted []domain.InstalledComponent) error {
		pairs := make([]string, 0, len(promoted))
		for _, component := range promoted {
			pairs = append(pairs, component.ID+"="+component.Version)
		}
		env := append(os.Environ(), PromotedEnv+"="+strings.Join(pairs, ","))
		logger.Info("running restart command", zap.String("command", command), zap.Int("promoted", len(promoted)))
		return Run(ctx, []string{"/bin/sh", "-c", command}, env)
	}
}
