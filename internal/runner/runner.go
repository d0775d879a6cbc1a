package runner

import (
	"context"
	"os/exec"
)

// Runner executes an external command and returns its combined output.
// The dispatcher reaches rsync and ssh only through this interface so
// tests can substitute a recording fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Local runs commands on the invoking machine via os/exec.
type Local struct{}

func (Local) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}
