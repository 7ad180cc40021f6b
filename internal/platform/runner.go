package platform

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// Runner executes host probe commands. Wrapped in an interface so strategy
// tests can fake pactl/brew/nvidia-smi output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

type execRunner struct {
	timeout time.Duration
}

// NewRunner returns a Runner with a short per-command timeout; host probes
// must never hang startup.
func NewRunner() Runner {
	return &execRunner{timeout: 10 * time.Second}
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return strings.TrimSpace(string(out)), err
}
