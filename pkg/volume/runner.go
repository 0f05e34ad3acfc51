package volume

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/cuemby/vmmv/pkg/log"
	"github.com/cuemby/vmmv/pkg/types"
)

// Runner executes an external command and returns its standard output
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Commands names the external binaries used for listing and renaming
type Commands struct {
	LVS      string `yaml:"lvs"`
	LVRename string `yaml:"lvrename"`
	ZFS      string `yaml:"zfs"`
}

// DefaultCommands returns binaries resolved from PATH
func DefaultCommands() Commands {
	return Commands{
		LVS:      "lvs",
		LVRename: "lvrename",
		ZFS:      "zfs",
	}
}

// ExecRunner runs commands on the host
type ExecRunner struct {
	// Timeout bounds each command; zero waits indefinitely
	Timeout time.Duration
}

// NewExecRunner creates a host command runner
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

// Run executes the command and waits for it. A non-zero exit status is
// returned as types.ErrToolFailure carrying the command's stderr.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	log.Logger.Debug().
		Str("component", "runner").
		Str("command", name).
		Strs("args", args).
		Msg("running command")

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", name, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %s %s: %v: %s",
			types.ErrToolFailure, name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
