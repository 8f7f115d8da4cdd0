package sensors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"
	"sensor-bot/internal/models"
)

// ErrShellOperator is returned for a command line with pipes, redirects or command lists while shell mode is off.
var ErrShellOperator = errors.New("shell operators require app.use_shell")

// CommandRunner runs a sensor command and returns its trimmed stdout.
type CommandRunner interface {
	Run(ctx context.Context, cmd models.Command) (string, error)
}

// ExecRunner runs commands as local processes with a hard timeout.
type ExecRunner struct {
	Timeout  time.Duration
	UseShell bool
	Shell    string
}

func NewExecRunner(timeout time.Duration, useShell bool) *ExecRunner {
	return &ExecRunner{Timeout: timeout, UseShell: useShell, Shell: "/bin/sh"}
}

func (r *ExecRunner) Run(ctx context.Context, c models.Command) (string, error) {
	argv, err := r.argv(c)
	if err != nil {
		return "", err
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children of a killed shell may keep the pipes open.
	cmd.WaitDelay = 500 * time.Millisecond

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("command %q timed out after %s", c.String(), r.Timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("command %q exited with code %d: %s", c.String(), exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("run %q: %w", c.String(), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (r *ExecRunner) argv(c models.Command) ([]string, error) {
	if len(c.Args) > 0 {
		return c.Args, nil
	}
	if r.UseShell {
		shell := r.Shell
		if shell == "" {
			shell = "/bin/sh"
		}
		return []string{shell, "-c", c.Line}, nil
	}
	parser := shellwords.NewParser()
	args, err := parser.Parse(c.Line)
	if err != nil {
		return nil, fmt.Errorf("split command %q: %w", c.Line, err)
	}
	// Parse stops at the first unquoted |, ;, &, < or > and reports where.
	if parser.Position >= 0 {
		return nil, fmt.Errorf("command %q: %w", c.Line, ErrShellOperator)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return args, nil
}
