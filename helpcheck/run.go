package helpcheck

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

const DefaultTimeout = 30 * time.Second

var ErrRunnerNotFound = errors.New("runner not found")

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailed
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Result is the classified outcome of one script invocation.
type Result struct {
	Script   string
	Outcome  Outcome
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner invokes scripts through a runner command (eg. "uv run") with a
// trailing --help flag, bounded by Timeout.
type Runner struct {
	Command []string
	Timeout time.Duration
}

func NewRunner(command []string) *Runner {
	return &Runner{Command: command, Timeout: DefaultTimeout}
}

// Run executes one script. A missing runner binary aborts with
// ErrRunnerNotFound; everything else is classified into the Result.
func (r *Runner) Run(ctx context.Context, script string) (*Result, error) {
	if len(r.Command) == 0 {
		return nil, fmt.Errorf("%w: no runner command configured", ErrRunnerNotFound)
	}
	if _, err := exec.LookPath(r.Command[0]); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRunnerNotFound, r.Command[0])
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string{}, r.Command[1:]...), script, "--help")
	cmd := exec.CommandContext(ctx, r.Command[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	err := cmd.Run()
	result := &Result{
		Script:   script,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(started),
	}

	switch {
	case ctx.Err() == context.DeadlineExceeded:
		result.Outcome = OutcomeTimeout
	case err == nil:
		result.Outcome = OutcomeSuccess
	default:
		result.Outcome = OutcomeFailed
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
			result.Stderr = err.Error()
		}
	}

	return result, nil
}
