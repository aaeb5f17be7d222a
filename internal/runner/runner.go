// Package runner executes an external command against a target file and
// captures its combined output, exit status, and timing.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/google/uuid"
)

// DefaultCommand is the executable invoked when no override is configured.
// It is resolved via the caller's PATH.
const DefaultCommand = "make"

// CommandSpec describes the external command to invoke. Path is the
// executable name or absolute path; Args are inserted before the target file.
type CommandSpec struct {
	Path string
	Args []string
}

// Argv returns the full argument vector for the given target file.
func (s CommandSpec) Argv(target string) []string {
	argv := make([]string, 0, len(s.Args)+2)
	argv = append(argv, s.Path)
	argv = append(argv, s.Args...)
	return append(argv, target)
}

// Runner spawns commands with a timeout and an output size cap.
type Runner struct {
	Workspace string // working directory for spawned commands
	Timeout   time.Duration
	MaxOutput int // bytes; <= 0 means unlimited
}

// Run executes spec against target and blocks until the process exits.
// Stdout and stderr are merged into a single interleaved stream, capped at
// MaxOutput bytes. A non-zero exit is not an error; it is reported through
// the Capture. An error is returned only when the command cannot be located
// or started, in which case no Capture is produced. The target file is not
// checked for existence; a missing file surfaces as a non-zero exit from
// the command itself.
func (r *Runner) Run(ctx context.Context, spec CommandSpec, target string) (*Capture, error) {
	if spec.Path == "" {
		return nil, errors.New("empty command path")
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	argv := spec.Argv(target)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Workspace

	// Assigning the same writer to both streams makes os/exec serialise
	// writes, so the capture interleaves the way a terminal would show it.
	var combined bytes.Buffer
	w := &limitWriter{buf: &combined, limit: r.MaxOutput}
	cmd.Stdout = w
	cmd.Stderr = w

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			// The command never ran: bad path, permission, etc.
			return nil, &NotFoundError{Name: spec.Path, Err: runErr}
		}
	}

	return &Capture{
		RunID:     uuid.New().String(),
		Command:   argv,
		Target:    target,
		Output:    combined.Bytes(),
		ExitCode:  exitCode,
		Truncated: r.MaxOutput > 0 && combined.Len() >= r.MaxOutput,
		RanAt:     start,
		Duration:  elapsed,
	}, nil
}

// NotFoundError reports a command that could not be located or started,
// as opposed to one that started and exited non-zero.
type NotFoundError struct {
	Name string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("starting %s: %v", e.Name, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// limitWriter writes up to limit bytes to buf, then silently discards the rest.
// A limit of zero or less means unlimited.
type limitWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *limitWriter) Write(p []byte) (int, error) {
	if w.limit <= 0 {
		return w.buf.Write(p)
	}
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		return len(p), nil // discard
	}
	if len(p) > remaining {
		// Write only what fits, but report all bytes as consumed
		// to avoid short write errors from io.Copy.
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	return w.buf.Write(p)
}
