// Package pipeline wires configuration, the command runner, the run history,
// and the output surface into the run-and-render flow. It is consumed by
// both the MCP server and the CLI commands.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/deixis/runpane/internal/config"
	"github.com/deixis/runpane/internal/history"
	"github.com/deixis/runpane/internal/runner"
	"github.com/deixis/runpane/internal/surface"
)

// CommandRunner executes a command against a target file.
// Implemented by runner.Runner.
type CommandRunner interface {
	Run(ctx context.Context, spec runner.CommandSpec, target string) (*runner.Capture, error)
}

// Engine holds shared dependencies for all run operations.
type Engine struct {
	Config    *config.Config
	Runner    CommandRunner
	Surfaces  *surface.Registry
	Store     history.Store
	Workspace string
}

// Options adjust a single run. Zero values mean "use the configuration".
type Options struct {
	Command string   // overrides the configured command name
	Args    []string // appended after the configured args
	Surface string   // overrides the configured surface name
}

// Outcome is the result of a run or re-render.
type Outcome struct {
	Capture *runner.Capture
	Surface string
}

// Run executes the configured command against target, records the capture
// in the run history, and renders it on the output surface. The command is
// resolved once per invocation: the per-run override wins over the
// configured command, which wins over the built-in default. A command that
// cannot be started is returned as an error before any capture exists;
// a command that ran and failed is a normal Outcome whose capture reports
// the non-zero exit.
//
// Callers are responsible for saving target before invoking Run; unsaved
// edits held elsewhere are invisible to the spawned command.
func (e *Engine) Run(ctx context.Context, target string, opts Options) (*Outcome, error) {
	spec := e.Config.Spec(opts.Command, opts.Args)

	c, err := e.Runner.Run(ctx, spec, target)
	if err != nil {
		return nil, describeStartFailure(err, spec.Path)
	}

	if err := e.Store.Save(history.FromCapture(c)); err != nil {
		return nil, fmt.Errorf("recording run %s: %w", c.RunID, err)
	}

	name := e.surfaceName(opts)
	if err := e.Surfaces.Render(name, c); err != nil {
		return nil, err
	}

	return &Outcome{Capture: c, Surface: name}, nil
}

// Show re-renders a stored capture on the output surface without
// re-running the command.
func (e *Engine) Show(runID string, opts Options) (*Outcome, error) {
	entry, err := e.Store.Load(runID)
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", runID, err)
	}

	c := entry.Capture()
	name := e.surfaceName(opts)
	if err := e.Surfaces.Render(name, c); err != nil {
		return nil, err
	}

	return &Outcome{Capture: c, Surface: name}, nil
}

func (e *Engine) surfaceName(opts Options) string {
	if opts.Surface != "" {
		return opts.Surface
	}
	return e.Config.SurfaceName()
}

// ResolveCommand probes PATH for the named command without running it.
// It returns nil when the command is available and an actionable error
// when it is not.
func ResolveCommand(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return describeStartFailure(&runner.NotFoundError{Name: name, Err: err}, name)
	}
	return nil
}

// describeStartFailure augments a command start failure with the override
// hint, leaving other errors untouched.
func describeStartFailure(err error, name string) error {
	var nf *runner.NotFoundError
	if !errors.As(err, &nf) {
		return err
	}
	return fmt.Errorf("%w\nSet 'command' in .runpane or pass -command to use a different executable than %q.", err, name)
}
