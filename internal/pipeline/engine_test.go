package pipeline

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/deixis/runpane/internal/config"
	"github.com/deixis/runpane/internal/history"
	"github.com/deixis/runpane/internal/runner"
	"github.com/deixis/runpane/internal/surface"
)

// nullSink discards snapshots.
type nullSink struct{}

func (nullSink) Show(*surface.Snapshot) error { return nil }

func newTestEngine(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{}
	}
	ws := t.TempDir()
	return &Engine{
		Config: cfg,
		Runner: &runner.Runner{
			Workspace: ws,
			Timeout:   10 * time.Second,
			MaxOutput: 1 << 20,
		},
		Surfaces:  surface.NewRegistry(nullSink{}),
		Store:     history.NewLRUStore(5, history.NewDiskStoreAt(t.TempDir())),
		Workspace: ws,
	}
}

func TestRun_EchoScenario(t *testing.T) {
	e := newTestEngine(t, &config.Config{RawCommand: "echo"})

	out, err := e.Run(context.Background(), "hello", Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !out.Capture.Succeeded() || out.Capture.ExitCode != 0 {
		t.Errorf("capture = exit %d, want 0", out.Capture.ExitCode)
	}
	if string(out.Capture.Output) != "hello\n" {
		t.Errorf("Output = %q, want %q", out.Capture.Output, "hello\n")
	}
	if got := e.Surfaces.Lines(out.Surface); !reflect.DeepEqual(got, []string{"hello"}) {
		t.Errorf("surface lines = %q, want [hello]", got)
	}
	if out.Surface != config.DefaultSurfaceName {
		t.Errorf("Surface = %q, want default %q", out.Surface, config.DefaultSurfaceName)
	}
}

func TestRun_CommandNotFound(t *testing.T) {
	e := newTestEngine(t, &config.Config{RawCommand: "nonexistent-binary-xyz-123"})

	_, err := e.Run(context.Background(), "file.txt", Options{})
	if err == nil {
		t.Fatal("expected error for bogus command")
	}
	var nf *runner.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %T, want to wrap *runner.NotFoundError", err)
	}
	if !strings.Contains(err.Error(), "-command") {
		t.Errorf("error = %q, want the override hint", err)
	}
	// No capture, no surface.
	if e.Surfaces.IsOpen(config.DefaultSurfaceName) {
		t.Error("surface opened despite start failure")
	}
}

func TestRun_FailingCommandRendersFailure(t *testing.T) {
	e := newTestEngine(t, &config.Config{RawCommand: "sh", Args: []string{"-c", "echo bad; exit 7", "--"}})

	out, err := e.Run(context.Background(), "ignored", Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Capture.Succeeded() {
		t.Error("Succeeded() = true, want false")
	}
	if out.Capture.ExitCode != 7 {
		t.Errorf("ExitCode = %d, want 7", out.Capture.ExitCode)
	}
	if got := e.Surfaces.Lines(out.Surface); !reflect.DeepEqual(got, []string{"bad"}) {
		t.Errorf("surface lines = %q, want [bad]", got)
	}
}

func TestRun_OverridesAndSurfaceOption(t *testing.T) {
	e := newTestEngine(t, &config.Config{RawCommand: "nonexistent-binary-xyz-123"})

	out, err := e.Run(context.Background(), "hi", Options{Command: "echo", Args: []string{"-n"}, Surface: "alt"})
	if err != nil {
		t.Fatalf("Run with override: %v", err)
	}
	if out.Surface != "alt" {
		t.Errorf("Surface = %q, want %q", out.Surface, "alt")
	}
	if string(out.Capture.Output) != "hi" {
		t.Errorf("Output = %q, want %q", out.Capture.Output, "hi")
	}
}

func TestShow_ReRendersStoredRun(t *testing.T) {
	e := newTestEngine(t, &config.Config{RawCommand: "echo"})

	first, err := e.Run(context.Background(), "one", Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := e.Run(context.Background(), "two", Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out, err := e.Show(first.Capture.RunID, Options{})
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if got := e.Surfaces.Lines(out.Surface); !reflect.DeepEqual(got, []string{"one"}) {
		t.Errorf("surface lines = %q, want the first run's output", got)
	}
	// Still a single surface.
	if got := e.Surfaces.Open(); len(got) != 1 {
		t.Errorf("Open = %v, want one surface", got)
	}
}

func TestShow_UnknownRun(t *testing.T) {
	e := newTestEngine(t, nil)
	if _, err := e.Show("no-such-run", Options{}); err == nil {
		t.Fatal("expected error for unknown run id")
	}
}

func TestResolveCommand(t *testing.T) {
	if err := ResolveCommand("sh"); err != nil {
		t.Errorf("ResolveCommand(sh) = %v, want nil", err)
	}
	err := ResolveCommand("nonexistent-binary-xyz-123")
	if err == nil {
		t.Fatal("expected error for missing command")
	}
	if !strings.Contains(err.Error(), ".runpane") {
		t.Errorf("error = %q, want the config hint", err)
	}
}
