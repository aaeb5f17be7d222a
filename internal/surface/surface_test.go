package surface

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/deixis/runpane/internal/runner"
)

// memSink records the snapshots it was asked to show.
type memSink struct {
	shown []*Snapshot
	err   error
}

func (m *memSink) Show(s *Snapshot) error {
	if m.err != nil {
		return m.err
	}
	m.shown = append(m.shown, s)
	return nil
}

func capture(output string, exitCode int) *runner.Capture {
	return &runner.Capture{
		RunID:    "test-run",
		Command:  []string{"cc", "main.c"},
		Target:   "main.c",
		Output:   []byte(output),
		ExitCode: exitCode,
	}
}

func TestRender_SplitsLines(t *testing.T) {
	sink := &memSink{}
	reg := NewRegistry(sink)

	if err := reg.Render("X", capture("a\nb\nc\n", 0)); err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := []string{"a", "b", "c"}
	if got := reg.Lines("X"); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines = %q, want %q", got, want)
	}
	if len(sink.shown) != 1 {
		t.Fatalf("sink shown %d times, want 1", len(sink.shown))
	}
	if sink.shown[0].Failed {
		t.Error("Failed = true, want false for exit 0")
	}
}

func TestRender_Idempotent(t *testing.T) {
	reg := NewRegistry(&memSink{})
	c := capture("a\nb\n", 0)

	if err := reg.Render("X", c); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := reg.Render("X", c); err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := []string{"a", "b"}
	if got := reg.Lines("X"); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines = %q after double render, want %q (no duplication)", got, want)
	}
}

func TestRender_ReusesSurface(t *testing.T) {
	reg := NewRegistry(&memSink{})

	if err := reg.Render("X", capture("first\n", 0)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := reg.Render("X", capture("second\n", 0)); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if got := reg.Open(); len(got) != 1 || got[0] != "X" {
		t.Errorf("Open = %v, want exactly [X]", got)
	}
	if got := reg.Lines("X"); !reflect.DeepEqual(got, []string{"second"}) {
		t.Errorf("Lines = %q, want only the second render's content", got)
	}
}

func TestRender_FailureStatus(t *testing.T) {
	sink := &memSink{}
	reg := NewRegistry(sink)

	if err := reg.Render("X", capture("boom\n", 2)); err != nil {
		t.Fatalf("Render: %v", err)
	}

	snap := sink.shown[0]
	if !snap.Failed {
		t.Error("Failed = false, want true for exit 2")
	}
	if !strings.Contains(snap.Status, "2") {
		t.Errorf("Status = %q, want to carry the exit code", snap.Status)
	}
	// The status is separate from the raw output lines.
	if !reflect.DeepEqual(snap.Lines, []string{"boom"}) {
		t.Errorf("Lines = %q, want raw output only", snap.Lines)
	}
}

func TestClose_ForgetsSurface(t *testing.T) {
	reg := NewRegistry(&memSink{})

	if err := reg.Render("X", capture("a\n", 0)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	reg.Close("X")
	if reg.IsOpen("X") {
		t.Error("IsOpen = true after Close")
	}

	// A later render recreates the surface as open.
	if err := reg.Render("X", capture("b\n", 0)); err != nil {
		t.Fatalf("Render after Close: %v", err)
	}
	if !reg.IsOpen("X") {
		t.Error("IsOpen = false after re-render")
	}
	if got := reg.Lines("X"); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Lines = %q, want %q", got, []string{"b"})
	}
}

func TestRender_SinkFailure(t *testing.T) {
	sink := &memSink{err: errors.New("no tty")}
	reg := NewRegistry(sink)

	err := reg.Render("X", capture("a\n", 0))
	if err == nil {
		t.Fatal("expected error when sink fails")
	}
	var unavail *UnavailableError
	if !errors.As(err, &unavail) {
		t.Fatalf("error = %T, want *UnavailableError", err)
	}
	if unavail.Name != "X" {
		t.Errorf("Name = %q, want %q", unavail.Name, "X")
	}
}

func TestTermSink_Show(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTermSink(&buf)

	err := sink.Show(&Snapshot{
		Name:   "build",
		Lines:  []string{"main.c:3: error"},
		Failed: true,
		Status: "command failed with exit code 1",
	})
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "build") {
		t.Errorf("output missing surface name:\n%s", out)
	}
	if !strings.Contains(out, "main.c:3: error") {
		t.Errorf("output missing captured line:\n%s", out)
	}
	if !strings.Contains(out, "exit code 1") {
		t.Errorf("output missing failure status:\n%s", out)
	}
}
