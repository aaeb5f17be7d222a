// Package surface manages reusable named output surfaces. A surface is a
// transient display region: created lazily on first render, reused (content
// replaced, never appended) while open, and never written back to any
// file-backed storage.
package surface

import (
	"fmt"
	"sync"

	"github.com/deixis/runpane/internal/runner"
)

// Snapshot is the observable state of a surface handed to a Sink.
type Snapshot struct {
	Name      string
	Lines     []string
	Failed    bool
	Status    string // failure indicator, empty on success
	Truncated bool
}

// Sink displays surface snapshots. Implementations must treat each Show as
// a full replacement of whatever they displayed for that surface before.
type Sink interface {
	Show(s *Snapshot) error
}

// UnavailableError reports a surface whose display target could not be
// created or selected. It is never retried automatically.
type UnavailableError struct {
	Name string
	Err  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("surface %s unavailable: %v", e.Name, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

type state struct {
	lines     []string
	failed    bool
	status    string
	truncated bool
}

// Registry owns the set of open surfaces and pushes their content to a Sink.
type Registry struct {
	mu       sync.Mutex
	sink     Sink
	surfaces map[string]*state
}

// NewRegistry creates a Registry that displays through sink.
func NewRegistry(sink Sink) *Registry {
	return &Registry{
		sink:     sink,
		surfaces: make(map[string]*state),
	}
}

// Render shows the capture on the surface with the given name, creating the
// surface if it is not open. Existing content is replaced with the capture's
// split lines, in order. A failed capture additionally gets a distinct
// status line carrying the exit code, so a failed run cannot be mistaken
// for a successful one. Rendering the same capture twice leaves the surface
// in the same observable state.
func (r *Registry) Render(name string, c *runner.Capture) error {
	r.mu.Lock()
	s, ok := r.surfaces[name]
	if !ok {
		s = &state{}
		r.surfaces[name] = s
	}
	s.lines = c.Lines()
	s.failed = !c.Succeeded()
	s.status = ""
	if s.failed {
		s.status = fmt.Sprintf("command failed with exit code %d", c.ExitCode)
	}
	s.truncated = c.Truncated
	snap := r.snapshotLocked(name, s)
	r.mu.Unlock()

	if err := r.sink.Show(snap); err != nil {
		return &UnavailableError{Name: name, Err: err}
	}
	return nil
}

// Close forgets the surface entirely. A subsequent Render recreates it;
// there is no "closed but remembered" state.
func (r *Registry) Close(name string) {
	r.mu.Lock()
	delete(r.surfaces, name)
	r.mu.Unlock()
}

// IsOpen reports whether a surface with the given name is open.
func (r *Registry) IsOpen(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.surfaces[name]
	return ok
}

// Lines returns a copy of the surface's current lines, or nil if the
// surface is not open.
func (r *Registry) Lines(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surfaces[name]
	if !ok {
		return nil
	}
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// Open returns the names of all open surfaces.
func (r *Registry) Open() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.surfaces))
	for name := range r.surfaces {
		names = append(names, name)
	}
	return names
}

func (r *Registry) snapshotLocked(name string, s *state) *Snapshot {
	lines := make([]string, len(s.lines))
	copy(lines, s.lines)
	return &Snapshot{
		Name:      name,
		Lines:     lines,
		Failed:    s.failed,
		Status:    s.status,
		Truncated: s.truncated,
	}
}
