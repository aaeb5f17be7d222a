// Package history provides persistence and retrieval of past command runs,
// so a capture can be re-rendered without re-running the command.
package history

import (
	"time"

	"github.com/deixis/runpane/internal/runner"
)

// Store persists and retrieves run entries.
type Store interface {
	Save(e *Entry) error
	Load(runID string) (*Entry, error)
}

// Entry is the stored form of a capture.
type Entry struct {
	ID        string    `json:"id"`
	Command   []string  `json:"command"`
	Target    string    `json:"target"`
	Output    string    `json:"output"`
	ExitCode  int       `json:"exit_code"`
	Truncated bool      `json:"truncated,omitempty"`
	RanAt     time.Time `json:"ran_at"`
}

// Succeeded reports whether the stored run exited zero.
func (e *Entry) Succeeded() bool { return e.ExitCode == 0 }

// FromCapture converts a capture into its stored form.
func FromCapture(c *runner.Capture) *Entry {
	return &Entry{
		ID:        c.RunID,
		Command:   c.Command,
		Target:    c.Target,
		Output:    string(c.Output),
		ExitCode:  c.ExitCode,
		Truncated: c.Truncated,
		RanAt:     c.RanAt,
	}
}

// Capture reconstructs a capture from the stored entry. Duration is not
// stored; it is zero on reconstruction.
func (e *Entry) Capture() *runner.Capture {
	return &runner.Capture{
		RunID:     e.ID,
		Command:   e.Command,
		Target:    e.Target,
		Output:    []byte(e.Output),
		ExitCode:  e.ExitCode,
		Truncated: e.Truncated,
		RanAt:     e.RanAt,
	}
}
