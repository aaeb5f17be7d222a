package runner

import (
	"strings"
	"time"
)

// Capture holds the result of a single command execution.
// It is immutable once produced.
type Capture struct {
	RunID     string        // unique identifier for this run
	Command   []string      // full argv, including the target file
	Target    string        // file the command was invoked against
	Output    []byte        // combined stdout+stderr (may be truncated)
	ExitCode  int           // process exit code
	Truncated bool          // true if output exceeded the size cap
	RanAt     time.Time     // when the process was started
	Duration  time.Duration // wall time until the process exited
}

// Succeeded reports whether the command exited zero.
func (c *Capture) Succeeded() bool { return c.ExitCode == 0 }

// Lines splits the combined output on newline boundaries. An empty trailing
// segment after a final newline is dropped; embedded carriage returns are
// left untouched.
func (c *Capture) Lines() []string {
	return SplitLines(string(c.Output))
}

// SplitLines splits s on '\n', dropping the empty trailing segment produced
// by a final newline. An empty string yields no lines.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
