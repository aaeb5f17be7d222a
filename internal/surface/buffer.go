package surface

import "sync"

// BufferSink retains the most recent snapshot shown for each surface.
// It backs display paths that return text to a caller instead of writing
// to a terminal, such as MCP tool results.
type BufferSink struct {
	mu   sync.Mutex
	last map[string]*Snapshot
}

// NewBufferSink creates an empty BufferSink.
func NewBufferSink() *BufferSink {
	return &BufferSink{last: make(map[string]*Snapshot)}
}

// Show retains the snapshot as the surface's current content.
func (b *BufferSink) Show(s *Snapshot) error {
	b.mu.Lock()
	b.last[s.Name] = s
	b.mu.Unlock()
	return nil
}

// Last returns the most recently shown snapshot for the named surface,
// or nil if nothing has been shown on it.
func (b *BufferSink) Last(name string) *Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last[name]
}
