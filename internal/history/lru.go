package history

import "sync"

// LRUStore is an in-memory LRU cache that delegates to a backing Store on miss.
type LRUStore struct {
	mu   sync.Mutex
	cap  int
	back Store

	// Doubly-linked list for LRU ordering (most recent at head).
	head, tail *lruEntry
	items      map[string]*lruEntry
}

type lruEntry struct {
	key   string
	entry *Entry
	prev  *lruEntry
	next  *lruEntry
}

// NewLRUStore creates an LRU cache with the given capacity that delegates
// to back on cache misses. Capacity must be >= 1.
func NewLRUStore(cap int, back Store) *LRUStore {
	if cap < 1 {
		cap = 1
	}
	return &LRUStore{
		cap:   cap,
		back:  back,
		items: make(map[string]*lruEntry, cap),
	}
}

// Save writes the entry to the LRU cache and delegates to the backing store.
func (s *LRUStore) Save(e *Entry) error {
	s.mu.Lock()
	if item, ok := s.items[e.ID]; ok {
		item.entry = e
		s.moveToFront(item)
	} else {
		item := &lruEntry{key: e.ID, entry: e}
		s.items[e.ID] = item
		s.pushFront(item)
		if len(s.items) > s.cap {
			s.evict()
		}
	}
	s.mu.Unlock()

	return s.back.Save(e)
}

// Load checks the LRU cache first. On miss, loads from the backing store
// and promotes the entry into the cache.
func (s *LRUStore) Load(runID string) (*Entry, error) {
	s.mu.Lock()
	if item, ok := s.items[runID]; ok {
		s.moveToFront(item)
		e := item.entry
		s.mu.Unlock()
		return e, nil
	}
	s.mu.Unlock()

	e, err := s.back.Load(runID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if item, ok := s.items[runID]; ok {
		// Concurrent load already inserted it.
		item.entry = e
		s.moveToFront(item)
	} else {
		item := &lruEntry{key: runID, entry: e}
		s.items[runID] = item
		s.pushFront(item)
		if len(s.items) > s.cap {
			s.evict()
		}
	}
	s.mu.Unlock()

	return e, nil
}

// Recent returns the cached entries, most recently used first.
func (s *LRUStore) Recent() []*Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Entry, 0, len(s.items))
	for item := s.head; item != nil; item = item.next {
		out = append(out, item.entry)
	}
	return out
}

func (s *LRUStore) pushFront(e *lruEntry) {
	e.prev = nil
	e.next = s.head
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *LRUStore) moveToFront(e *lruEntry) {
	if s.head == e {
		return
	}
	s.remove(e)
	s.pushFront(e)
}

func (s *LRUStore) remove(e *lruEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}

func (s *LRUStore) evict() {
	if s.tail == nil {
		return
	}
	e := s.tail
	s.remove(e)
	delete(s.items, e.key)
}
