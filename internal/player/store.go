package player

import (
	"sync"

	"github.com/mikey-austin/musicd/pkg/music"
)

// Store owns the play queue, the play history and the currently playing
// slot. All access goes through its synchronized methods; a snapshot never
// observes a dequeue half-applied.
//
// History records an item at the moment it becomes current, so an item
// interrupted by stop or skip still shows up exactly once.
type Store struct {
	mu      sync.Mutex
	queue   []music.Item
	history []music.Item
	current *music.Item
	changed chan struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{changed: make(chan struct{}, 1)}
}

// Changed signals after every mutation. Notifications coalesce; receivers
// read the latest state with Snapshot.
func (s *Store) Changed() <-chan struct{} {
	return s.changed
}

func (s *Store) notifyLocked() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// EnqueueBack appends an item to the end of the queue.
func (s *Store) EnqueueBack(item music.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = append(s.queue, item)
	s.notifyLocked()
}

// EnqueueFront prepends an item so the next advance picks it up first.
func (s *Store) EnqueueFront(item music.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = append([]music.Item{item}, s.queue...)
	s.notifyLocked()
}

// DequeueToCurrent pops the queue head into the current slot and appends it
// to the history in the same critical section. It is the only path by which
// an item becomes current.
func (s *Store) DequeueToCurrent() (music.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return music.Item{}, false
	}
	item := s.queue[0]
	s.queue = s.queue[1:]
	s.current = &item
	s.history = append(s.history, item)
	s.notifyLocked()
	return item, true
}

// Current returns a copy of the current item, if any.
func (s *Store) Current() (music.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return music.Item{}, false
	}
	return *s.current, true
}

// ClearCurrent empties the current slot.
func (s *Store) ClearCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	s.current = nil
	s.notifyLocked()
}

// Reset clears the queue and the current slot; stop semantics. History is
// untouched since the interrupted item was recorded when it became current.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = nil
	s.current = nil
	s.notifyLocked()
}

// QueueLen reports the number of pending items.
func (s *Store) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.queue)
}

// Snapshot returns a consistent point-in-time copy of current, queue and
// history.
func (s *Store) Snapshot() (current *music.Item, queue []music.Item, history []music.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		item := *s.current
		current = &item
	}
	queue = make([]music.Item, len(s.queue))
	copy(queue, s.queue)
	history = make([]music.Item, len(s.history))
	copy(history, s.history)
	return current, queue, history
}
