// Package fanotify is the Linux subsystem backend. It marks the configured
// mounts for FAN_OPEN_PERM and answers each permission event with
// FAN_ALLOW or FAN_DENY.
package fanotify

import (
	"sync"

	"github.com/safedep/authgate/core/events"
)

const defaultRecentSize = 4096

// recentSet remembers the last N answered event IDs so that a second
// response to the same event is reported as a duplicate rather than as an
// unknown event.
type recentSet struct {
	mu    sync.Mutex
	ring  []events.ID
	index map[events.ID]struct{}
	next  int
}

func newRecentSet(size int) *recentSet {
	if size <= 0 {
		size = defaultRecentSize
	}

	return &recentSet{
		ring:  make([]events.ID, 0, size),
		index: make(map[events.ID]struct{}, size),
	}
}

func (s *recentSet) add(id events.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; ok {
		return
	}

	if len(s.ring) < cap(s.ring) {
		s.ring = append(s.ring, id)
	} else {
		delete(s.index, s.ring[s.next])
		s.ring[s.next] = id
		s.next = (s.next + 1) % len(s.ring)
	}

	s.index[id] = struct{}{}
}

func (s *recentSet) contains(id events.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.index[id]
	return ok
}
