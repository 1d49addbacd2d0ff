package board

import (
	"sync"
	"time"
)

// Clock returns the current instant.
type Clock func() time.Time

// IDSource hands out strictly increasing ids derived from the clock's
// millisecond timestamp. Two calls within the same millisecond, or a clock
// that steps backwards, still yield distinct ids.
type IDSource struct {
	mu   sync.Mutex
	last int64
	now  Clock
}

// NewIDSource returns an IDSource reading from now.
func NewIDSource(now Clock) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

// Next returns max(nowMillis, last+1).
func (s *IDSource) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

// Observe raises the floor so future ids are greater than id.
func (s *IDSource) Observe(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id > s.last {
		s.last = id
	}
}
