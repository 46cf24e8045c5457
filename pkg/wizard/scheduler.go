package wizard

import (
	"sync"
	"time"
)

// scheduler owns every pending choreography timer so a reset can stop
// them all synchronously
type scheduler struct {
	mu     sync.Mutex
	timers []*time.Timer
}

func (s *scheduler) after(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers = append(s.timers, time.AfterFunc(d, fn))
}

func (s *scheduler) cancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}
