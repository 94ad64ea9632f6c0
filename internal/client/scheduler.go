package client

import (
	"log"
	"sync"
	"time"

	"github.com/agrilab/agrilab-go/internal/stream"
)

// SaveFunc persists one decoded report.
type SaveFunc func(part stream.Part) error

const defaultSaveInterval = 100 * time.Millisecond

// Scheduler writes decoded reports to disk strictly in the order they
// were scheduled, pausing between writes so a large job does not starve
// the rest of the application of disk bandwidth. A failed save is
// logged and does not stop the saves behind it.
type Scheduler struct {
	save     SaveFunc
	interval time.Duration
	queue    chan stream.Part
	done     chan struct{}

	mu     sync.Mutex
	saved  int
	failed int
}

func NewScheduler(save SaveFunc, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = defaultSaveInterval
	}
	s := &Scheduler{
		save:     save,
		interval: interval,
		queue:    make(chan stream.Part, 16),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Scheduler) run() {
	defer close(s.done)
	first := true
	for part := range s.queue {
		if !first {
			time.Sleep(s.interval)
		}
		first = false

		if err := s.save(part); err != nil {
			log.Printf("Failed to save report for %q: %v", part.DisplayName, err)
			s.mu.Lock()
			s.failed++
			s.mu.Unlock()
			continue
		}
		s.mu.Lock()
		s.saved++
		s.mu.Unlock()
	}
}

// Schedule queues one part for saving. Blocks only if the queue is full.
func (s *Scheduler) Schedule(part stream.Part) {
	s.queue <- part
}

// Close stops intake and blocks until every queued save has run.
func (s *Scheduler) Close() {
	close(s.queue)
	<-s.done
}

// Saved reports how many parts have been written successfully.
func (s *Scheduler) Saved() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

// Failed reports how many saves were dropped after an error.
func (s *Scheduler) Failed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}
