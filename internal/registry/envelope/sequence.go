package envelope

import (
	"sync"
	"time"
)

// Sequence hands out the two per-process counters that feed message and
// process identifiers. The registry requires both to be unique per operator
// and day, so increments are serialized; the counters are seeded from the
// startup instant to keep restarts from replaying low values within a day.
type Sequence struct {
	mu      sync.Mutex
	message int64
	process int64
}

// NewSequence seeds both counters from the given startup instant.
func NewSequence(start time.Time) *Sequence {
	seed := start.Unix() % 100000
	return &Sequence{message: seed, process: seed}
}

// NextMessage increments and returns the message counter.
func (s *Sequence) NextMessage() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message++
	return s.message
}

// NextProcess increments and returns the process counter.
func (s *Sequence) NextProcess() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.process++
	return s.process
}
