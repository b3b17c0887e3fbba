package storage

import (
	"context"
	"sync"

	"srtm-gateway/internal/audit"
)

// InMemoryStore keeps audit records in an append-only slice. It favors
// clarity over performance; the audit trail of a test run is small.
type InMemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	records []audit.Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1}
}

func (s *InMemoryStore) Insert(_ context.Context, rec audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.nextID
	s.nextID++
	s.records = append(s.records, rec)
	return nil
}

// List returns a copy of every stored record in insertion order.
func (s *InMemoryStore) List(_ context.Context) ([]audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Record{}, s.records...), nil
}

// FindByIMEI returns every record for the given device, in insertion order.
func (s *InMemoryStore) FindByIMEI(_ context.Context, imei string) ([]audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Record
	for _, rec := range s.records {
		if rec.IMEI == imei {
			out = append(out, rec)
		}
	}
	return out, nil
}
