// Package audit persists one record per registry transaction. Recording is
// best-effort: a storage failure is logged and swallowed so it can never turn
// a completed registry call into a client-facing error.
package audit

import (
	"context"
	"log/slog"
	"time"
)

// Store is the persistence contract; the storage package provides in-memory
// and Postgres implementations.
type Store interface {
	Insert(ctx context.Context, rec Record) error
}

// Service writes transaction records through a Store.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Record persists one transaction. Failures are logged, never returned.
func (s *Service) Record(ctx context.Context, rec Record) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "fallo al guardar la transaccion",
			"category", rec.Category,
			"msg_type", rec.MessageType,
			"error", err,
		)
	}
}
