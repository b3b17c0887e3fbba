// Package storage provides the persistence backends for the transaction
// audit trail: an in-memory store used by tests and credential-less local
// runs, and a Postgres store for deployments.
package storage

import "srtm-gateway/internal/audit"

var (
	_ audit.Store = (*InMemoryStore)(nil)
	_ audit.Store = (*PostgresStore)(nil)
)
