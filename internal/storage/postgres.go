package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"srtm-gateway/internal/audit"
)

const transactionsSchema = `
CREATE TABLE IF NOT EXISTS transactions (
	id               BIGSERIAL PRIMARY KEY,
	timestamp        TIMESTAMPTZ NOT NULL,
	transaction_type TEXT NOT NULL,
	msg_type         TEXT NOT NULL,
	imei             TEXT NOT NULL,
	request_payload  TEXT NOT NULL,
	success          BOOLEAN NOT NULL,
	http_status      INTEGER NOT NULL,
	response_message TEXT NOT NULL,
	error_code       TEXT,
	raw_response     TEXT,
	response_time_ms BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_timestamp ON transactions (timestamp);
CREATE INDEX IF NOT EXISTS idx_transactions_imei ON transactions (imei);
CREATE INDEX IF NOT EXISTS idx_transactions_msg_type ON transactions (msg_type);
`

// OpenPostgres opens and pings a Postgres pool via the pgx stdlib driver.
func OpenPostgres(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// PostgresStore persists audit records in the transactions table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the transactions table and its indexes if absent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, transactionsSchema); err != nil {
		return fmt.Errorf("ensure transactions schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, rec audit.Record) error {
	const q = `
		INSERT INTO transactions (
			timestamp, transaction_type, msg_type, imei, request_payload,
			success, http_status, response_message, error_code, raw_response,
			response_time_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := s.db.ExecContext(ctx, q,
		rec.Timestamp,
		string(rec.Category),
		rec.MessageType,
		rec.IMEI,
		rec.RequestPayload,
		rec.Success,
		rec.HTTPStatus,
		rec.Message,
		nullable(rec.ErrorCode),
		nullable(rec.RawResponse),
		rec.ResponseTimeMS,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// FindByIMEI returns the audit trail for one device, oldest first.
func (s *PostgresStore) FindByIMEI(ctx context.Context, imei string) ([]audit.Record, error) {
	const q = `
		SELECT id, timestamp, transaction_type, msg_type, imei, request_payload,
		       success, http_status, response_message,
		       COALESCE(error_code, ''), COALESCE(raw_response, ''),
		       response_time_ms
		FROM transactions
		WHERE imei = $1
		ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q, imei)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []audit.Record
	for rows.Next() {
		var rec audit.Record
		var category string
		if err := rows.Scan(
			&rec.ID, &rec.Timestamp, &category, &rec.MessageType, &rec.IMEI,
			&rec.RequestPayload, &rec.Success, &rec.HTTPStatus, &rec.Message,
			&rec.ErrorCode, &rec.RawResponse, &rec.ResponseTimeMS,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		rec.Category = audit.Category(category)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// nullable maps "" to NULL for the optional text columns.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
