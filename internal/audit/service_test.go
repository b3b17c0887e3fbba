package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srtm-gateway/internal/domain"
)

type recordingStore struct {
	records []Record
	err     error
}

func (s *recordingStore) Insert(_ context.Context, rec Record) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestFromTransactionProjection(t *testing.T) {
	start := time.Date(2024, 10, 25, 14, 30, 0, 0, time.UTC)
	out := domain.NewOutcome(start)
	out.Success = true
	out.HTTPStatus = 200
	out.Message = "Solicitud 1001 aceptada."
	out.Raw = domain.RawString("ack")
	out.ResponseTimeMS = 123.9

	req := map[string]string{"imei": "355195000000017"}
	rec, err := FromTransaction(CategoryAction, "1001", "355195000000017", req, out)
	require.NoError(t, err)

	assert.Equal(t, CategoryAction, rec.Category)
	assert.Equal(t, "1001", rec.MessageType)
	assert.Equal(t, "355195000000017", rec.IMEI)
	assert.JSONEq(t, `{"imei":"355195000000017"}`, rec.RequestPayload)
	assert.True(t, rec.Success)
	assert.Equal(t, 200, rec.HTTPStatus)
	assert.Equal(t, "ack", rec.RawResponse)
	assert.Equal(t, int64(123), rec.ResponseTimeMS, "latency is truncated to whole ms")
	assert.Equal(t, start, rec.Timestamp)
}

func TestFromTransactionMissingIMEI(t *testing.T) {
	out := domain.NewOutcome(time.Now())
	rec, err := FromTransaction(CategoryQuery, "consultaBDANegativa", "", struct{}{}, out)
	require.NoError(t, err)
	assert.Equal(t, "N/A", rec.IMEI)
	assert.Equal(t, "", rec.RawResponse)
}

func TestFromTransactionStructuredRaw(t *testing.T) {
	out := domain.NewOutcome(time.Now())
	out.Raw = domain.RawRecordList(domain.NewRecord("CodigoError", "99"))
	rec, err := FromTransaction(CategoryQuery, "consultaBDANegativa", "355195000000017", struct{}{}, out)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"CodigoError":"99"}]`, rec.RawResponse)
}

func TestServiceRecordBestEffort(t *testing.T) {
	store := &recordingStore{err: errors.New("db down")}
	svc := NewService(store, testLogger())

	// Must not panic or surface the failure.
	svc.Record(context.Background(), Record{Category: CategoryAction})
	assert.Empty(t, store.records)
}

func TestServiceRecordStampsTimestamp(t *testing.T) {
	store := &recordingStore{}
	svc := NewService(store, testLogger())

	svc.Record(context.Background(), Record{Category: CategoryAction})
	require.Len(t, store.records, 1)
	assert.False(t, store.records[0].Timestamp.IsZero())
}
