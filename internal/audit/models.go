package audit

import (
	"encoding/json"
	"time"

	"srtm-gateway/internal/domain"
)

// Category separates action transactions from list queries in the audit
// trail.
type Category string

const (
	CategoryAction Category = "action"
	CategoryQuery  Category = "query"
)

// Record is one persisted transaction: the request as received, the
// normalized outcome, and enough identifiers to trace it back to the device
// and message type involved.
type Record struct {
	ID             int64
	Timestamp      time.Time
	Category       Category
	MessageType    string
	IMEI           string
	RequestPayload string
	Success        bool
	HTTPStatus     int
	Message        string
	ErrorCode      string
	RawResponse    string
	ResponseTimeMS int64
}

// FromTransaction projects a request/outcome pair into a Record. The request
// is stored as JSON; a raw payload that is itself structured is flattened to
// compact JSON so the audit column stays text.
func FromTransaction(category Category, msgType, imei string, request any, out *domain.Outcome) (Record, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return Record{}, err
	}
	raw, err := out.Raw.Serialize()
	if err != nil {
		return Record{}, err
	}
	if imei == "" {
		imei = "N/A"
	}
	return Record{
		Timestamp:      out.Timestamp,
		Category:       category,
		MessageType:    msgType,
		IMEI:           imei,
		RequestPayload: string(payload),
		Success:        out.Success,
		HTTPStatus:     out.HTTPStatus,
		Message:        out.Message,
		ErrorCode:      out.ErrorCode,
		RawResponse:    raw,
		ResponseTimeMS: int64(out.ResponseTimeMS),
	}, nil
}
