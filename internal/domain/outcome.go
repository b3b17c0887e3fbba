package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Default values mirror the registry client contract: an outcome starts as a
// generic failure and is upgraded as the call progresses, so a caller always
// receives a fully populated record even when the transport faults early.
const (
	defaultHTTPStatus = 500
	defaultMessage    = "An internal error occurred."
)

// Outcome is the single normalized result of one registry transaction,
// regardless of dialect. It is created at call start and finalized exactly
// once when the call path exits; latency is computed in that finalization.
type Outcome struct {
	Success        bool
	HTTPStatus     int
	ResponseTimeMS float64
	Message        string
	ErrorCode      string
	Raw            RawResult
	Timestamp      time.Time
}

// NewOutcome returns a default-failure outcome stamped with the transaction
// start time.
func NewOutcome(start time.Time) *Outcome {
	return &Outcome{
		HTTPStatus: defaultHTTPStatus,
		Message:    defaultMessage,
		Timestamp:  start,
	}
}

// Finalize computes the round-trip latency from the given start instant.
// The value is clamped to zero so clock adjustments never produce a negative
// latency in audit records.
func (o *Outcome) Finalize(start time.Time) {
	ms := float64(time.Since(start)) / float64(time.Millisecond)
	if ms < 0 {
		ms = 0
	}
	o.ResponseTimeMS = ms
}

// RawKind discriminates the shapes a registry raw payload can take.
type RawKind int

const (
	// RawAbsent means the transaction produced no raw payload.
	RawAbsent RawKind = iota
	// RawText is free-text returned by the action service.
	RawText
	// RawRecords is a small ordered list of key/value records assembled by
	// the query classifier.
	RawRecords
)

// Record is one ordered key/value map inside a RawRecords payload. Key order
// is preserved because the payload is display/audit data, never a typed
// structure for consumers to branch on.
type Record struct {
	keys   []string
	values map[string]string
}

// NewRecord builds a record from alternating key/value pairs.
func NewRecord(pairs ...string) Record {
	r := Record{values: make(map[string]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.keys = append(r.keys, pairs[i])
		r.values[pairs[i]] = pairs[i+1]
	}
	return r
}

// Keys returns the record keys in insertion order.
func (r Record) Keys() []string { return r.keys }

// Get returns the value stored under key, or "".
func (r Record) Get(key string) string { return r.values[key] }

// MarshalJSON emits the record as a JSON object with keys in insertion order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RawResult is the tagged variant for raw registry payloads:
// absent, free text, or an ordered record list.
type RawResult struct {
	kind    RawKind
	text    string
	records []Record
}

// RawNone returns the absent variant.
func RawNone() RawResult { return RawResult{kind: RawAbsent} }

// RawString wraps free text returned by the action service.
func RawString(s string) RawResult { return RawResult{kind: RawText, text: s} }

// RawRecordList wraps an ordered list of key/value records.
func RawRecordList(records ...Record) RawResult {
	return RawResult{kind: RawRecords, records: records}
}

// Kind reports which variant this payload holds.
func (r RawResult) Kind() RawKind { return r.kind }

// Text returns the free-text payload; valid only for RawText.
func (r RawResult) Text() string { return r.text }

// Records returns the record list; valid only for RawRecords.
func (r RawResult) Records() []Record { return r.records }

// MarshalJSON renders absent as null, text as a JSON string and records as a
// JSON array of ordered objects.
func (r RawResult) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case RawText:
		return json.Marshal(r.text)
	case RawRecords:
		return json.Marshal(r.records)
	default:
		return []byte("null"), nil
	}
}

// Serialize flattens the payload for audit persistence: "" when absent, the
// text itself for free text, and compact JSON for record lists.
func (r RawResult) Serialize() (string, error) {
	switch r.kind {
	case RawText:
		return r.text, nil
	case RawRecords:
		b, err := json.Marshal(r.records)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", nil
	}
}
