package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutcomeDefaults(t *testing.T) {
	start := time.Now()
	out := NewOutcome(start)

	assert.False(t, out.Success)
	assert.Equal(t, 500, out.HTTPStatus)
	assert.Equal(t, "An internal error occurred.", out.Message)
	assert.Equal(t, start, out.Timestamp)
	assert.Equal(t, RawAbsent, out.Raw.Kind())
}

func TestFinalizeNeverNegative(t *testing.T) {
	out := NewOutcome(time.Now())
	out.Finalize(time.Now().Add(-time.Second))
	assert.GreaterOrEqual(t, out.ResponseTimeMS, 0.0)

	out2 := NewOutcome(time.Now())
	// A start in the future simulates a clock step backwards.
	out2.Finalize(time.Now().Add(time.Hour))
	assert.Equal(t, 0.0, out2.ResponseTimeMS)
}

func TestRawResultJSON(t *testing.T) {
	b, err := json.Marshal(RawNone())
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	b, err = json.Marshal(RawString("ack"))
	require.NoError(t, err)
	assert.Equal(t, `"ack"`, string(b))

	rec := NewRecord("b", "2", "a", "1")
	b, err = json.Marshal(RawRecordList(rec))
	require.NoError(t, err)
	assert.Equal(t, `[{"b":"2","a":"1"}]`, string(b),
		"record keys keep insertion order, not lexical order")
}

func TestRecordAccessors(t *testing.T) {
	rec := NewRecord("Imei", "355195000000017", "Tecnologia", "01")
	assert.Equal(t, []string{"Imei", "Tecnologia"}, rec.Keys())
	assert.Equal(t, "01", rec.Get("Tecnologia"))
	assert.Equal(t, "", rec.Get("Inexistente"))
}

func TestRawResultSerialize(t *testing.T) {
	s, err := RawNone().Serialize()
	require.NoError(t, err)
	assert.Equal(t, "", s)

	s, err = RawString("075").Serialize()
	require.NoError(t, err)
	assert.Equal(t, "075", s)

	s, err = RawRecordList(NewRecord("error", "x")).Serialize()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"error":"x"}]`, s)
}
