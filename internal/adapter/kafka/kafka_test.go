package kafka

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/sounding-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapMessage(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("SPM00008383"),
		Value:     []byte(`{"station":"SPM00008383"}`),
		Topic:     "sounding-requests",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "request_id", Value: []byte("req-1")},
		},
	}

	raw := mapMessage(msg)

	assert.Equal(t, []byte("SPM00008383"), raw.Key)
	assert.JSONEq(t, `{"station":"SPM00008383"}`, string(raw.Value))
	assert.Equal(t, "sounding-requests", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "req-1", raw.Headers["request_id"])
	assert.Nil(t, raw.Commit)
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 1, 14, 12, 5, 0, 0, time.UTC)
	out := domain.RetrievalOutcome{
		RequestID:   "req-1",
		Request:     domain.SoundingRequest{Station: "SPM00008383", Year: "2026", Month: "01", Day: "14", Hour: "12", Source: domain.SourceAuto},
		Status:      domain.StatusOK,
		Result:      &domain.SoundingResult{Station: "SPM00008383", Provenance: domain.ProvenanceIGRA},
		ProcessedAt: now,
	}

	msg, err := serializeToMessage(out)
	require.NoError(t, err)

	assert.Equal(t, []byte("SPM00008383"), msg.Key)
	assert.Contains(t, string(msg.Value), `"provenance":"IGRA"`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "status", msg.Headers[0].Key)
	assert.Equal(t, []byte("ok"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
	assert.Equal(t, "request_id", msg.Headers[2].Key)
	assert.Equal(t, []byte("req-1"), msg.Headers[2].Value)
}

func TestSerializeFailedOutcome(t *testing.T) {
	req := domain.SoundingRequest{Station: "USM00072520", Year: "2026", Month: "01", Day: "14", Hour: domain.HourAuto, Source: domain.SourceWeb}
	out := domain.NewOutcome("req-2", req, domain.SoundingResult{}, errors.Join(domain.ErrNoDataForDate, domain.ErrNetwork))

	msg, err := serializeToMessage(out)
	require.NoError(t, err)

	assert.Equal(t, []byte("failed"), msg.Headers[0].Value)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "no_data", decoded["error_kind"])
	assert.NotContains(t, decoded, "result")
}
