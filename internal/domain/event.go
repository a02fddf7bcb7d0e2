package domain

import (
	"context"
	"time"
)

// RawMessage represents an unprocessed sounding request read from the request topic.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Outcome statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// RetrievalOutcome is what the worker publishes for each request: either a
// result or the error that ended the retrieval.
type RetrievalOutcome struct {
	RequestID   string          `json:"request_id"`
	Request     SoundingRequest `json:"request"`
	Status      string          `json:"status"`
	Result      *SoundingResult `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	ErrorKind   string          `json:"error_kind,omitempty"`
	ProcessedAt time.Time       `json:"processed_at"`
}

// NewOutcome wraps a retrieval's return values.
func NewOutcome(requestID string, req SoundingRequest, result SoundingResult, err error) RetrievalOutcome {
	out := RetrievalOutcome{
		RequestID:   requestID,
		Request:     req,
		ProcessedAt: clock.Now(),
	}
	if err != nil {
		out.Status = StatusFailed
		out.Error = err.Error()
		out.ErrorKind = ErrorKind(err)
		return out
	}
	out.Status = StatusOK
	out.Result = &result
	return out
}
