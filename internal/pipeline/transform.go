package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/sounding-service/internal/domain"
	"github.com/google/uuid"
)

// HeaderRequestID carries a caller-chosen request ID on Kafka messages.
const HeaderRequestID = "request_id"

// RequestMessage is the JSON body of a message on the request topic.
type RequestMessage struct {
	RequestID string `json:"request_id,omitempty"`
	Station   string `json:"station"`
	Date      string `json:"date"`
	Hour      string `json:"hour,omitempty"`
	Source    string `json:"source,omitempty"`
}

// RetrieveTransformer implements Transformer by running one retrieval per
// request message.
type RetrieveTransformer struct {
	retriever domain.SoundingRetriever
	logger    *slog.Logger
}

// NewTransformer creates a RetrieveTransformer.
func NewTransformer(retriever domain.SoundingRetriever, logger *slog.Logger) *RetrieveTransformer {
	return &RetrieveTransformer{retriever: retriever, logger: logger}
}

// Transform decodes the request and retrieves it. Only an undecodable body is
// an error; invalid requests and failed retrievals become failed outcomes so
// the caller hears back.
func (t *RetrieveTransformer) Transform(ctx context.Context, raw domain.RawMessage) (domain.RetrievalOutcome, error) {
	var msg RequestMessage
	if err := json.Unmarshal(raw.Value, &msg); err != nil {
		return domain.RetrievalOutcome{}, fmt.Errorf("decode request message: %w", err)
	}

	id := requestID(msg, raw)
	req, err := domain.NewSoundingRequest(msg.Station, msg.Date, msg.Hour, msg.Source)
	if err != nil {
		return domain.NewOutcome(id, domain.SoundingRequest{Station: msg.Station}, domain.SoundingResult{}, err), nil
	}

	result, err := t.retriever.Retrieve(ctx, req)
	if err != nil && ctx.Err() != nil {
		return domain.RetrievalOutcome{}, ctx.Err()
	}
	out := domain.NewOutcome(id, req, result, err)
	t.logger.Info("request processed",
		"request_id", id,
		"station", req.Station,
		"date", req.Date(),
		"status", out.Status,
		"error_kind", out.ErrorKind,
	)
	return out, nil
}

func requestID(msg RequestMessage, raw domain.RawMessage) string {
	if msg.RequestID != "" {
		return msg.RequestID
	}
	if id := raw.Headers[HeaderRequestID]; id != "" {
		return id
	}
	return uuid.NewString()
}
