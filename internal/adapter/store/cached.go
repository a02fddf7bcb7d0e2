package store

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/sounding-service/internal/domain"
	"github.com/couchcryptid/sounding-service/internal/observability"
)

// CachedRetriever serves results from the store and falls through to the
// wrapped retriever on a miss. Only successful retrievals are stored, so a
// sounding published later is picked up on the next request. Store failures
// are logged and never fail the request.
type CachedRetriever struct {
	inner   domain.SoundingRetriever
	store   *Store
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewCachedRetriever wraps inner with the store.
func NewCachedRetriever(inner domain.SoundingRetriever, store *Store, logger *slog.Logger, metrics *observability.Metrics) *CachedRetriever {
	return &CachedRetriever{
		inner:   inner,
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

func (c *CachedRetriever) Retrieve(ctx context.Context, req domain.SoundingRequest) (domain.SoundingResult, error) {
	req, err := req.Normalize()
	if err != nil {
		return domain.SoundingResult{}, err
	}
	key := req.CacheKey()

	result, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.metrics.StoreLookups.WithLabelValues("error").Inc()
		c.logger.Warn("store lookup failed", "key", key, "error", err)
	case ok:
		c.metrics.StoreLookups.WithLabelValues("hit").Inc()
		return result, nil
	default:
		c.metrics.StoreLookups.WithLabelValues("miss").Inc()
	}

	result, err = c.inner.Retrieve(ctx, req)
	if err != nil {
		return domain.SoundingResult{}, err
	}
	if err := c.store.Put(ctx, key, result); err != nil {
		c.logger.Warn("store write failed", "key", key, "error", err)
	}
	return result, nil
}
