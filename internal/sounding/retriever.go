package sounding

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/sounding-service/internal/domain"
	"github.com/couchcryptid/sounding-service/internal/observability"
)

// AutoHours is the search order for HourAuto: main synoptic hours first,
// then the intermediate ones.
var AutoHours = []string{"00", "12", "06", "18", "03", "09", "15", "21"}

// CandidateHours returns the hours to try for a normalized request hour.
func CandidateHours(hour string) []string {
	if hour == domain.HourAuto {
		return append([]string(nil), AutoHours...)
	}
	return []string{hour}
}

// Retriever implements domain.SoundingRetriever: it walks the candidate
// hours in order, one at a time, and stops at the first usable profile.
type Retriever struct {
	selector *Selector
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewRetriever creates a Retriever over a Selector.
func NewRetriever(selector *Selector, logger *slog.Logger, metrics *observability.Metrics) *Retriever {
	return &Retriever{
		selector: selector,
		metrics:  metrics,
		logger:   logger,
	}
}

// Retrieve returns the first profile found for the request's candidate
// hours. When every hour fails the error is a *domain.NoDataError holding
// each attempt; a cancelled context ends the search early with the hours
// fetched so far and the context error in Interrupted.
func (r *Retriever) Retrieve(ctx context.Context, req domain.SoundingRequest) (result domain.SoundingResult, err error) {
	defer func() {
		r.metrics.Retrievals.WithLabelValues(domain.ErrorKind(err)).Inc()
	}()

	req, err = req.Normalize()
	if err != nil {
		return domain.SoundingResult{}, err
	}

	candidates := CandidateHours(req.Hour)
	noData := &domain.NoDataError{Date: req.Date()}
	for _, hour := range candidates {
		if ctxErr := ctx.Err(); ctxErr != nil {
			noData.Interrupted = ctxErr
			break
		}

		at := req.At(hour)
		r.metrics.HourAttempts.Inc()
		p, prov, err := r.selector.Resolve(ctx, req.Station, at, req.Source)
		if err != nil {
			r.logger.Debug("no sounding at hour",
				"station", req.Station,
				"time", at.String(),
				"source", string(req.Source),
				"kind", domain.ErrorKind(err),
				"error", err,
			)
			noData.Hours = append(noData.Hours, hour)
			noData.Attempts = append(noData.Attempts, err)
			continue
		}

		r.logger.Info("sounding retrieved",
			"station", req.Station,
			"time", at.String(),
			"provenance", string(prov),
			"levels", p.Len(),
		)
		return domain.SoundingResult{
			Station:     req.Station,
			Time:        at,
			Provenance:  prov,
			SourceName:  prov.DisplayName(),
			SourceURL:   r.selector.SourceURL(req.Station, at, prov),
			Profile:     p,
			RetrievedAt: domain.Now(),
		}, nil
	}

	r.logger.Warn("no sounding for date",
		"station", req.Station,
		"date", req.Date(),
		"hours", noData.Hours,
		"error", noData.Last(),
	)
	return domain.SoundingResult{}, noData
}
