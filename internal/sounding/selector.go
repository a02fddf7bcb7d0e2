// Package sounding chooses between the archive and web sources and walks
// the candidate launch hours for a request.
package sounding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/sounding-service/internal/domain"
	"github.com/couchcryptid/sounding-service/internal/observability"
)

// ArchiveSource reads a station's full-history archive.
type ArchiveSource interface {
	Fetch(ctx context.Context, station string, at domain.ObservationTime) (domain.Profile, error)
	ArchiveURL(station string) string
}

// WebSource reads the web export, keyed by the 5-character WMO code.
type WebSource interface {
	Fetch(ctx context.Context, wmo string, at domain.ObservationTime) (domain.Profile, domain.Provenance, error)
	SourceURL(wmo string, at domain.ObservationTime, prov domain.Provenance) string
}

// Selector resolves a profile for one station and time under a source mode.
type Selector struct {
	archive ArchiveSource
	web     WebSource
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewSelector creates a Selector over the two sources.
func NewSelector(archive ArchiveSource, web WebSource, logger *slog.Logger, metrics *observability.Metrics) *Selector {
	return &Selector{
		archive: archive,
		web:     web,
		metrics: metrics,
		logger:  logger,
	}
}

// Resolve fetches the profile. SourceArchive and SourceWeb consult only that
// source and return its error unchanged. SourceAuto tries the archive and, on
// any failure, the web export; if both fail the result is a
// *domain.FallbackError that surfaces the web error.
func (s *Selector) Resolve(ctx context.Context, station string, at domain.ObservationTime, mode domain.SourceMode) (domain.Profile, domain.Provenance, error) {
	switch mode {
	case domain.SourceArchive:
		p, err := s.archive.Fetch(ctx, station, at)
		if err != nil {
			return domain.Profile{}, "", err
		}
		return p, domain.ProvenanceIGRA, nil

	case domain.SourceWeb:
		return s.web.Fetch(ctx, domain.WMOCode(station), at)

	case domain.SourceAuto:
		p, err := s.archive.Fetch(ctx, station, at)
		if err == nil {
			return p, domain.ProvenanceIGRA, nil
		}
		archiveErr := err
		s.metrics.SourceFallbacks.Inc()
		s.logger.Info("archive failed, trying web export",
			"station", station,
			"time", at.String(),
			"error", archiveErr,
		)

		p, prov, err := s.web.Fetch(ctx, domain.WMOCode(station), at)
		if err != nil {
			return domain.Profile{}, "", &domain.FallbackError{Archive: archiveErr, Web: err}
		}
		return p, prov, nil

	default:
		return domain.Profile{}, "", fmt.Errorf("%w: unknown source mode %q", domain.ErrInvalidRequest, mode)
	}
}

// SourceURL is the canonical upstream location of a resolved profile.
func (s *Selector) SourceURL(station string, at domain.ObservationTime, prov domain.Provenance) string {
	if prov.Source() == domain.SourceArchive {
		return s.archive.ArchiveURL(station)
	}
	return s.web.SourceURL(domain.WMOCode(station), at, prov)
}
