//go:build smoke

package sounding_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/sounding-service/internal/adapter/igra"
	"github.com/couchcryptid/sounding-service/internal/adapter/uwyo"
	"github.com/couchcryptid/sounding-service/internal/domain"
	"github.com/couchcryptid/sounding-service/internal/observability"
	"github.com/couchcryptid/sounding-service/internal/sounding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the live IGRA and UWYO servers.
// Run with: go test -tags=smoke ./internal/sounding/ -v -count=1

const smokeStation = "SPM00008383" // Madrid

func smokeRetriever() *sounding.Retriever {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	archive := igra.NewClient("", 60*time.Second, 1, logger, metrics)
	web := uwyo.NewClient("", 30*time.Second, logger, metrics)
	return sounding.NewRetriever(sounding.NewSelector(archive, web, logger, metrics), logger, metrics)
}

func TestSmoke_Archive(t *testing.T) {
	req, err := domain.NewSoundingRequest(smokeStation, "2024-01-15", "12", "IGRA")
	require.NoError(t, err)

	result, err := smokeRetriever().Retrieve(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, domain.ProvenanceIGRA, result.Provenance)
	assert.GreaterOrEqual(t, result.Profile.Len(), domain.MinLevels)
}

func TestSmoke_WebAutoHour(t *testing.T) {
	req, err := domain.NewSoundingRequest(smokeStation, time.Now().AddDate(0, 0, -3).Format(time.DateOnly), "auto", "UWYO")
	require.NoError(t, err)

	result, err := smokeRetriever().Retrieve(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceWeb, result.Provenance.Source())
	assert.Contains(t, sounding.AutoHours, result.Time.Hour)
	assert.NotEmpty(t, result.SourceURL)
}
