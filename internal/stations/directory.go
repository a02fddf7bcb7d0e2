package stations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/sounding-service/internal/domain"
	"github.com/couchcryptid/sounding-service/internal/observability"
)

// retryInterval is how long a failed download suppresses the next attempt
// while a stale table is still being served.
const retryInterval = 5 * time.Minute

// Directory serves the station table, refreshing it from the remote list
// once it is older than the TTL. Readers get an immutable *Table; a refresh
// builds a new one and swaps the pointer.
type Directory struct {
	listURL    string
	cachePath  string
	ttl        time.Duration
	httpClient *http.Client
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger

	table atomic.Pointer[Table]

	mu          sync.Mutex // serializes refreshes
	nextAttempt time.Time
}

// NewDirectory creates a directory backed by the list at listURL and the
// CSV cache at cachePath. Nothing is loaded until the first GetOrRefresh.
func NewDirectory(listURL, cachePath string, ttl, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Directory {
	if listURL == "" {
		listURL = DefaultListURL
	}
	return &Directory{
		listURL:   listURL,
		cachePath: cachePath,
		ttl:       ttl,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
		logger:  logger,
	}
}

// GetOrRefresh returns the current table, loading or refreshing it first if
// it is missing or stale. Order of preference: a fresh cache file, the
// remote list, then whatever stale data is at hand. It fails only when no
// table can be produced at all.
func (d *Directory) GetOrRefresh(ctx context.Context) (*Table, error) {
	if t := d.table.Load(); t != nil && !d.due(t) {
		return t, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	current := d.table.Load()
	if current != nil && !d.due(current) {
		return current, nil
	}

	// The file may have been refreshed by another process.
	fileStations, fileTime, fileErr := ReadCacheFile(d.cachePath)
	if fileErr == nil && len(fileStations) > 0 && d.clock.Since(fileTime) < d.ttl {
		return d.swap(NewTable(fileStations, fileTime), "file"), nil
	}
	if fileErr != nil && !errors.Is(fileErr, fs.ErrNotExist) {
		d.logger.Warn("station cache unreadable", "path", d.cachePath, "error", fileErr)
	}

	t, err := d.refresh(ctx)
	if err == nil {
		return t, nil
	}

	d.nextAttempt = d.clock.Now().Add(retryInterval)
	d.metrics.StationRefreshes.WithLabelValues("error").Inc()
	d.logger.Warn("station list refresh failed", "url", d.listURL, "error", err)

	switch {
	case current != nil:
		return current, nil
	case fileErr == nil && len(fileStations) > 0:
		return d.swap(NewTable(fileStations, fileTime), "stale"), nil
	default:
		return nil, fmt.Errorf("station directory unavailable: %w", err)
	}
}

// Refresh downloads the remote list unconditionally and rewrites the cache.
func (d *Directory) Refresh(ctx context.Context) (*Table, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refresh(ctx)
}

// CheckReadiness reports ready once a table has been loaded.
func (d *Directory) CheckReadiness(_ context.Context) error {
	if d.table.Load() == nil {
		return errors.New("station directory not loaded")
	}
	return nil
}

func (d *Directory) refresh(ctx context.Context) (*Table, error) {
	stations, err := Download(ctx, d.httpClient, d.listURL)
	if err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return nil, errors.New("station list has no usable records")
	}
	if err := WriteCacheFile(d.cachePath, stations); err != nil {
		// The table is still good; the next process start simply downloads again.
		d.logger.Warn("station cache not written", "path", d.cachePath, "error", err)
	}
	d.nextAttempt = time.Time{}
	return d.swap(NewTable(stations, d.clock.Now()), "remote"), nil
}

func (d *Directory) swap(t *Table, result string) *Table {
	d.table.Store(t)
	d.metrics.StationRefreshes.WithLabelValues(result).Inc()
	d.metrics.StationsLoaded.Set(float64(t.Len()))
	d.logger.Info("station directory loaded", "source", result, "stations", t.Len(), "fetched_at", t.FetchedAt())
	return t
}

// due reports whether t should be refreshed now.
func (d *Directory) due(t *Table) bool {
	now := d.clock.Now()
	return now.Sub(t.FetchedAt()) >= d.ttl && !now.Before(d.nextAttempt)
}

// Download fetches and parses the remote station list.
func Download(ctx context.Context, client *http.Client, listURL string) ([]domain.Station, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: station list: %w", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: station list: status %d", domain.ErrNetwork, resp.StatusCode)
	}
	return ParseStationList(resp.Body)
}
