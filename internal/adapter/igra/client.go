package igra

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/sounding-service/internal/domain"
	"github.com/couchcryptid/sounding-service/internal/observability"
)

// DefaultBaseURL is the NCEI period-of-record directory.
const DefaultBaseURL = "https://www.ncei.noaa.gov/data/integrated-global-radiosonde-archive/access/data-por"

const archiveTTL = time.Hour

// Client reads soundings from IGRA v2 station archives.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      *archiveCache
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an archive client. cacheSize is the number of
// uncompressed station files kept in memory; zero disables the cache.
func NewClient(baseURL string, timeout time.Duration, cacheSize int, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
	if cacheSize > 0 {
		c.cache = newArchiveCache(cacheSize, archiveTTL, clockwork.NewRealClock())
	}
	return c
}

// ArchiveURL returns the zip URL for a station's full history.
func (c *Client) ArchiveURL(station string) string {
	return fmt.Sprintf("%s/%s-data.txt.zip", c.baseURL, station)
}

// Fetch returns the station's profile for exactly the given time.
func (c *Client) Fetch(ctx context.Context, station string, at domain.ObservationTime) (p domain.Profile, err error) {
	start := time.Now()
	defer func() {
		c.metrics.FetchRequests.WithLabelValues("igra", domain.ErrorKind(err)).Inc()
		c.metrics.FetchDuration.WithLabelValues("igra").Observe(time.Since(start).Seconds())
	}()

	text, err := c.stationFile(ctx, station)
	if err != nil {
		return domain.Profile{}, err
	}

	block, err := decodeArchive(text, at)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("%s: %w", station, err)
	}
	c.logger.Debug("igra block decoded",
		"station", station,
		"time", at.String(),
		"declared", block.Declared,
		"consumed", block.Consumed,
		"levels", len(block.Levels),
		"malformed", block.Malformed,
		"rejected", block.Rejected,
	)
	return block.Profile()
}

// stationFile returns the uncompressed station file, from cache when fresh.
func (c *Client) stationFile(ctx context.Context, station string) ([]byte, error) {
	if text, ok := c.cache.get(station); ok {
		return text, nil
	}

	data, err := c.download(ctx, station)
	if err != nil {
		return nil, err
	}
	text, err := unzipFirst(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", station, err)
	}
	c.cache.put(station, text)
	return text, nil
}

func (c *Client) download(ctx context.Context, station string) ([]byte, error) {
	u := c.ArchiveURL(station)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: igra %s: %w", domain.ErrNetwork, station, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: igra %s: status %d", domain.ErrNetwork, station, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: igra %s: read body: %w", domain.ErrNetwork, station, err)
	}
	c.logger.Debug("igra archive downloaded", "station", station, "bytes", len(data))
	return data, nil
}
