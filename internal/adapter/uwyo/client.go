package uwyo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/sounding-service/internal/domain"
	"github.com/couchcryptid/sounding-service/internal/observability"
)

// DefaultBaseURL is the University of Wyoming sounding endpoint.
const DefaultBaseURL = "https://weather.uwyo.edu/wsgi/sounding"

// maxBody bounds how much of a response is read; a sounding export is a few
// hundred kilobytes at most.
const maxBody = 8 << 20

// Variant is an upstream decoding backend of the web export.
type Variant string

const (
	VariantFM35 Variant = "FM35" // TEMP (FM 35) bulletins
	VariantBUFR Variant = "BUFR"
)

// Variants lists the backends in the order they are tried.
var Variants = []Variant{VariantFM35, VariantBUFR}

// Provenance returns the tag recorded on profiles from this variant.
func (v Variant) Provenance() domain.Provenance {
	if v == VariantFM35 {
		return domain.ProvenanceUWYOFM35
	}
	return domain.ProvenanceUWYOBUFR
}

// Client reads soundings from the University of Wyoming web export.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a web export client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// DataURL is the CSV export for one station, time and variant.
func (c *Client) DataURL(wmo string, at domain.ObservationTime, v Variant) string {
	return c.url(wmo, at, v, "TEXT:CSV")
}

// PageURL is the human-readable listing of the same sounding.
func (c *Client) PageURL(wmo string, at domain.ObservationTime, v Variant) string {
	return c.url(wmo, at, v, "TEXT:LIST")
}

func (c *Client) url(wmo string, at domain.ObservationTime, v Variant, kind string) string {
	return fmt.Sprintf("%s?datetime=%s-%s-%s%%20%s:00:00&id=%s&type=%s&src=%s",
		c.baseURL, at.Year, at.Month, at.Day, at.Hour, wmo, kind, v)
}

// Fetch tries each variant in order and returns the first usable profile
// with the provenance of the variant that produced it. When every variant
// fails the last error is returned; earlier ones are kept in the message.
func (c *Client) Fetch(ctx context.Context, wmo string, at domain.ObservationTime) (domain.Profile, domain.Provenance, error) {
	var (
		failures []string
		lastErr  error
	)
	for _, v := range Variants {
		p, err := c.fetchVariant(ctx, wmo, at, v)
		if err == nil {
			return p, v.Provenance(), nil
		}
		c.logger.Debug("uwyo variant failed",
			"wmo", wmo,
			"time", at.String(),
			"variant", string(v),
			"error", err,
		)
		failures = append(failures, fmt.Sprintf("%s: %v", v, err))
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	if len(failures) == 1 {
		return domain.Profile{}, "", lastErr
	}
	return domain.Profile{}, "", fmt.Errorf("uwyo %s at %s: no variant succeeded (%s): %w",
		wmo, at, failures[0], lastErr)
}

func (c *Client) fetchVariant(ctx context.Context, wmo string, at domain.ObservationTime, v Variant) (p domain.Profile, err error) {
	start := time.Now()
	defer func() {
		c.metrics.FetchRequests.WithLabelValues("uwyo", domain.ErrorKind(err)).Inc()
		c.metrics.FetchDuration.WithLabelValues("uwyo").Observe(time.Since(start).Seconds())
	}()

	source := "uwyo " + string(v)
	body, err := c.get(ctx, c.DataURL(wmo, at, v), source)
	if err != nil {
		return domain.Profile{}, err
	}

	t, err := ParseTable(body, source)
	if err != nil {
		return domain.Profile{}, err
	}
	c.logger.Debug("uwyo table decoded",
		"wmo", wmo,
		"variant", string(v),
		"speed_column", t.SpeedName,
		"rows", t.Rows,
		"levels", len(t.Levels),
		"skipped", t.Skipped,
	)
	p, err = t.Profile()
	if err != nil {
		return domain.Profile{}, fmt.Errorf("%s: %w", source, err)
	}
	return p, nil
}

func (c *Client) get(ctx context.Context, u, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrNetwork, source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: status %d", domain.ErrNetwork, source, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %w", domain.ErrNetwork, source, err)
	}
	return body, nil
}

// SourceURL is the human-readable page for a profile this client returned.
func (c *Client) SourceURL(wmo string, at domain.ObservationTime, prov domain.Provenance) string {
	v := Variant(prov.Variant())
	if v == "" {
		v = VariantBUFR
	}
	return c.PageURL(wmo, at, v)
}
