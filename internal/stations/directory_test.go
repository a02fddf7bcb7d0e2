package stations

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/sounding-service/internal/domain"
	"github.com/couchcryptid/sounding-service/internal/observability"
)

var listBody = strings.Join([]string{
	listLine("SPM00008221", "MADRID/BARAJAS", 2026),
	listLine("USM00072520", "PITTSBURGH", 2026),
}, "\n") + "\n"

type listServer struct {
	srv  *httptest.Server
	hits atomic.Int32
	fail atomic.Bool
}

func newListServer(t *testing.T) *listServer {
	t.Helper()
	ls := &listServer{}
	ls.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ls.hits.Add(1)
		if ls.fail.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, listBody)
	}))
	t.Cleanup(ls.srv.Close)
	return ls
}

func testDirectory(t *testing.T, listURL string, clock clockwork.Clock) *Directory {
	t.Helper()
	d := NewDirectory(listURL, filepath.Join(t.TempDir(), "data", "stations.csv"), 24*time.Hour, 5*time.Second,
		slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
	d.clock = clock
	return d
}

func writeCache(t *testing.T, path string, modTime time.Time) {
	t.Helper()
	require.NoError(t, WriteCacheFile(path, []domain.Station{
		{Code: "GMM00010410", DisplayName: "Essen", City: "Essen", RawName: "ESSEN"},
	}))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestDirectory_DownloadsWhenNoCache(t *testing.T) {
	ls := newListServer(t)
	d := testDirectory(t, ls.srv.URL, clockwork.NewFakeClockAt(time.Now()))

	require.Error(t, d.CheckReadiness(context.Background()))

	tbl, err := d.GetOrRefresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
	assert.NoError(t, d.CheckReadiness(context.Background()))

	// The cache file now holds the downloaded list.
	cached, _, err := ReadCacheFile(d.cachePath)
	require.NoError(t, err)
	assert.Equal(t, tbl.All(), cached)
	assert.InDelta(t, 1, testutil.ToFloat64(d.metrics.StationRefreshes.WithLabelValues("remote")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(d.metrics.StationsLoaded), 0)
}

func TestDirectory_UsesFreshCacheFile(t *testing.T) {
	ls := newListServer(t)
	now := time.Now()
	d := testDirectory(t, ls.srv.URL, clockwork.NewFakeClockAt(now))
	writeCache(t, d.cachePath, now.Add(-time.Hour))

	tbl, err := d.GetOrRefresh(context.Background())
	require.NoError(t, err)
	_, ok := tbl.ByCode("GMM00010410")
	assert.True(t, ok)
	assert.Equal(t, int32(0), ls.hits.Load())
}

func TestDirectory_RefreshesStaleCacheFile(t *testing.T) {
	ls := newListServer(t)
	now := time.Now()
	d := testDirectory(t, ls.srv.URL, clockwork.NewFakeClockAt(now))
	writeCache(t, d.cachePath, now.Add(-25*time.Hour))

	tbl, err := d.GetOrRefresh(context.Background())
	require.NoError(t, err)
	_, ok := tbl.ByCode("SPM00008221")
	assert.True(t, ok)
	assert.Equal(t, int32(1), ls.hits.Load())
}

func TestDirectory_ServesStaleDataWhenRemoteFails(t *testing.T) {
	ls := newListServer(t)
	ls.fail.Store(true)
	now := time.Now()
	clock := clockwork.NewFakeClockAt(now)
	d := testDirectory(t, ls.srv.URL, clock)
	writeCache(t, d.cachePath, now.Add(-48*time.Hour))

	tbl, err := d.GetOrRefresh(context.Background())
	require.NoError(t, err)
	_, ok := tbl.ByCode("GMM00010410")
	assert.True(t, ok)
	assert.Equal(t, int32(1), ls.hits.Load())

	// Within the retry interval the stale table is served without a new download.
	_, err = d.GetOrRefresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), ls.hits.Load())

	ls.fail.Store(false)
	clock.Advance(retryInterval)
	tbl, err = d.GetOrRefresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, int32(2), ls.hits.Load())
}

func TestDirectory_NothingAvailable(t *testing.T) {
	ls := newListServer(t)
	ls.fail.Store(true)
	d := testDirectory(t, ls.srv.URL, clockwork.NewFakeClockAt(time.Now()))

	_, err := d.GetOrRefresh(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNetwork))
	assert.Error(t, d.CheckReadiness(context.Background()))
}

func TestDirectory_TableExpires(t *testing.T) {
	ls := newListServer(t)
	clock := clockwork.NewFakeClockAt(time.Now())
	d := testDirectory(t, ls.srv.URL, clock)

	_, err := d.GetOrRefresh(context.Background())
	require.NoError(t, err)
	_, err = d.GetOrRefresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), ls.hits.Load())

	// Age the file too, so the refresh cannot be satisfied from disk.
	clock.Advance(25 * time.Hour)
	require.NoError(t, os.Chtimes(d.cachePath, time.Now().Add(-48*time.Hour), time.Now().Add(-48*time.Hour)))
	_, err = d.GetOrRefresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), ls.hits.Load())
}

func TestDirectory_ConcurrentCallersShareOneDownload(t *testing.T) {
	ls := newListServer(t)
	d := testDirectory(t, ls.srv.URL, clockwork.NewFakeClockAt(time.Now()))

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tbl, err := d.GetOrRefresh(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, 2, tbl.Len())
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), ls.hits.Load())
}

func TestDirectory_Refresh(t *testing.T) {
	ls := newListServer(t)
	now := time.Now()
	d := testDirectory(t, ls.srv.URL, clockwork.NewFakeClockAt(now))
	writeCache(t, d.cachePath, now)

	tbl, err := d.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, int32(1), ls.hits.Load())
}
