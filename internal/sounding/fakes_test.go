package sounding

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/sounding-service/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProfile(n int) domain.Profile {
	levels := make([]domain.Level, n)
	for i := range levels {
		levels[i] = domain.Level{
			Pressure:      1000 - float64(i)*50,
			Temperature:   15 - float64(i)*5,
			DewPoint:      10 - float64(i)*5,
			WindDirection: 270,
			WindSpeed:     10,
		}
	}
	p, err := domain.NewProfile(levels)
	if err != nil {
		panic(err)
	}
	return p
}

type call struct {
	station string
	at      domain.ObservationTime
}

// fakeArchive succeeds only for the hours in ok.
type fakeArchive struct {
	ok    map[string]bool
	err   error
	calls []call
}

func (f *fakeArchive) Fetch(_ context.Context, station string, at domain.ObservationTime) (domain.Profile, error) {
	f.calls = append(f.calls, call{station, at})
	if f.ok[at.Hour] {
		return testProfile(12), nil
	}
	if f.err != nil {
		return domain.Profile{}, f.err
	}
	return domain.Profile{}, fmt.Errorf("%w: igra: no sounding for %s", domain.ErrDataUnavailable, at.ArchiveKey())
}

func (f *fakeArchive) ArchiveURL(station string) string {
	return "https://archive.test/" + station + "-data.txt.zip"
}

// fakeWeb succeeds only for the hours in ok, tagging results with prov.
type fakeWeb struct {
	ok    map[string]bool
	prov  domain.Provenance
	err   error
	calls []call
}

func (f *fakeWeb) Fetch(_ context.Context, wmo string, at domain.ObservationTime) (domain.Profile, domain.Provenance, error) {
	f.calls = append(f.calls, call{wmo, at})
	if f.ok[at.Hour] {
		return testProfile(15), f.prov, nil
	}
	if f.err != nil {
		return domain.Profile{}, "", f.err
	}
	return domain.Profile{}, "", fmt.Errorf("%w: uwyo: no rows", domain.ErrDataUnavailable)
}

func (f *fakeWeb) SourceURL(wmo string, at domain.ObservationTime, prov domain.Provenance) string {
	return fmt.Sprintf("https://web.test/%s/%s/%s", wmo, at.Hour, prov.Variant())
}
