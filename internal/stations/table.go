package stations

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/sounding-service/internal/domain"
)

// ErrNotFound is returned when no station matches a lookup.
var ErrNotFound = errors.New("station not found")

// AmbiguousError is returned by Find when a query matches several stations.
type AmbiguousError struct {
	Query   string
	Matches []domain.Station
}

func (e *AmbiguousError) Error() string {
	names := make([]string, 0, len(e.Matches))
	for _, s := range e.Matches {
		names = append(names, fmt.Sprintf("%s (%s)", s.DisplayName, s.Code))
	}
	return fmt.Sprintf("ambiguous station query %q: %d matches: %s", e.Query, len(e.Matches), strings.Join(names, "; "))
}

// Table is an immutable snapshot of the directory.
type Table struct {
	stations  []domain.Station
	byCode    map[string]int
	fetchedAt time.Time
}

// NewTable indexes stations. fetchedAt is when the data left the upstream
// list and drives staleness.
func NewTable(stations []domain.Station, fetchedAt time.Time) *Table {
	byCode := make(map[string]int, len(stations))
	for i, s := range stations {
		byCode[s.Code] = i
	}
	return &Table{stations: stations, byCode: byCode, fetchedAt: fetchedAt}
}

// Len returns the number of stations.
func (t *Table) Len() int { return len(t.stations) }

// FetchedAt returns when the data was downloaded.
func (t *Table) FetchedAt() time.Time { return t.fetchedAt }

// All returns a copy of every station in list order.
func (t *Table) All() []domain.Station {
	return append([]domain.Station(nil), t.stations...)
}

// ByCode looks up a station by its IGRA code.
func (t *Table) ByCode(code string) (domain.Station, bool) {
	i, ok := t.byCode[strings.TrimSpace(code)]
	if !ok {
		return domain.Station{}, false
	}
	return t.stations[i], true
}

// ByDisplayName returns the first station with exactly this display name.
func (t *Table) ByDisplayName(name string) (domain.Station, bool) {
	for _, s := range t.stations {
		if s.DisplayName == name {
			return s, true
		}
	}
	return domain.Station{}, false
}

// Find returns the single station whose city contains query, ignoring case.
func (t *Table) Find(query string) (domain.Station, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return domain.Station{}, fmt.Errorf("%w: empty query", ErrNotFound)
	}
	var matches []domain.Station
	for _, s := range t.stations {
		if strings.Contains(strings.ToLower(s.City), q) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Station{}, fmt.Errorf("%w: no city matches %q", ErrNotFound, query)
	case 1:
		return matches[0], nil
	default:
		return domain.Station{}, &AmbiguousError{Query: query, Matches: matches}
	}
}

// Search returns up to limit stations whose code, city or display name
// contains query, ignoring case. An empty query matches everything; a
// non-positive limit means no limit.
func (t *Table) Search(query string, limit int) []domain.Station {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []domain.Station
	for _, s := range t.stations {
		if limit > 0 && len(out) == limit {
			break
		}
		if q == "" ||
			strings.Contains(strings.ToLower(s.Code), q) ||
			strings.Contains(strings.ToLower(s.City), q) ||
			strings.Contains(strings.ToLower(s.DisplayName), q) {
			out = append(out, s)
		}
	}
	return out
}
