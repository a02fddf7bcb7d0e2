package uwyo

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/jszwec/csvutil"
	"github.com/martinlindhe/unit"

	"github.com/couchcryptid/sounding-service/internal/domain"
)

const snippetLen = 200

var utf8BOM = []byte("\xef\xbb\xbf")

// Table is a decoded CSV export.
type Table struct {
	Columns   []string
	SpeedName string // matched wind speed column
	Levels    []domain.Level
	Rows      int // data records read
	Skipped   int // records with the wrong number of fields
}

// ParseTable decodes a CSV export. source labels errors (e.g. "uwyo FM35").
// HTML bodies and headers missing a required field are format errors; an
// empty body or a table without a single usable row is unavailable data.
func ParseTable(body []byte, source string) (Table, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(body, utf8BOM))
	if len(trimmed) == 0 {
		return Table{}, fmt.Errorf("%w: %s: empty response", domain.ErrDataUnavailable, source)
	}
	if isHTML(trimmed) {
		return Table{}, &domain.FormatError{
			Source:  source,
			Reason:  "HTML page instead of CSV" + htmlSummary(trimmed),
			Snippet: snippet(trimmed),
		}
	}

	cr := csv.NewReader(bytes.NewReader(trimmed))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	columns, err := cr.Read()
	if err != nil {
		return Table{}, &domain.FormatError{Source: source, Reason: "unreadable header: " + err.Error(), Snippet: snippet(trimmed)}
	}
	for i := range columns {
		columns[i] = strings.TrimSpace(columns[i])
	}

	s, missing := resolve(columns)
	if missing != nil {
		return Table{}, &domain.FormatError{
			Source:  source,
			Reason:  "no " + missing.name + " column",
			Missing: missing.aliases,
			Columns: columns,
			Snippet: snippet(trimmed),
		}
	}

	dec, err := csvutil.NewDecoder(cr, s.header...)
	if err != nil {
		return Table{}, &domain.FormatError{Source: source, Reason: err.Error(), Columns: columns, Snippet: snippet(trimmed)}
	}

	t := Table{Columns: columns, SpeedName: s.speed}
	for {
		var r row
		err := dec.Decode(&r)
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, csvutil.ErrFieldCount) {
			t.Skipped++
			continue
		}
		if err != nil {
			return Table{}, &domain.FormatError{Source: source, Reason: "read row: " + err.Error(), Columns: columns, Snippet: snippet(trimmed)}
		}
		t.Rows++
		l := r.level(s.unit)
		if l.Valid() {
			t.Levels = append(t.Levels, l)
		}
	}

	if len(t.Levels) == 0 {
		return Table{}, fmt.Errorf("%w: %s: no rows with pressure and temperature (%d read)", domain.ErrDataUnavailable, source, t.Rows)
	}
	return t, nil
}

// Profile turns the table into a profile, enforcing the minimum level count.
func (t Table) Profile() (domain.Profile, error) {
	return domain.NewProfile(t.Levels)
}

func (r row) level(speedUnit windUnit) domain.Level {
	speed := number(r.Speed)
	if speedUnit == knots {
		speed = (unit.Speed(speed) * unit.Knot).MetersPerSecond()
	}
	return domain.Level{
		Pressure:      number(r.Pressure),
		Temperature:   number(r.Temperature),
		DewPoint:      number(r.DewPoint),
		WindDirection: number(r.Direction),
		WindSpeed:     speed,
	}
}

// number parses a cell, returning NaN for anything that is not a finite number.
func number(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// isHTML reports whether the export returned a web page instead of a table.
// The body is sniffed rather than trusting Content-Type: a CSV header never
// starts with '<'.
func isHTML(body []byte) bool {
	return len(body) > 0 && body[0] == '<'
}

// htmlSummary extracts the page title, or failing that its leading text, so
// an upstream error page reads as more than markup.
func htmlSummary(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	text := strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
	if text == "" {
		text = strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	}
	if text == "" {
		return ""
	}
	return ": " + truncate(text, 120)
}

// snippet is the start of the body on one line, for diagnostics.
func snippet(body []byte) string {
	s := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(string(body))
	return truncate(s, snippetLen)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
