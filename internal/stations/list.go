// Package stations maintains the IGRA station directory: the remote
// fixed-width station list, its local CSV cache and lookups by name.
package stations

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/couchcryptid/sounding-service/internal/domain"
)

// DefaultListURL is the IGRA v2 station inventory.
const DefaultListURL = "https://www.ncei.noaa.gov/pub/data/igra/igra2-station-list.txt"

// minLineLen is the shortest station list line that still holds the
// last-year field.
const minLineLen = 81

// Station list columns, [start, end).
var (
	colCode     = [2]int{0, 11}
	colName     = [2]int{38, 68}
	colLastYear = [2]int{77, 81}
)

// Name keywords that mark a site (airport, base) rather than a town. A name
// containing one is displayed with its full raw name as well as the city.
var siteKeywords = []string{"airport", "air", "ap", "afb", "base", "naval", "intl", "international"}

// ParseStationList reads the fixed-width station list. Lines shorter than
// 81 bytes or whose last-year field is not an integer are skipped.
func ParseStationList(r io.Reader) ([]domain.Station, error) {
	var out []domain.Station
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if s, ok := parseLine(sc.Text()); ok {
			out = append(out, s)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read station list: %w", err)
	}
	return out, nil
}

func parseLine(line string) (domain.Station, bool) {
	if len(line) < minLineLen {
		return domain.Station{}, false
	}
	if _, err := strconv.Atoi(strings.TrimSpace(field(line, colLastYear))); err != nil {
		return domain.Station{}, false
	}
	code := strings.TrimSpace(field(line, colCode))
	raw := strings.TrimSpace(field(line, colName))
	display, city := PrettifyName(raw)
	return domain.Station{
		Code:        code,
		WMO:         domain.WMOCode(code),
		DisplayName: display,
		City:        city,
		RawName:     raw,
	}, true
}

func field(line string, col [2]int) string {
	return line[col[0]:col[1]]
}

// PrettifyName derives the display name and city from a raw station name
// such as "MADRID/BARAJAS". The city is the part before the first slash in
// title case. Names mentioning a site keyword display as
// "City (Full Raw Name)".
func PrettifyName(raw string) (display, city string) {
	raw = strings.TrimSpace(raw)
	head, _, _ := strings.Cut(raw, "/")
	city = titleCase(head)

	lower := strings.ToLower(raw)
	for _, k := range siteKeywords {
		if strings.Contains(lower, k) {
			return fmt.Sprintf("%s (%s)", city, titleCase(raw)), city
		}
	}
	return city, city
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest, so "O'HARE INTL" becomes "O'Hare Intl".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inWord := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if inWord {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToTitle(r)
			}
			inWord = true
		} else {
			inWord = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
