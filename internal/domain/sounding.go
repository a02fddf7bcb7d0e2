package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SourceMode selects which archives a retrieval may use.
type SourceMode string

const (
	SourceArchive SourceMode = "IGRA" // archive only
	SourceWeb     SourceMode = "UWYO" // web export only
	SourceAuto    SourceMode = "AUTO" // archive, then web
)

// ParseSourceMode accepts IGRA, UWYO or AUTO in any case. Empty means AUTO.
func ParseSourceMode(s string) (SourceMode, error) {
	switch m := SourceMode(strings.ToUpper(strings.TrimSpace(s))); m {
	case "":
		return SourceAuto, nil
	case SourceArchive, SourceWeb, SourceAuto:
		return m, nil
	default:
		return "", fmt.Errorf("%w: source mode must be IGRA, UWYO or AUTO, got %q", ErrInvalidRequest, s)
	}
}

func (m SourceMode) String() string { return string(m) }

// Provenance records which source and variant produced a profile.
type Provenance string

const (
	ProvenanceIGRA     Provenance = "IGRA"
	ProvenanceUWYOFM35 Provenance = "UWYO-FM35"
	ProvenanceUWYOBUFR Provenance = "UWYO-BUFR"
)

// Source returns the archive the provenance belongs to.
func (p Provenance) Source() SourceMode {
	if strings.HasPrefix(string(p), string(SourceWeb)) {
		return SourceWeb
	}
	return SourceArchive
}

// Variant returns the web backend ("FM35", "BUFR"), or "" for the archive.
func (p Provenance) Variant() string {
	_, variant, _ := strings.Cut(string(p), "-")
	return variant
}

// DisplayName is the human-facing name of the source.
func (p Provenance) DisplayName() string {
	switch p.Source() {
	case SourceArchive:
		return "Integrated Global Radiosonde Archive (IGRA - NOAA)"
	default:
		return "University of Wyoming Weather Web (UWYO)"
	}
}

// WMOCode returns the 5-character WMO block/station number used by the web
// source: the last five characters of an IGRA station code.
func WMOCode(stationCode string) string {
	if len(stationCode) <= 5 {
		return stationCode
	}
	return stationCode[len(stationCode)-5:]
}

// ObservationTime is one launch time as zero-padded strings.
type ObservationTime struct {
	Year  string `json:"year"`
	Month string `json:"month"`
	Day   string `json:"day"`
	Hour  string `json:"hour"`
}

// ArchiveKey is the timestamp as it appears in IGRA header lines.
func (t ObservationTime) ArchiveKey() string {
	return t.Year + " " + t.Month + " " + t.Day + " " + t.Hour
}

// Date returns YYYY-MM-DD.
func (t ObservationTime) Date() string {
	return t.Year + "-" + t.Month + "-" + t.Day
}

func (t ObservationTime) String() string {
	return t.Date() + " " + t.Hour + "Z"
}

// SoundingRequest asks for a station's sounding on a date. Hour is either a
// two-digit UTC hour or "auto" to search the synoptic hours.
type SoundingRequest struct {
	Station string     `json:"station"`
	Year    string     `json:"year"`
	Month   string     `json:"month"`
	Day     string     `json:"day"`
	Hour    string     `json:"hour"`
	Source  SourceMode `json:"source"`
}

// HourAuto requests the synoptic-hour search.
const HourAuto = "auto"

// NewSoundingRequest builds a request from a YYYY-MM-DD date, an hour ("auto",
// "6", "06" or "06:00") and a source mode string.
func NewSoundingRequest(station, date, hour, source string) (SoundingRequest, error) {
	station = strings.TrimSpace(station)
	if len(station) < 5 {
		return SoundingRequest{}, fmt.Errorf("%w: station code %q is too short", ErrInvalidRequest, station)
	}
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(date))
	if err != nil {
		return SoundingRequest{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidRequest, date)
	}
	h, err := NormalizeHour(hour)
	if err != nil {
		return SoundingRequest{}, err
	}
	mode, err := ParseSourceMode(source)
	if err != nil {
		return SoundingRequest{}, err
	}
	return SoundingRequest{
		Station: station,
		Year:    strconv.Itoa(d.Year()),
		Month:   fmt.Sprintf("%02d", int(d.Month())),
		Day:     fmt.Sprintf("%02d", d.Day()),
		Hour:    h,
		Source:  mode,
	}, nil
}

// NormalizeHour returns HourAuto or a zero-padded UTC hour.
func NormalizeHour(hour string) (string, error) {
	hour = strings.TrimSpace(hour)
	if hour == "" || strings.EqualFold(hour, HourAuto) {
		return HourAuto, nil
	}
	hh, _, _ := strings.Cut(hour, ":")
	n, err := strconv.Atoi(hh)
	if err != nil || n < 0 || n > 23 {
		return "", fmt.Errorf("%w: hour %q must be auto or 00-23", ErrInvalidRequest, hour)
	}
	return fmt.Sprintf("%02d", n), nil
}

// Normalize validates a request that did not come through NewSoundingRequest
// (decoded from JSON, for instance) and returns its canonical form.
func (r SoundingRequest) Normalize() (SoundingRequest, error) {
	return NewSoundingRequest(r.Station, r.Date(), r.Hour, string(r.Source))
}

// At returns the observation time for a concrete hour on the request's date.
func (r SoundingRequest) At(hour string) ObservationTime {
	return ObservationTime{Year: r.Year, Month: r.Month, Day: r.Day, Hour: hour}
}

// Date returns YYYY-MM-DD.
func (r SoundingRequest) Date() string {
	return r.Year + "-" + r.Month + "-" + r.Day
}

// CacheKey identifies the request for result caching.
func (r SoundingRequest) CacheKey() string {
	return fmt.Sprintf("%s|%s|%s|%s", r.Station, r.Date(), r.Hour, r.Source)
}

// Station is one entry of the IGRA station directory.
type Station struct {
	Code        string `json:"code"`
	WMO         string `json:"wmo"`
	DisplayName string `json:"display_name"`
	City        string `json:"city"`
	RawName     string `json:"raw_name"`
}

// SoundingResult is a retrieved profile with its provenance.
type SoundingResult struct {
	Station     string          `json:"station"`
	Time        ObservationTime `json:"time"`
	Provenance  Provenance      `json:"provenance"`
	SourceName  string          `json:"source_name"`
	SourceURL   string          `json:"source_url,omitempty"`
	Profile     Profile         `json:"profile"`
	RetrievedAt time.Time       `json:"retrieved_at"`
}
