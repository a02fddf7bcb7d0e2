package igra

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/sounding-service/internal/domain"
)

// Header lines start with this marker.
const headerMarker = '#'

// Raw values below this are IGRA's missing/removed markers (-8888, -9999).
const missingBelow = -900

// column is a fixed-width field: bytes [start, end) of a line.
type column struct {
	name       string
	start, end int
}

func (c column) text(line string) (string, error) {
	if len(line) < c.end {
		return "", fmt.Errorf("%s: line has %d bytes, need %d", c.name, len(line), c.end)
	}
	return line[c.start:c.end], nil
}

func (c column) int(line string) (int, error) {
	s, err := c.text(line)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", c.name, err)
	}
	return n, nil
}

// Header record layout.
var (
	headerTime  = column{"time", 13, 26} // "YYYY MM DD HH"
	headerCount = column{"count", 32, 36}
)

// Data record layout. Pressure is in Pa, temperature and dew-point
// depression in tenths of °C, wind direction in degrees and wind speed in
// tenths of m/s.
var (
	colPressure  = column{"pressure", 9, 15}
	colTemp      = column{"temperature", 22, 27}
	colDewDep    = column{"dewpoint_depression", 34, 39}
	colWindDir   = column{"wind_direction", 40, 45}
	colWindSpeed = column{"wind_speed", 46, 51}
	dataColumns  = []column{colPressure, colTemp, colDewDep, colWindDir, colWindSpeed}
)

// rawLevel is one data record before scaling.
type rawLevel struct {
	pressure, temperature, dewDep, windDir, windSpeed int
}

func parseRawLevel(line string) (rawLevel, error) {
	var v [5]int
	for i, c := range dataColumns {
		n, err := c.int(line)
		if err != nil {
			return rawLevel{}, err
		}
		v[i] = n
	}
	return rawLevel{v[0], v[1], v[2], v[3], v[4]}, nil
}

// level scales a raw record into physical units. ok is false when pressure or
// temperature is missing and the level must be dropped.
func (r rawLevel) level() (l domain.Level, ok bool) {
	if r.pressure < 0 || r.temperature < missingBelow {
		return domain.Level{}, false
	}
	l = domain.Level{
		Pressure:      float64(r.pressure) / 100,
		Temperature:   float64(r.temperature) / 10,
		DewPoint:      math.NaN(),
		WindDirection: math.NaN(),
		WindSpeed:     math.NaN(),
	}
	if r.dewDep >= missingBelow {
		l.DewPoint = float64(r.temperature-r.dewDep) / 10
	}
	if r.windDir >= missingBelow && r.windSpeed >= missingBelow {
		l.WindDirection = float64(r.windDir)
		l.WindSpeed = float64(r.windSpeed) / 10
	}
	return l, true
}
