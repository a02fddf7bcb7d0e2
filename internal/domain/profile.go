package domain

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
)

// MinLevels is the smallest number of valid levels a usable profile may have.
const MinLevels = 10

// Level is one vertical observation. Pressure and Temperature are always
// set; the remaining fields are NaN when the source reported them missing.
type Level struct {
	Pressure      float64 // hPa
	Temperature   float64 // °C
	DewPoint      float64 // °C
	WindDirection float64 // degrees, meteorological (from), 0 = north
	WindSpeed     float64 // m/s
}

// Valid reports whether the level has the two fields every profile needs.
func (l Level) Valid() bool {
	return l.Pressure > 0 && !math.IsNaN(l.Pressure) && !math.IsNaN(l.Temperature)
}

// Series is a float slice whose JSON form encodes NaN as null.
type Series []float64

func (s Series) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			b.WriteString("null")
			continue
		}
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

func (s *Series) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Series, len(raw))
	for i, v := range raw {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	*s = out
	return nil
}

// Profile is a sounding as five index-aligned series, surface first.
type Profile struct {
	Pressure    Series `json:"pressure_hpa"`
	Temperature Series `json:"temperature_c"`
	DewPoint    Series `json:"dewpoint_c"`
	U           Series `json:"u_ms"`
	V           Series `json:"v_ms"`
}

// Len returns the number of levels.
func (p Profile) Len() int { return len(p.Pressure) }

// NewProfile sorts levels by descending pressure, derives wind components and
// builds the aligned series. Invalid levels are dropped; fewer than MinLevels
// survivors is ErrDataUnavailable.
func NewProfile(levels []Level) (Profile, error) {
	valid := make([]Level, 0, len(levels))
	for _, l := range levels {
		if l.Valid() {
			valid = append(valid, l)
		}
	}
	if len(valid) < MinLevels {
		return Profile{}, fmt.Errorf("%w: %d valid levels, need at least %d", ErrDataUnavailable, len(valid), MinLevels)
	}

	slices.SortStableFunc(valid, func(a, b Level) int {
		return cmp.Compare(b.Pressure, a.Pressure)
	})

	n := len(valid)
	p := Profile{
		Pressure:    make(Series, n),
		Temperature: make(Series, n),
		DewPoint:    make(Series, n),
		U:           make(Series, n),
		V:           make(Series, n),
	}
	for i, l := range valid {
		p.Pressure[i] = l.Pressure
		p.Temperature[i] = l.Temperature
		p.DewPoint[i] = l.DewPoint
		p.U[i], p.V[i] = WindComponents(l.WindSpeed, l.WindDirection)
	}
	return p, nil
}

// WindComponents converts speed and meteorological direction (the direction
// the wind blows from, clockwise from north) into eastward and northward
// components. NaN in either input yields NaN components.
func WindComponents(speed, direction float64) (u, v float64) {
	if math.IsNaN(speed) || math.IsNaN(direction) {
		return math.NaN(), math.NaN()
	}
	rad := direction * math.Pi / 180
	return -speed * math.Sin(rad), -speed * math.Cos(rad)
}
