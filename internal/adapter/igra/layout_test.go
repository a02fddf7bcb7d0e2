package igra

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtureOffsets(t *testing.T) {
	h := headerLine("SPM00008383", "2026", "01", "14", "12", 87)
	ts, err := headerTime.text(h)
	require.NoError(t, err)
	assert.Equal(t, "2026 01 14 12", ts)
	n, err := headerCount.int(h)
	require.NoError(t, err)
	assert.Equal(t, 87, n)
}

func TestParseRawLevel_UnitCorrectness(t *testing.T) {
	raw, err := parseRawLevel(dataLine(sample{press: 101325, temp: -50, dpdp: 20, wdir: 90, wspd: 123}))
	require.NoError(t, err)

	l, ok := raw.level()
	require.True(t, ok)
	assert.InDelta(t, 1013.25, l.Pressure, 1e-9)
	assert.InDelta(t, -5.0, l.Temperature, 1e-9)
	assert.InDelta(t, -7.0, l.DewPoint, 1e-9)
	assert.InDelta(t, 90.0, l.WindDirection, 1e-9)
	assert.InDelta(t, 12.3, l.WindSpeed, 1e-9)
}

func TestRawLevel_MissingMarkers(t *testing.T) {
	tests := []struct {
		name    string
		raw     rawLevel
		keep    bool
		dewNaN  bool
		windNaN bool
	}{
		{"complete", rawLevel{85000, 52, 31, 250, 75}, true, false, false},
		{"missing pressure", rawLevel{-9999, 52, 31, 250, 75}, false, false, false},
		{"missing temperature", rawLevel{85000, -9999, 31, 250, 75}, false, false, false},
		{"removed temperature", rawLevel{85000, -8888, 31, 250, 75}, false, false, false},
		{"missing dew point", rawLevel{85000, 52, -9999, 250, 75}, true, true, false},
		{"missing direction", rawLevel{85000, 52, 31, -9999, 75}, true, false, true},
		{"missing speed", rawLevel{85000, 52, 31, 250, -8888}, true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ok := tt.raw.level()
			require.Equal(t, tt.keep, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.dewNaN, math.IsNaN(l.DewPoint))
			assert.Equal(t, tt.windNaN, math.IsNaN(l.WindDirection))
			assert.Equal(t, tt.windNaN, math.IsNaN(l.WindSpeed))
		})
	}
}

func TestParseRawLevel_Malformed(t *testing.T) {
	_, err := parseRawLevel("21 short")
	require.Error(t, err)

	line := []byte(dataLine(sample{press: 50000, temp: -100, dpdp: 50, wdir: 180, wspd: 200}))
	copy(line[22:27], "  x1 ")
	_, err = parseRawLevel(string(line))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "temperature")
}
