package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func levelsDescending(n int) []Level {
	levels := make([]Level, n)
	for i := range levels {
		levels[i] = Level{
			Pressure:      1000 - float64(i)*50,
			Temperature:   15 - float64(i)*5,
			DewPoint:      10 - float64(i)*5,
			WindDirection: 270,
			WindSpeed:     10,
		}
	}
	return levels
}

func TestNewProfile_SortsDescendingAndAligns(t *testing.T) {
	levels := levelsDescending(12)
	// Reverse the input so the sort has work to do.
	for i, j := 0, len(levels)-1; i < j; i, j = i+1, j-1 {
		levels[i], levels[j] = levels[j], levels[i]
	}

	p, err := NewProfile(levels)
	require.NoError(t, err)

	require.Equal(t, 12, p.Len())
	for _, s := range []Series{p.Temperature, p.DewPoint, p.U, p.V} {
		assert.Len(t, s, p.Len())
	}
	for i := 1; i < p.Len(); i++ {
		assert.GreaterOrEqual(t, p.Pressure[i-1], p.Pressure[i])
	}
	// Index alignment: the 1000 hPa level carried T=15, Td=10.
	assert.Equal(t, 1000.0, p.Pressure[0])
	assert.Equal(t, 15.0, p.Temperature[0])
	assert.Equal(t, 10.0, p.DewPoint[0])
}

func TestNewProfile_TooFewLevels(t *testing.T) {
	_, err := NewProfile(levelsDescending(MinLevels - 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataUnavailable))
}

func TestNewProfile_DropsInvalidLevels(t *testing.T) {
	levels := levelsDescending(MinLevels)
	levels = append(levels, Level{Pressure: math.NaN(), Temperature: 1})
	levels = append(levels, Level{Pressure: 500, Temperature: math.NaN()})
	levels = append(levels, Level{Pressure: 0, Temperature: 1})

	p, err := NewProfile(levels)
	require.NoError(t, err)
	assert.Equal(t, MinLevels, p.Len())
}

func TestNewProfile_MissingFieldsStayNaN(t *testing.T) {
	levels := levelsDescending(MinLevels)
	levels[3].DewPoint = math.NaN()
	levels[4].WindSpeed = math.NaN()
	levels[4].WindDirection = math.NaN()

	p, err := NewProfile(levels)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(p.DewPoint[3]))
	assert.True(t, math.IsNaN(p.U[4]))
	assert.True(t, math.IsNaN(p.V[4]))
	assert.False(t, math.IsNaN(p.U[3]))
}

func TestWindComponents(t *testing.T) {
	tests := []struct {
		name      string
		speed     float64
		direction float64
		u, v      float64
	}{
		{"from north", 10, 0, 0, -10},
		{"from east", 10, 90, -10, 0},
		{"from south", 10, 180, 0, 10},
		{"from west", 10, 270, 10, 0},
		{"calm", 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, v := WindComponents(tt.speed, tt.direction)
			assert.InDelta(t, tt.u, u, 1e-9)
			assert.InDelta(t, tt.v, v, 1e-9)
		})
	}

	u, v := WindComponents(math.NaN(), 90)
	assert.True(t, math.IsNaN(u))
	assert.True(t, math.IsNaN(v))
}

func TestSeries_JSONEncodesNaNAsNull(t *testing.T) {
	data, err := json.Marshal(Series{1.5, math.NaN(), -7})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5,null,-7]`, string(data))

	var back Series
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 3)
	assert.Equal(t, 1.5, back[0])
	assert.True(t, math.IsNaN(back[1]))
	assert.Equal(t, -7.0, back[2])
}
