package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatError(t *testing.T) {
	err := &FormatError{
		Source:  "uwyo",
		Missing: []string{"dew point", "dwpt"},
		Columns: []string{"pressure", "temperature"},
		Snippet: "pressure,temperature 1000,15",
	}
	assert.True(t, errors.Is(err, ErrUnexpectedFormat))
	assert.Contains(t, err.Error(), "dwpt")
	assert.Contains(t, err.Error(), `"temperature"`)
	assert.Contains(t, err.Error(), "content starts: pressure,temperature")
}

func TestFallbackError_SurfacesWebError(t *testing.T) {
	archive := fmt.Errorf("%w: connection refused", ErrNetwork)
	web := fmt.Errorf("%w: no rows", ErrDataUnavailable)
	err := &FallbackError{Archive: archive, Web: web}

	assert.True(t, errors.Is(err, ErrDataUnavailable))
	assert.False(t, errors.Is(err, ErrNetwork))
	assert.Equal(t, "unavailable", ErrorKind(err))

	var fb *FallbackError
	assert.True(t, errors.As(err, &fb))
	assert.Equal(t, archive, fb.Archive)
}

func TestNoDataError(t *testing.T) {
	last := fmt.Errorf("%w: timeout", ErrNetwork)
	err := &NoDataError{
		Date:     "2026-01-14",
		Hours:    []string{"00", "12"},
		Attempts: []error{errors.New("first"), last},
	}
	assert.True(t, errors.Is(err, ErrNoDataForDate))
	assert.True(t, errors.Is(err, ErrNetwork), "last cause stays reachable")
	assert.Equal(t, "no_data", ErrorKind(err))
	assert.Equal(t, last, err.Last())
	assert.Contains(t, err.Error(), "tried: 00, 12")
	assert.Contains(t, err.Error(), "timeout")
}

func TestNoDataErrorInterrupted(t *testing.T) {
	err := &NoDataError{
		Date:        "2026-01-14",
		Hours:       []string{"00"},
		Attempts:    []error{ErrDataUnavailable},
		Interrupted: context.Canceled,
	}
	assert.True(t, errors.Is(err, ErrNoDataForDate))
	assert.True(t, errors.Is(err, ErrDataUnavailable))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, ErrDataUnavailable, err.Last())
	assert.Contains(t, err.Error(), "tried: 00)")
	assert.Contains(t, err.Error(), "stopped early: context canceled")
}

func TestErrorKind(t *testing.T) {
	tests := map[string]error{
		"success":     nil,
		"network":     fmt.Errorf("wrap: %w", ErrNetwork),
		"decode":      ErrDecode,
		"format":      &FormatError{Source: "x"},
		"unavailable": ErrDataUnavailable,
		"no_data":     &NoDataError{},
		"invalid":     ErrInvalidRequest,
		"error":       errors.New("boom"),
	}
	for want, err := range tests {
		assert.Equal(t, want, ErrorKind(err))
	}
}
