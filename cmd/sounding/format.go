package main

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/couchcryptid/sounding-service/internal/domain"
	"github.com/fatih/color"
)

var (
	labelColor   = color.New(color.FgCyan)
	valueColor   = color.New(color.FgWhite)
	headerColor  = color.New(color.FgBlue, color.Bold)
	numberColor  = color.New(color.FgGreen)
	missingColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

// missing marks a NaN cell.
const missing = "--"

const columnWidth = 9

func printResult(w io.Writer, r domain.SoundingResult) {
	labelColor.Fprint(w, "Sounding: ")
	valueColor.Fprintf(w, "%s %s\n", r.Station, r.Time)
	labelColor.Fprint(w, "Source:   ")
	valueColor.Fprintf(w, "%s [%s]\n", r.SourceName, r.Provenance)
	if r.SourceURL != "" {
		labelColor.Fprint(w, "URL:      ")
		valueColor.Fprintln(w, r.SourceURL)
	}
	labelColor.Fprint(w, "Levels:   ")
	numberColor.Fprintln(w, r.Profile.Len())
	fmt.Fprintln(w)

	for _, h := range []string{"P hPa", "T °C", "Td °C", "U m/s", "V m/s"} {
		headerColor.Fprint(w, pad(h))
	}
	fmt.Fprintln(w)

	p := r.Profile
	for i := range p.Len() {
		for _, v := range []float64{p.Pressure[i], p.Temperature[i], p.DewPoint[i], p.U[i], p.V[i]} {
			cell := formatValue(v)
			if cell == missing {
				missingColor.Fprint(w, pad(cell))
				continue
			}
			numberColor.Fprint(w, pad(cell))
		}
		fmt.Fprintln(w)
	}
}

// formatValue prints one decimal, or missing for NaN.
func formatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return missing
	}
	if v == 0 {
		v = 0 // normalise -0
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func pad(s string) string {
	return fmt.Sprintf("%*s", columnWidth, s)
}
