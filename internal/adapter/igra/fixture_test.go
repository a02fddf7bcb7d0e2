package igra

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// sample is one IGRA data record in raw units.
type sample struct {
	press, temp, dpdp, wdir, wspd int
}

func headerLine(id, y, m, d, h string, n int) string {
	return fmt.Sprintf("#%-11s %4s %2s %2s %2s %4s %4d ncdc-gts ncdc-gts  404417 -800000", id, y, m, d, h, "2330", n)
}

func dataLine(s sample) string {
	return fmt.Sprintf("%s%s %5d %6d%s%5d%s%5d%s%5d %5d %5d %5d",
		"2", "1", -9999, s.press, "B", 120, "B", s.temp, "B", 800, s.dpdp, s.wdir, s.wspd)
}

// standardSamples returns n descending-pressure records with valid fields.
func standardSamples(n int) []sample {
	out := make([]sample, n)
	for i := range out {
		out[i] = sample{
			press: 100000 - i*5000,
			temp:  150 - i*50,
			dpdp:  30,
			wdir:  270,
			wspd:  100 + i*10,
		}
	}
	return out
}

func block(id, y, m, d, h string, samples []sample) []string {
	lines := []string{headerLine(id, y, m, d, h, len(samples))}
	for _, s := range samples {
		lines = append(lines, dataLine(s))
	}
	return lines
}

func joinLines(blocks ...[]string) string {
	var all []string
	for _, b := range blocks {
		all = append(all, b...)
	}
	return strings.Join(all, "\n") + "\n"
}

func zipped(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if name != "" {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
