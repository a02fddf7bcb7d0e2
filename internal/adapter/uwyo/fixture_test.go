package uwyo

import (
	"fmt"
	"strings"
)

// The header the wsgi CSV export currently emits.
const wsgiHeader = "time,longitude,latitude,pressure_hPa,geopotential height_m,temperature_C," +
	"dew point temperature_C,ice point temperature_C,relative humidity_%,humidity wrt ice_%," +
	"mixing ratio_g/kg,wind direction_degree,wind speed_m/s"

// wsgiCSV builds n descending-pressure rows under wsgiHeader. Wind is 10 m/s
// from the west on every level.
func wsgiCSV(n int) string {
	var b strings.Builder
	b.WriteString(wsgiHeader + "\n")
	for i := range n {
		p := 1000 - float64(i)*50
		t := 15 - float64(i)*5
		fmt.Fprintf(&b, "2026-01-14 12:00:00,-3.58,40.50,%.1f,%d,%.1f,%.1f,%.1f,80,80,5.1,270,10.0\n",
			p, 600+i*500, t, t-3, t-3)
	}
	return b.String()
}

// legacyCSV uses the short column names of the older export, with knots.
func legacyCSV(n int) string {
	var b strings.Builder
	b.WriteString("pres,hght,temp,dwpt,relh,mixr,drct,sknt\n")
	for i := range n {
		fmt.Fprintf(&b, "%.1f,%d,%.1f,%.1f,80,5.1,180,20\n",
			1000-float64(i)*50, 600+i*500, 15-float64(i)*5, 12-float64(i)*5)
	}
	return b.String()
}

const errorPage = `<!DOCTYPE html>
<html><head><title>Sounding not available</title></head>
<body><h1>Can't get 08383 MADRID Observations at 14 Jan 2026 12Z</h1></body></html>`
