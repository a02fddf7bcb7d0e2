// Package domain models radiosonde soundings retrieved from the IGRA archive
// and the University of Wyoming web export.
//
// # Data Sources
//
// IGRA v2 (NOAA NCEI) publishes one zip per station under
// https://www.ncei.noaa.gov/data/integrated-global-radiosonde-archive/access/data-por/.
// Each zip holds a single fixed-width text member with the station's full
// launch history. The University of Wyoming serves one launch at a time from
// https://weather.uwyo.edu/wsgi/sounding as CSV, backed by either the FM35
// (TEMP bulletin) or the BUFR decoder.
//
// # IGRA Conventions
//
// Header lines start with "#":
//
//	#USM00072520 2024 04 26 12 1105   87 ncdc-gts ncdc-gts  404817  -800950
//	 ^id         ^year/month/day/hour  ^number of data lines that follow
//
// Data lines carry scaled integers at fixed offsets:
//
//	PRESS  Pa                     (101325 = 1013.25 hPa)
//	TEMP   tenths of °C           (-50 = -5.0 °C)
//	DPDP   tenths of °C depression (dew point = TEMP - DPDP)
//	WDIR   degrees from north
//	WSPD   tenths of m/s
//
// Values of -9999 and -8888 mark missing or removed data. Anything below -900
// is treated as missing.
//
// # UWYO Conventions
//
// Column names drift between deployments ("pressure" vs "pressure_hPa",
// "dwpt" vs "dew point"). Wind speed is knots unless the column name says
// m/s. An HTML page in place of CSV means the query failed upstream.
//
// # Profile Invariants
//
// A [Profile] is five aligned series sorted surface first (descending
// pressure). Missing dew point or wind is NaN, never a sentinel. Profiles
// with fewer than [MinLevels] levels are rejected with [ErrDataUnavailable].
package domain
