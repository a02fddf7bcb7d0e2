package uwyo

import (
	"strconv"
	"strings"
)

// field is a logical column resolved against the aliases the export has used
// over time. The first alias present in a response wins.
type field struct {
	name    string
	tag     string // canonical header given to csvutil
	aliases []string
}

var (
	fieldPressure    = field{"pressure", "_pressure", []string{"pressure", "pressure_hPa", "pres"}}
	fieldTemperature = field{"temperature", "_temperature", []string{"temperature", "temperature_C", "temp"}}
	fieldDewPoint    = field{"dew point", "_dewpoint", []string{"dew point", "dew point temperature_C", "dwpt"}}
	fieldDirection   = field{"wind direction", "_direction", []string{"direction", "wind direction_degree", "drct"}}
	fieldSpeed       = field{"wind speed", "_speed", []string{"speed", "wind speed_m/s", "sknt", "wind speed_kn"}}

	requiredFields = []field{fieldPressure, fieldTemperature, fieldDewPoint, fieldDirection, fieldSpeed}
)

// row receives one record after the header has been rewritten to the
// canonical tags. Values stay strings so unparseable cells become NaN
// instead of failing the decode.
type row struct {
	Pressure    string `csv:"_pressure"`
	Temperature string `csv:"_temperature"`
	DewPoint    string `csv:"_dewpoint"`
	Direction   string `csv:"_direction"`
	Speed       string `csv:"_speed"`
}

// windUnit is the unit implied by the speed column's name.
type windUnit int

const (
	knots windUnit = iota
	metersPerSecond
)

func (u windUnit) String() string {
	if u == metersPerSecond {
		return "m/s"
	}
	return "kn"
}

// speedUnit infers the wind speed unit from the matched alias. Names without
// an explicit marker are read as knots, the export's historical default.
func speedUnit(alias string) windUnit {
	if strings.Contains(alias, "m/s") {
		return metersPerSecond
	}
	// "kn", "sknt" and a bare "speed" are all knots.
	return knots
}

// schema is the outcome of resolving a response header.
type schema struct {
	header []string // rewritten header for csvutil
	speed  string   // matched speed alias
	unit   windUnit
}

// resolve maps each required field to the first alias present in columns.
// It returns the field that could not be resolved, if any.
func resolve(columns []string) (schema, *field) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}

	header := make([]string, len(columns))
	for i := range header {
		header[i] = "col_" + strconv.Itoa(i)
	}

	var s schema
	for _, f := range requiredFields {
		matched := ""
		for _, a := range f.aliases {
			if _, ok := index[a]; ok {
				matched = a
				break
			}
		}
		if matched == "" {
			return schema{}, &f
		}
		header[index[matched]] = f.tag
		if f.tag == fieldSpeed.tag {
			s.speed = matched
			s.unit = speedUnit(matched)
		}
	}
	s.header = header
	return s, nil
}
