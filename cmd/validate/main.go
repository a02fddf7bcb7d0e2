// Command validate checks a station cache file for integrity: well-formed
// and unique codes, WMO numbers consistent with the code, and display names
// present and unique enough for city lookup.
//
// Usage:
//
//	go run ./cmd/validate -cache data/igra_stations.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/sounding-service/internal/domain"
	"github.com/couchcryptid/sounding-service/internal/stations"
)

const codeLength = 11

type result struct {
	name   string
	passed bool
	detail string
}

func main() {
	cache := flag.String("cache", "", "path to the station cache CSV")
	flag.Parse()

	if *cache == "" {
		flag.Usage()
		os.Exit(2)
	}

	list, modTime, err := stations.ReadCacheFile(*cache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", *cache, err)
		os.Exit(1)
	}
	fmt.Printf("%s: %d stations, modified %s\n\n", *cache, len(list), modTime.Format("2006-01-02 15:04"))

	results := validate(list)
	failed := 0
	for _, r := range results {
		status := "PASS"
		if !r.passed {
			status = "FAIL"
			failed++
		}
		fmt.Printf("[%s] %s", status, r.name)
		if r.detail != "" {
			fmt.Printf(" (%s)", r.detail)
		}
		fmt.Println()
	}

	fmt.Printf("\n%d/%d checks passed\n", len(results)-failed, len(results))
	if failed > 0 {
		os.Exit(1)
	}
}

func validate(list []domain.Station) []result {
	return []result{
		checkNotEmpty(list),
		checkCodes(list),
		checkUniqueCodes(list),
		checkWMO(list),
		checkDisplayNames(list),
		checkDuplicateDisplayNames(list),
	}
}

func checkNotEmpty(list []domain.Station) result {
	return result{name: "cache is not empty", passed: len(list) > 0, detail: fmt.Sprintf("%d stations", len(list))}
}

func checkCodes(list []domain.Station) result {
	var bad []string
	for _, s := range list {
		if len(s.Code) != codeLength {
			bad = append(bad, s.Code)
		}
	}
	return result{name: "codes are 11 characters", passed: len(bad) == 0, detail: sample(bad)}
}

func checkUniqueCodes(list []domain.Station) result {
	seen := make(map[string]bool, len(list))
	var dup []string
	for _, s := range list {
		if seen[s.Code] {
			dup = append(dup, s.Code)
		}
		seen[s.Code] = true
	}
	return result{name: "codes are unique", passed: len(dup) == 0, detail: sample(dup)}
}

func checkWMO(list []domain.Station) result {
	var bad []string
	for _, s := range list {
		if s.WMO != domain.WMOCode(s.Code) {
			bad = append(bad, s.Code)
		}
	}
	return result{name: "WMO numbers match codes", passed: len(bad) == 0, detail: sample(bad)}
}

func checkDisplayNames(list []domain.Station) result {
	var bad []string
	for _, s := range list {
		if s.DisplayName == "" || s.City == "" {
			bad = append(bad, s.Code)
		}
	}
	return result{name: "display names and cities present", passed: len(bad) == 0, detail: sample(bad)}
}

// Duplicate display names are legal but make city lookups ambiguous, so the
// check reports them without failing.
func checkDuplicateDisplayNames(list []domain.Station) result {
	count := make(map[string]int, len(list))
	for _, s := range list {
		count[s.DisplayName]++
	}
	var dup []string
	for _, s := range list {
		if count[s.DisplayName] > 1 {
			dup = append(dup, s.DisplayName)
			count[s.DisplayName] = 0
		}
	}
	return result{name: "display names (duplicates reported)", passed: true, detail: fmt.Sprintf("%d shared; %s", len(dup), sample(dup))}
}

// sample lists up to five offenders.
func sample(items []string) string {
	if len(items) == 0 {
		return ""
	}
	const limit = 5
	if len(items) <= limit {
		return fmt.Sprint(items)
	}
	return fmt.Sprintf("%v and %d more", items[:limit], len(items)-limit)
}
