// Command sounding retrieves one radiosonde profile and prints it as a table.
//
// Usage:
//
//	go run ./cmd/sounding -station SPM00008383 -date 2026-01-14
//	go run ./cmd/sounding -city madrid -date 2026-01-14 -hour 12 -source uwyo
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/sounding-service/internal/adapter/igra"
	"github.com/couchcryptid/sounding-service/internal/adapter/uwyo"
	"github.com/couchcryptid/sounding-service/internal/config"
	"github.com/couchcryptid/sounding-service/internal/domain"
	"github.com/couchcryptid/sounding-service/internal/observability"
	"github.com/couchcryptid/sounding-service/internal/sounding"
	"github.com/couchcryptid/sounding-service/internal/stations"
	"github.com/fatih/color"
)

func main() {
	if err := run(); err != nil {
		errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	station := flag.String("station", "", "IGRA station code, e.g. SPM00008383")
	city := flag.String("city", "", "city name to look up in the station directory (instead of -station)")
	date := flag.String("date", "", "launch date, YYYY-MM-DD")
	hour := flag.String("hour", domain.HourAuto, "UTC hour 00-23, or auto to search the synoptic hours")
	source := flag.String("source", string(domain.SourceAuto), "IGRA, UWYO or AUTO")
	noColor := flag.Bool("no-color", false, "disable color output")
	flag.Parse()

	if *noColor {
		color.NoColor = true
	}
	if *station == "" && *city == "" {
		flag.Usage()
		return errors.New("one of -station or -city is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewCLILogger(cfg.LogLevel)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *station == "" {
		dir := stations.NewDirectory(cfg.StationListURL, cfg.StationCachePath, cfg.StationCacheTTL, cfg.FetchTimeout, logger, metrics)
		table, err := dir.GetOrRefresh(ctx)
		if err != nil {
			return err
		}
		st, err := table.Find(*city)
		if err != nil {
			return err
		}
		*station = st.Code
		labelColor.Printf("Station: ")
		valueColor.Printf("%s (%s)\n", st.DisplayName, st.Code)
	}

	req, err := domain.NewSoundingRequest(*station, *date, *hour, *source)
	if err != nil {
		return err
	}

	archive := igra.NewClient(cfg.IGRABaseURL, cfg.FetchTimeout, archiveCacheSize(cfg), logger, metrics)
	web := uwyo.NewClient(cfg.UWYOBaseURL, cfg.FetchTimeout, logger, metrics)
	retriever := sounding.NewRetriever(sounding.NewSelector(archive, web, logger, metrics), logger, metrics)

	result, err := retriever.Retrieve(ctx, req)
	if err != nil {
		return fmt.Errorf("%s: %w", req.Station, err)
	}
	printResult(os.Stdout, result)
	return nil
}

// archiveCacheSize keeps at least the one station archive an auto-hour
// search reads up to eight times.
func archiveCacheSize(cfg *config.Config) int {
	return max(cfg.IGRACacheSize, 1)
}
