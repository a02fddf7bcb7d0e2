// Command stationlist downloads the IGRA station list and writes the CSV
// cache the service and the sounding CLI read at startup.
//
// Usage:
//
//	go run ./cmd/stationlist -out data/igra_stations.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/couchcryptid/sounding-service/internal/config"
	"github.com/couchcryptid/sounding-service/internal/stations"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	url := flag.String("url", config.DefaultStationListURL, "IGRA station list URL")
	out := flag.String("out", "", "output path for the station cache CSV")
	timeout := flag.Duration("timeout", 60*time.Second, "download timeout")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	list, err := stations.Download(ctx, &http.Client{Timeout: *timeout}, *url)
	if err != nil {
		return fmt.Errorf("download %s: %w", *url, err)
	}
	if len(list) == 0 {
		return fmt.Errorf("station list at %s has no usable entries", *url)
	}
	if err := stations.WriteCacheFile(*out, list); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}

	log.Printf("wrote %d stations to %s", len(list), *out)
	return nil
}
