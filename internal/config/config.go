package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Upstream defaults.
const (
	DefaultIGRABaseURL    = "https://www.ncei.noaa.gov/data/integrated-global-radiosonde-archive/access/data-por"
	DefaultUWYOBaseURL    = "https://weather.uwyo.edu/wsgi/sounding"
	DefaultStationListURL = "https://www.ncei.noaa.gov/pub/data/igra/igra2-station-list.txt"
)

// Store drivers.
const (
	StoreNone   = "none"
	StoreSQLite = "sqlite3"
	StoreMySQL  = "mysql"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream sources.
	FetchTimeout   time.Duration
	IGRABaseURL    string
	IGRACacheSize  int
	UWYOBaseURL    string
	StationListURL string

	// Station directory.
	StationCachePath string
	StationCacheTTL  time.Duration

	// Result store.
	StoreDriver string
	StoreDSN    string

	// Request worker.
	WorkerEnabled      bool
	KafkaBrokers       []string
	KafkaRequestTopic  string
	KafkaResultTopic   string
	KafkaGroupID       string
	BatchSize          int
	BatchFlushInterval time.Duration

	// MQTT result publishing; disabled when MQTTBrokerURL is empty.
	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTTopicPrefix string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is loaded first if
// present; variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	stationTTL, err := parsePositiveDuration("STATION_CACHE_TTL", "24h")
	if err != nil {
		return nil, err
	}
	igraCacheSize, err := parsePositiveInt("IGRA_CACHE_SIZE", 4)
	if err != nil {
		return nil, err
	}
	workerEnabled, err := parseBool("WORKER_ENABLED", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FetchTimeout:   fetchTimeout,
		IGRABaseURL:    sharedcfg.EnvOrDefault("IGRA_BASE_URL", DefaultIGRABaseURL),
		IGRACacheSize:  igraCacheSize,
		UWYOBaseURL:    sharedcfg.EnvOrDefault("UWYO_BASE_URL", DefaultUWYOBaseURL),
		StationListURL: sharedcfg.EnvOrDefault("STATION_LIST_URL", DefaultStationListURL),

		StationCachePath: sharedcfg.EnvOrDefault("STATION_CACHE_PATH", "data/igra_stations_all.csv"),
		StationCacheTTL:  stationTTL,

		StoreDriver: strings.ToLower(sharedcfg.EnvOrDefault("STORE_DRIVER", StoreNone)),
		StoreDSN:    os.Getenv("STORE_DSN"),

		WorkerEnabled:     workerEnabled,
		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaRequestTopic: sharedcfg.EnvOrDefault("KAFKA_REQUEST_TOPIC", "sounding-requests"),
		KafkaResultTopic:  sharedcfg.EnvOrDefault("KAFKA_RESULT_TOPIC", "sounding-results"),
		KafkaGroupID:      sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "sounding-service"),

		MQTTBrokerURL:   os.Getenv("MQTT_BROKER_URL"),
		MQTTClientID:    sharedcfg.EnvOrDefault("MQTT_CLIENT_ID", "sounding-service"),
		MQTTTopicPrefix: sharedcfg.EnvOrDefault("MQTT_TOPIC_PREFIX", "soundings"),
	}

	switch cfg.StoreDriver {
	case StoreNone:
	case StoreSQLite, StoreMySQL:
		if cfg.StoreDSN == "" {
			return nil, fmt.Errorf("STORE_DSN is required when STORE_DRIVER is %s", cfg.StoreDriver)
		}
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q (allowed: none, sqlite3, mysql)", cfg.StoreDriver)
	}

	if cfg.WorkerEnabled {
		if cfg.BatchSize, err = sharedcfg.ParseBatchSize(); err != nil {
			return nil, err
		}
		if cfg.BatchFlushInterval, err = sharedcfg.ParseBatchFlushInterval(); err != nil {
			return nil, err
		}
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaRequestTopic == "" {
			return nil, errors.New("KAFKA_REQUEST_TOPIC is required")
		}
		if cfg.KafkaResultTopic == "" {
			return nil, errors.New("KAFKA_RESULT_TOPIC is required")
		}
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s", key)
	}
	return b, nil
}
