package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/quake-feed-search/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all search settings, populated from environment variables.
type Config struct {
	FeedDir         string
	FeedExt         string
	ReportPath      string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	ParseCacheSize  int
	MetricsTextfile string

	// Entry extraction variants.
	TitleMagnitudeFallback bool
	LinkAsIdentifier       bool

	// Optional Kafka sink for matched records. Disabled when no brokers are set.
	KafkaBrokers []string
	KafkaTopic   string
}

// LoadDotEnv loads variables from a .env file at path without overriding the
// existing environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("PARSE_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	titleFallback, err := parseBool("QUAKE_TITLE_MAGNITUDE", true)
	if err != nil {
		return nil, err
	}
	linkAsID, err := parseBool("QUAKE_LINK_AS_ID", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		FeedDir:         sharedcfg.EnvOrDefault("QUAKE_FEED_DIR", "feeds"),
		FeedExt:         sharedcfg.EnvOrDefault("QUAKE_FEED_EXT", ".atom"),
		ReportPath:      sharedcfg.EnvOrDefault("QUAKE_REPORT_PATH", "displayfiles/display_search_results.txt"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		ShutdownTimeout: shutdownTimeout,
		ParseCacheSize:  cacheSize,
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),

		TitleMagnitudeFallback: titleFallback,
		LinkAsIdentifier:       linkAsID,

		KafkaBrokers: sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "quake-search-matches"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that flags may have overridden after Load.
func (c *Config) Validate() error {
	if c.FeedDir == "" {
		return errors.New("QUAKE_FEED_DIR is required")
	}
	if c.ReportPath == "" {
		return errors.New("QUAKE_REPORT_PATH is required")
	}
	if c.FeedExt == "" {
		return errors.New("QUAKE_FEED_EXT is required")
	}
	return nil
}

// KafkaEnabled reports whether matched records should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// ExtractOptions returns the entry extraction variants selected by the environment.
func (c *Config) ExtractOptions() domain.ExtractOptions {
	return domain.ExtractOptions{
		TitleMagnitudeFallback: c.TitleMagnitudeFallback,
		LinkAsIdentifier:       c.LinkAsIdentifier,
	}
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
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
		return false, fmt.Errorf("invalid %s: must be true or false", key)
	}
	return b, nil
}
