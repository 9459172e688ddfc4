// Package config loads the two configuration surfaces the aggregation
// engine depends on: the environment-driven runtime knobs (cache TTL, rate
// limits, worker pool sizes, ...) and the site list (domains, their
// fallback sources, and priorities). Both are external collaborators the
// engine cannot run without, so this package gives them a concrete,
// minimal home.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the environment-driven runtime configuration for the
// aggregation engine. It is loaded once at startup and never mutated
// afterward.
type Config struct {
	LogLevel string `json:"log_level" jsonschema:"default=info,description=Log level name (debug/info/warn/error); loaded but not applied: log verbosity follows the --dbg flag"`

	MaxArticles int `json:"max_articles" jsonschema:"default=50,description=Article cap setting; validated at load but not applied to responses"`

	CacheTTL      time.Duration `json:"cache_ttl" jsonschema:"default=300s,description=Cache entry time-to-live"`
	CacheCapacity int           `json:"cache_capacity" jsonschema:"default=1000,description=Maximum number of cache entries before LRU eviction"`

	RateLimit  int           `json:"rate_limit" jsonschema:"default=10,description=Maximum requests admitted per domain per window"`
	RateWindow time.Duration `json:"rate_window" jsonschema:"default=60s,description=Sliding window duration for the rate limiter"`

	Parallel bool `json:"parallel" jsonschema:"default=true,description=Parallel fetching setting; loaded but not read: sources and sites are always fetched in parallel"`

	ConfigPath string `json:"config_path" jsonschema:"default=sites.json,description=Path to the site configuration file"`

	DeepScrape        bool          `json:"deep_scrape" jsonschema:"default=false,description=Scraper setting; loaded but not read: scraper sources run whenever a site lists one"`
	DeepScrapeMax     int           `json:"deep_scrape_max" jsonschema:"default=10,description=Maximum article candidates considered per scrape"`
	DeepScrapeTimeout time.Duration `json:"deep_scrape_timeout" jsonschema:"default=5s,description=Per-article scrape timeout setting; loaded but not read: scraper sources use their own timeout_ms (default 5s)"`

	SummaryLength int `json:"summary_length" jsonschema:"default=500,description=Maximum characters retained in an article summary"`
	DeepWorkers   int `json:"deep_workers" jsonschema:"default=5,description=Size of the process-wide scrape worker pool"`
}

// Load reads the runtime configuration from the environment, applying the
// defaults documented in Config's struct tags. It never fails outright: a
// malformed value is reported in the returned warnings and the default is
// kept, since ambient configuration should degrade gracefully rather than
// stop the process from starting.
func Load() (*Config, []string) {
	cfg := &Config{
		LogLevel:          "info",
		MaxArticles:       50,
		CacheTTL:          300 * time.Second,
		CacheCapacity:     1000,
		RateLimit:         10,
		RateWindow:        60 * time.Second,
		Parallel:          true,
		ConfigPath:        "sites.json",
		DeepScrape:        false,
		DeepScrapeMax:     10,
		DeepScrapeTimeout: 5 * time.Second,
		SummaryLength:     500,
		DeepWorkers:       5,
	}

	var warnings []string
	warn := func(w []string) {
		warnings = append(warnings, w...)
	}

	warn(applyEnvString("LOG_LEVEL", &cfg.LogLevel))
	warn(applyEnvInt("MAX_ARTICLES", &cfg.MaxArticles))
	warn(applyEnvSeconds("CACHE_TTL", &cfg.CacheTTL))
	warn(applyEnvInt("RATE_LIMIT", &cfg.RateLimit))
	warn(applyEnvSeconds("RATE_WINDOW", &cfg.RateWindow))
	warn(applyEnvBool("PARALLEL", &cfg.Parallel))
	warn(applyEnvString("CONFIG_PATH", &cfg.ConfigPath))
	warn(applyEnvBool("DEEP_SCRAPE", &cfg.DeepScrape))
	warn(applyEnvInt("DEEP_SCRAPE_MAX", &cfg.DeepScrapeMax))
	warn(applyEnvSeconds("DEEP_SCRAPE_TIMEOUT", &cfg.DeepScrapeTimeout))
	warn(applyEnvInt("SUMMARY_LENGTH", &cfg.SummaryLength))
	warn(applyEnvInt("DEEP_WORKERS", &cfg.DeepWorkers))

	if err := validate(cfg); err != nil {
		warnings = append(warnings, err.Error())
	}

	// verify against embedded schema; supplementary only, never fatal
	if err := VerifyAgainstEmbeddedSchema(cfg); err != nil {
		warnings = append(warnings, fmt.Sprintf("schema validation failed: %v", err))
	}

	return cfg, warnings
}

func validate(cfg *Config) error {
	if cfg.MaxArticles < 1 {
		return fmt.Errorf("max_articles must be at least 1")
	}
	if cfg.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive")
	}
	if cfg.RateLimit < 1 {
		return fmt.Errorf("rate_limit must be at least 1")
	}
	if cfg.RateWindow <= 0 {
		return fmt.Errorf("rate_window must be positive")
	}
	if cfg.DeepWorkers < 1 {
		return fmt.Errorf("deep_workers must be at least 1")
	}
	return nil
}

func applyEnvString(key string, dst *string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
	return nil
}

func applyEnvBool(key string, dst *bool) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return []string{fmt.Sprintf("ignoring invalid %s=%q: %v", key, v, err)}
	}
	*dst = b
	return nil
}

func applyEnvInt(key string, dst *int) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return []string{fmt.Sprintf("ignoring invalid %s=%q: %v", key, v, err)}
	}
	*dst = n
	return nil
}

func applyEnvSeconds(key string, dst *time.Duration) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	// accept a plain integer (seconds) or a Go duration string
	if n, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(n) * time.Second
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return []string{fmt.Sprintf("ignoring invalid %s=%q: %v", key, v, err)}
	}
	*dst = d
	return nil
}
