package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// DefaultFeeds are used when neither the config file nor the FEEDS
// environment variable provides any feed URLs
var DefaultFeeds = []string{
	"https://news.google.com/rss?hl=ko&gl=KR&ceid=KR:ko",
	"https://feeds.reuters.com/reuters/topNews",
}

// Config holds the application configuration
type Config struct {
	Feeds []string `yaml:"feeds" json:"feeds" jsonschema:"description=Ordered list of RSS/Atom feed URLs"`

	Server struct {
		Listen    string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
		StaticDir string        `yaml:"static_dir" json:"static_dir" jsonschema:"default=docs,description=Directory with the static browser client"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Schedule struct {
		UpdateInterval time.Duration `yaml:"update_interval" json:"update_interval" jsonschema:"default=30m,description=Snapshot refresh interval"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduler configuration"`

	Fetch struct {
		Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=15s,description=Per-feed fetch and parse timeout"`
		UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=newscards/1.0,description=User agent for feed requests"`
	} `yaml:"fetch" json:"fetch" jsonschema:"description=Feed fetching configuration"`

	Enrich EnrichConfig `yaml:"enrich" json:"enrich" jsonschema:"description=Preview image enrichment configuration"`

	Topics struct {
		Max int `yaml:"max" json:"max" jsonschema:"default=32,description=Maximum number of ranked topics (32 and 40 are both in historical use)"`
	} `yaml:"topics" json:"topics" jsonschema:"description=Topic ranking configuration"`

	Snapshot struct {
		Path string `yaml:"path" json:"path" jsonschema:"default=docs/data/latest.json,description=Output path of the published snapshot"`
	} `yaml:"snapshot" json:"snapshot" jsonschema:"description=Snapshot output configuration"`
}

// EnrichConfig holds preview image enrichment settings
type EnrichConfig struct {
	Enabled     bool          `yaml:"enabled" json:"enabled" jsonschema:"default=true,description=Enable preview image enrichment"`
	MaxArticles int           `yaml:"max_articles" json:"max_articles" jsonschema:"default=40,description=Maximum articles attempted per run"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=7s,description=Per-request lookup timeout"`
	Concurrency int           `yaml:"concurrency" json:"concurrency" jsonschema:"default=5,description=Maximum concurrent lookups"`
}

// Load reads configuration from a YAML file. A missing file is not an
// error: defaults apply, matching the zero-config FEEDS-env-only
// deployment.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	switch {
	case err == nil:
		// expand environment variables
		expanded := os.ExpandEnv(string(data))
		if uErr := yaml.Unmarshal([]byte(expanded), &cfg); uErr != nil {
			return nil, fmt.Errorf("parse config: %w", uErr)
		}
	case os.IsNotExist(err):
		// no config file, run on defaults
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// FEEDS env override, comma-separated
	if env := os.Getenv("FEEDS"); env != "" {
		cfg.Feeds = nil
		for _, u := range strings.Split(env, ",") {
			if u = strings.TrimSpace(u); u != "" {
				cfg.Feeds = append(cfg.Feeds, u)
			}
		}
	}
	if len(cfg.Feeds) == 0 {
		cfg.Feeds = append([]string(nil), DefaultFeeds...)
	}

	// set defaults for server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}
	if cfg.Server.StaticDir == "" {
		cfg.Server.StaticDir = "docs"
	}

	// set defaults for schedule
	if cfg.Schedule.UpdateInterval == 0 {
		cfg.Schedule.UpdateInterval = 30 * time.Minute
	}

	// set defaults for fetching
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = 15 * time.Second
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = "newscards/1.0"
	}

	// set defaults for enrichment
	if cfg.Enrich.MaxArticles == 0 {
		cfg.Enrich.MaxArticles = 40
	}
	if cfg.Enrich.Timeout == 0 {
		cfg.Enrich.Timeout = 7 * time.Second
	}
	if cfg.Enrich.Concurrency == 0 {
		cfg.Enrich.Concurrency = 5
	}

	// set defaults for topics and snapshot
	if cfg.Topics.Max == 0 {
		cfg.Topics.Max = 32
	}
	if cfg.Snapshot.Path == "" {
		cfg.Snapshot.Path = "docs/data/latest.json"
	}

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if len(cfg.Feeds) == 0 {
		return fmt.Errorf("at least one feed URL is required")
	}
	for _, u := range cfg.Feeds {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("feed URL %q must be http(s)", u)
		}
	}

	if cfg.Fetch.Timeout < time.Second {
		return fmt.Errorf("fetch timeout must be at least 1 second")
	}

	if cfg.Enrich.Enabled {
		if cfg.Enrich.Timeout < time.Second {
			return fmt.Errorf("enrich timeout must be at least 1 second")
		}
		if cfg.Enrich.MaxArticles < 0 {
			return fmt.Errorf("enrich max_articles must be non-negative")
		}
		if cfg.Enrich.Concurrency < 1 {
			return fmt.Errorf("enrich concurrency must be at least 1")
		}
	}

	if cfg.Topics.Max < 1 {
		return fmt.Errorf("topics max must be at least 1")
	}

	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetEnrichConfig returns preview enrichment configuration
func (c *Config) GetEnrichConfig() EnrichConfig {
	return c.Enrich
}
