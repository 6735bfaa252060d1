package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	DB       DBConfig       `yaml:"db"`
	Request  RequestConfig  `yaml:"request"`
	Wikidata WikidataConfig `yaml:"wikidata"`
	Labels   LabelsConfig   `yaml:"labels"`
	Resolver ResolverConfig `yaml:"resolver"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // DEBUG, INFO, WARN, ERROR
	Path  string `yaml:"path"`  // optional log file; empty = stdout only
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// RequestConfig holds HTTP request settings.
type RequestConfig struct {
	Timeout   Duration `yaml:"timeout"`
	Retries   int      `yaml:"retries"`
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
	UserAgent string   `yaml:"user_agent"`
}

// WikidataConfig holds remote API settings.
type WikidataConfig struct {
	APIEndpoint string `yaml:"api_endpoint"`
	BatchSize   int    `yaml:"batch_size"` // max IDs per wbgetentities call
}

// LabelsConfig holds label cache settings.
type LabelsConfig struct {
	TTL           Duration `yaml:"ttl"`
	FallbackLangs []string `yaml:"fallback_langs"`
	PruneInterval Duration `yaml:"prune_interval"`
}

// ResolverConfig holds resolution concurrency and timeout settings.
type ResolverConfig struct {
	MaxInFlight         int      `yaml:"max_in_flight"`
	BatchTimeout        Duration `yaml:"batch_timeout"`
	RequestTimeout      Duration `yaml:"request_timeout"`
	MinResolvedFraction float64  `yaml:"min_resolved_fraction"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration(15 * time.Second),
			WriteTimeout: Duration(60 * time.Second),
		},
		Log: LogConfig{
			Level: "INFO",
		},
		DB: DBConfig{
			Path: "data/labels.db",
		},
		Request: RequestConfig{
			Timeout:   Duration(30 * time.Second),
			Retries:   2,
			BaseDelay: Duration(500 * time.Millisecond),
			MaxDelay:  Duration(10 * time.Second),
			UserAgent: "WikidataTextifier",
		},
		Wikidata: WikidataConfig{
			APIEndpoint: "https://www.wikidata.org/w/api.php",
			BatchSize:   50,
		},
		Labels: LabelsConfig{
			TTL:           Duration(90 * Day),
			FallbackLangs: []string{"en"},
			PruneInterval: Duration(12 * time.Hour),
		},
		Resolver: ResolverConfig{
			MaxInFlight:         4,
			BatchTimeout:        Duration(10 * time.Second),
			RequestTimeout:      Duration(30 * time.Second),
			MinResolvedFraction: 0.5,
		},
	}
}

// Load reads the config file at path, overlaying it on the defaults.
// A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Env fallbacks (never written back to disk)
	if addr := os.Getenv("TEXTIFIER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if dataDir := os.Getenv("TOOL_DATA_DIR"); dataDir != "" {
		cfg.DB.Path = filepath.Join(dataDir, "labels.db")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to path as YAML.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// GenerateDefault writes a default config to path unless one exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return Save(path, DefaultConfig())
}

func (c *Config) validate() error {
	if c.Wikidata.BatchSize <= 0 || c.Wikidata.BatchSize > 50 {
		return fmt.Errorf("wikidata.batch_size must be in 1..50, got %d", c.Wikidata.BatchSize)
	}
	if c.Resolver.MaxInFlight <= 0 {
		return fmt.Errorf("resolver.max_in_flight must be positive, got %d", c.Resolver.MaxInFlight)
	}
	if c.Resolver.MinResolvedFraction < 0 || c.Resolver.MinResolvedFraction > 1 {
		return fmt.Errorf("resolver.min_resolved_fraction must be in 0..1, got %f", c.Resolver.MinResolvedFraction)
	}
	if time.Duration(c.Labels.TTL) <= 0 {
		return fmt.Errorf("labels.ttl must be positive")
	}
	return nil
}
