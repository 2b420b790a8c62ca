package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Cache drivers.
const (
	DriverRedis  = "redis"
	DriverValkey = "valkey"
	DriverNone   = "none"
)

// Config holds the edgarsearch configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Cache     CacheConfig     `yaml:"cache"`
	EDGAR     EDGARConfig     `yaml:"edgar"`
	Engine    EngineConfig    `yaml:"engine"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Logging   LoggingConfig   `yaml:"logging"`
	Auth      AuthConfig      `yaml:"auth"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"` // empty = auth disabled
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CacheConfig holds the document cache store settings.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey, none (default: none)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a cache store is configured.
func (c CacheConfig) Enabled() bool { return c.Driver != DriverNone }

// EDGARConfig holds document source settings.
type EDGARConfig struct {
	BaseURL           string  `yaml:"base_url"`
	DataURL           string  `yaml:"data_url"`
	UserAgent         string  `yaml:"user_agent"`
	Contact           string  `yaml:"contact"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	TimeoutSec        int     `yaml:"timeout_sec"`
	Listing           string  `yaml:"listing"` // submissions, atom (default: submissions)
}

// EngineConfig holds query engine tuning.
type EngineConfig struct {
	MaxConcurrency     int     `yaml:"max_concurrency"`
	InterItemDelayMS   int     `yaml:"inter_item_delay_ms"`
	ThematicMaxFilings int     `yaml:"thematic_max_filings"`
	ScoreFloor         float64 `yaml:"score_floor"`
	SnippetLength      int     `yaml:"snippet_length"`
	HybridConcurrent   bool    `yaml:"hybrid_concurrent"`
}

// KnowledgeConfig points at an optional override of the static lookup tables.
type KnowledgeConfig struct {
	Path string `yaml:"path"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file, when present, is loaded first so ${VAR} references can use it.
func Load(env string) (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config bytes, applying env expansion, defaults and validation.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// loadDotEnv loads ./.env without overriding variables already set.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load .env: %w", err)
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Thematic queries fan out over many filings.
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = DriverNone
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.EDGAR.BaseURL == "" {
		c.EDGAR.BaseURL = "https://www.sec.gov"
	}
	if c.EDGAR.DataURL == "" {
		c.EDGAR.DataURL = "https://data.sec.gov"
	}
	if c.EDGAR.RequestsPerSecond <= 0 {
		c.EDGAR.RequestsPerSecond = 10
	}
	if c.EDGAR.Burst <= 0 {
		c.EDGAR.Burst = 1
	}
	if c.EDGAR.TimeoutSec <= 0 {
		c.EDGAR.TimeoutSec = 30
	}
	if c.EDGAR.Listing == "" {
		c.EDGAR.Listing = "submissions"
	}
	if c.Engine.MaxConcurrency <= 0 {
		c.Engine.MaxConcurrency = 1
	}
	if c.Engine.InterItemDelayMS < 0 {
		c.Engine.InterItemDelayMS = 0
	}
	if c.Engine.ThematicMaxFilings <= 0 {
		c.Engine.ThematicMaxFilings = 100
	}
	if c.Engine.ScoreFloor <= 0 {
		c.Engine.ScoreFloor = 0.1
	}
	if c.Engine.SnippetLength <= 0 {
		c.Engine.SnippetLength = 300
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Cache.Driver {
	case DriverRedis, DriverValkey:
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q", c.Cache.Driver)
		}
	case DriverNone:
	default:
		return fmt.Errorf("cache.driver must be \"redis\", \"valkey\" or \"none\", got %q", c.Cache.Driver)
	}
	switch c.EDGAR.Listing {
	case "submissions", "atom":
	default:
		return fmt.Errorf("edgar.listing must be \"submissions\" or \"atom\", got %q", c.EDGAR.Listing)
	}
	if c.EDGAR.RequestsPerSecond > 10 {
		return fmt.Errorf("edgar.requests_per_second must not exceed 10, got %v", c.EDGAR.RequestsPerSecond)
	}
	if c.Engine.ScoreFloor > 1 {
		return fmt.Errorf("engine.score_floor must be within (0, 1], got %v", c.Engine.ScoreFloor)
	}
	if c.Engine.ThematicMaxFilings > 100 {
		return fmt.Errorf("engine.thematic_max_filings must not exceed 100, got %d", c.Engine.ThematicMaxFilings)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
