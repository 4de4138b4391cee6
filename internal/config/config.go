package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/postforge/postforge/internal/domain/money"
)

// Config holds the postforge API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Storage    StorageConfig    `yaml:"storage"`
	Budget     BudgetConfig     `yaml:"budget"`
	Generation GenerationConfig `yaml:"generation"`
	Publisher  PublisherConfig  `yaml:"publisher"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// APIKeyConfig maps one API key to the user it acts as.
type APIKeyConfig struct {
	Key    string `yaml:"key"`
	UserID string `yaml:"user_id"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []APIKeyConfig `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix     string `yaml:"key_prefix"`
	UsageTTLHours int    `yaml:"usage_ttl_hours"` // retention of daily usage counters past their day
}

// BudgetConfig holds the per-user daily spend limit settings.
type BudgetConfig struct {
	DailyCap       string `yaml:"daily_cap"`         // dollars, e.g. "8.0"
	UnitPricePer1K string `yaml:"unit_price_per_1k"` // dollars per 1000 units, e.g. "0.01"
	FailOpen       *bool  `yaml:"fail_open"`         // allow requests when the counter store is down (default: true)
}

// EstimatesConfig holds the per-operation unit estimates charged up front.
type EstimatesConfig struct {
	Ideas     int64 `yaml:"ideas"`
	Article   int64 `yaml:"article"`
	Thumbnail int64 `yaml:"thumbnail"`
	Publish   int64 `yaml:"publish"`
}

// GenerationConfig holds content generation provider settings.
type GenerationConfig struct {
	APIKey      string          `yaml:"api_key"`
	BaseURL     string          `yaml:"base_url"`
	Model       string          `yaml:"model"`
	ImageModel  string          `yaml:"image_model"`
	MaxAttempts int             `yaml:"max_attempts"` // article regeneration attempts to reach target length
	TargetWords int             `yaml:"target_words"`
	Estimates   EstimatesConfig `yaml:"estimates"`
}

// GHLConfig holds GoHighLevel publishing settings.
type GHLConfig struct {
	APIKey  string `yaml:"api_key"`
	BlogID  string `yaml:"blog_id"`
	BaseURL string `yaml:"base_url"`
}

// WordPressConfig holds WordPress publishing settings.
type WordPressConfig struct {
	SiteURL  string `yaml:"site_url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Category string `yaml:"category"` // optional category every post is filed under
}

// PublisherConfig holds blog publishing settings.
type PublisherConfig struct {
	Driver    string          `yaml:"driver"` // ghl, wordpress, none (default: none)
	GHL       GHLConfig       `yaml:"ghl"`
	WordPress WordPressConfig `yaml:"wordpress"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

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

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "postforge:"
	}
	if c.Storage.UsageTTLHours <= 0 {
		c.Storage.UsageTTLHours = 48
	}
	if c.Budget.DailyCap == "" {
		c.Budget.DailyCap = "8.0"
	}
	if c.Budget.UnitPricePer1K == "" {
		c.Budget.UnitPricePer1K = "0.01"
	}
	if c.Budget.FailOpen == nil {
		failOpen := true
		c.Budget.FailOpen = &failOpen
	}
	if c.Generation.Model == "" {
		c.Generation.Model = "gpt-4o"
	}
	if c.Generation.ImageModel == "" {
		c.Generation.ImageModel = "dall-e-3"
	}
	if c.Generation.MaxAttempts <= 0 {
		c.Generation.MaxAttempts = 5
	}
	if c.Generation.TargetWords <= 0 {
		c.Generation.TargetWords = 2000
	}
	if c.Generation.Estimates.Ideas <= 0 {
		c.Generation.Estimates.Ideas = 1000
	}
	if c.Generation.Estimates.Article <= 0 {
		c.Generation.Estimates.Article = 4000
	}
	if c.Generation.Estimates.Thumbnail <= 0 {
		c.Generation.Estimates.Thumbnail = 4000
	}
	if c.Generation.Estimates.Publish <= 0 {
		c.Generation.Estimates.Publish = 500
	}
	if c.Publisher.Driver == "" {
		c.Publisher.Driver = "none"
	}
	if c.Publisher.GHL.BaseURL == "" {
		c.Publisher.GHL.BaseURL = "https://rest.gohighlevel.com"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	if _, err := c.DailyCap(); err != nil {
		return fmt.Errorf("budget.daily_cap: %w", err)
	}
	if _, err := c.UnitPrice(); err != nil {
		return fmt.Errorf("budget.unit_price_per_1k: %w", err)
	}
	switch c.Publisher.Driver {
	case "none":
	case "ghl":
		if c.Publisher.GHL.APIKey == "" || c.Publisher.GHL.BlogID == "" {
			return fmt.Errorf("publisher.ghl.api_key and publisher.ghl.blog_id are required for the ghl driver")
		}
	case "wordpress":
		if c.Publisher.WordPress.SiteURL == "" {
			return fmt.Errorf("publisher.wordpress.site_url is required for the wordpress driver")
		}
	default:
		return fmt.Errorf("publisher.driver must be \"ghl\", \"wordpress\" or \"none\", got %q", c.Publisher.Driver)
	}
	seen := make(map[string]bool, len(c.Auth.APIKeys))
	for i, k := range c.Auth.APIKeys {
		if k.Key == "" || k.UserID == "" {
			return fmt.Errorf("auth.api_keys[%d]: key and user_id are required", i)
		}
		if seen[k.Key] {
			return fmt.Errorf("auth.api_keys[%d]: duplicate key", i)
		}
		seen[k.Key] = true
	}
	return nil
}

// DailyCap returns the parsed per-user daily spend cap.
func (c *Config) DailyCap() (money.Amount, error) {
	amt, err := money.Parse(c.Budget.DailyCap)
	if err != nil {
		return 0, err
	}
	if amt < 0 {
		return 0, fmt.Errorf("must not be negative, got %s", c.Budget.DailyCap)
	}
	return amt, nil
}

// UnitPrice returns the parsed price per unit.
func (c *Config) UnitPrice() (money.UnitPrice, error) {
	return money.ParseUnitPrice(c.Budget.UnitPricePer1K)
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
