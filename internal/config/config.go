package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the jarvis API configuration. It is built once in main and
// passed down explicitly.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Reasoning ReasoningConfig `yaml:"reasoning"`
	Search    SearchConfig    `yaml:"search"`
	Cart      CartConfig      `yaml:"cart"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. No keys means auth is off.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Database drivers.
const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// DatabaseConfig holds catalog store settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, memory (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	SeedFile         string   `yaml:"seed_file"` // optional catalog loaded at startup
}

// StorageConfig holds key layout settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// Rate ceiling actions.
const (
	RateActionWait   = "wait"
	RateActionReject = "reject"
)

// ReasoningConfig holds the chat-completion engine settings.
type ReasoningConfig struct {
	APIKey        string       `yaml:"api_key"`
	BaseURL       string       `yaml:"base_url"`
	Model         string       `yaml:"model"`
	Temperature   float32      `yaml:"temperature"`
	MaxTokens     int          `yaml:"max_tokens"`
	JSONMode      bool         `yaml:"json_mode"`
	TimeoutSec    int          `yaml:"timeout_sec"`     // per engine call
	RatePerMinute int          `yaml:"rate_per_minute"` // engine calls across all requests
	RateAction    string       `yaml:"rate_action"`     // wait (default) | reject
	Budget        BudgetConfig `yaml:"budget"`
}

// Timeout returns the per-call deadline.
func (r ReasoningConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSec) * time.Second
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// SearchConfig bounds the search providers.
type SearchConfig struct {
	MaxFoodResults       int `yaml:"max_food_results"`
	MaxRestaurantResults int `yaml:"max_restaurant_results"`
	PageSize             int `yaml:"page_size"` // rows per catalog read
}

// CartConfig points at the cart collaborator.
type CartConfig struct {
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(expandEnvVars(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
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
		// a chat run makes four sequential engine calls
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "jarvis:"
	}
	if c.Reasoning.Model == "" {
		c.Reasoning.Model = "gemini-1.5-flash"
	}
	if c.Reasoning.Temperature == 0 {
		c.Reasoning.Temperature = 0.7
	}
	if c.Reasoning.MaxTokens <= 0 {
		c.Reasoning.MaxTokens = 1000
	}
	if c.Reasoning.TimeoutSec <= 0 {
		c.Reasoning.TimeoutSec = 25
	}
	if c.Reasoning.RatePerMinute <= 0 {
		c.Reasoning.RatePerMinute = 10
	}
	if c.Reasoning.RateAction == "" {
		c.Reasoning.RateAction = RateActionWait
	}
	if c.Search.MaxFoodResults <= 0 {
		c.Search.MaxFoodResults = 10
	}
	if c.Search.MaxRestaurantResults <= 0 {
		c.Search.MaxRestaurantResults = 5
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = 500
	}
	if c.Cart.BaseURL == "" {
		c.Cart.BaseURL = "http://localhost:3001"
	}
	if c.Cart.TimeoutSec <= 0 {
		c.Cart.TimeoutSec = 5
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return errors.New("database.addrs is required for the redis driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverRedis, DriverMemory, c.Database.Driver)
	}
	switch c.Reasoning.RateAction {
	case RateActionWait, RateActionReject:
	default:
		return fmt.Errorf("reasoning.rate_action must be \"wait\" or \"reject\", got %q", c.Reasoning.RateAction)
	}
	switch c.Reasoning.Budget.Action {
	case "", "warn", "reject":
	default:
		return fmt.Errorf("reasoning.budget.action must be \"warn\" or \"reject\", got %q", c.Reasoning.Budget.Action)
	}
	if c.Reasoning.Temperature < 0 || c.Reasoning.Temperature > 2 {
		return fmt.Errorf("reasoning.temperature must be within [0, 2], got %g", c.Reasoning.Temperature)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := env + ".yaml"

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// relative to this source file, for tests and `go run` from subdirectories
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b)))
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment values.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		varName, defaultVal, hasDefault := strings.Cut(string(match[2:len(match)-1]), ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
