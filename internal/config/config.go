package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported quote providers.
const (
	ProviderAlphaVantage = "alphavantage"
	ProviderYahoo        = "yahoo"
)

// MinFetchDelay is the smallest pause allowed between provider calls in a fetch pass.
// It keeps a pass under the provider's limit of five calls per minute.
const MinFetchDelay = 12 * time.Second

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	CORS     CORSConfig     `yaml:"cors"`
	Provider ProviderConfig `yaml:"provider"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Email    EmailConfig    `yaml:"email"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string `yaml:"port"`
	Host string `yaml:"host"`
	Addr string `yaml:"-"` // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ProviderConfig selects and configures the quote provider.
type ProviderConfig struct {
	Name    string        `yaml:"name"`
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"` // empty means the provider's default endpoint
	Timeout time.Duration `yaml:"timeout"`
}

// JobsConfig holds the background job timings.
type JobsConfig struct {
	FetchInterval time.Duration `yaml:"fetch_interval"`
	FetchDelay    time.Duration `yaml:"fetch_delay"`
	AlertInterval time.Duration `yaml:"alert_interval"`
	RunOnStart    bool          `yaml:"run_on_start"`
}

// EmailConfig holds the SMTP settings. Notifications are logged instead of mailed
// when Host or User is empty.
type EmailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Enabled reports whether enough settings are present to send mail.
func (e EmailConfig) Enabled() bool {
	return e.Host != "" && e.User != ""
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "5001",
			Host: "localhost",
		},
		Database: DatabaseConfig{
			Path: "./data/watchlist_monitor.db",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Provider: ProviderConfig{
			Name:    ProviderAlphaVantage,
			Timeout: 10 * time.Second,
		},
		Jobs: JobsConfig{
			FetchInterval: 15 * time.Minute,
			FetchDelay:    MinFetchDelay,
			AlertInterval: 5 * time.Minute,
			RunOnStart:    true,
		},
		Email: EmailConfig{
			Port: 587,
		},
	}
}

// Load reads configuration from the .env file, the optional YAML file named by
// CONFIG_PATH and environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := Default()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}

	// Combine host and port
	config.Server.Addr = net.JoinHostPort(config.Server.Host, config.Server.Port)

	return config, nil
}

func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(config *Config) error {
	config.Server.Port = getEnv("SERVER_PORT", config.Server.Port)
	config.Server.Host = getEnv("SERVER_HOST", config.Server.Host)
	config.Database.Path = getEnv("DB_PATH", config.Database.Path)

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		config.CORS.AllowedOrigins = origins
	}

	config.Provider.Name = strings.ToLower(getEnv("QUOTE_PROVIDER", config.Provider.Name))
	config.Provider.APIKey = getEnv("ALPHA_VANTAGE_API_KEY", config.Provider.APIKey)
	config.Provider.BaseURL = getEnv("QUOTE_BASE_URL", config.Provider.BaseURL)

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"PROVIDER_TIMEOUT", &config.Provider.Timeout},
		{"FETCH_INTERVAL", &config.Jobs.FetchInterval},
		{"FETCH_DELAY", &config.Jobs.FetchDelay},
		{"ALERT_INTERVAL", &config.Jobs.AlertInterval},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.key, v, err)
		}
		*d.dst = parsed
	}

	if v := os.Getenv("RUN_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid RUN_ON_START %q: %w", v, err)
		}
		config.Jobs.RunOnStart = b
	}

	config.Email.Host = getEnv("EMAIL_HOST", config.Email.Host)
	config.Email.User = getEnv("EMAIL_USER", config.Email.User)
	config.Email.Password = getEnv("EMAIL_PASSWORD", config.Email.Password)
	config.Email.From = getEnv("EMAIL_FROM", config.Email.From)
	if v := os.Getenv("EMAIL_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid EMAIL_PORT %q: %w", v, err)
		}
		config.Email.Port = port
	}

	return nil
}

// Validate checks that the configuration can start the service.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case ProviderAlphaVantage:
		if c.Provider.APIKey == "" {
			return fmt.Errorf("ALPHA_VANTAGE_API_KEY is required for the %s provider", ProviderAlphaVantage)
		}
	case ProviderYahoo:
	default:
		return fmt.Errorf("unknown quote provider %q", c.Provider.Name)
	}

	if c.Jobs.FetchInterval <= 0 {
		return fmt.Errorf("fetch interval must be positive, got %s", c.Jobs.FetchInterval)
	}
	if c.Jobs.AlertInterval <= 0 {
		return fmt.Errorf("alert interval must be positive, got %s", c.Jobs.AlertInterval)
	}
	if err := ValidateFetchDelay(c.Jobs.FetchDelay); err != nil {
		return err
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("provider timeout must be positive, got %s", c.Provider.Timeout)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	return nil
}

// ValidateFetchDelay rejects delays below MinFetchDelay.
func ValidateFetchDelay(d time.Duration) error {
	if d < MinFetchDelay {
		return fmt.Errorf("fetch delay must be at least %s, got %s", MinFetchDelay, d)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
