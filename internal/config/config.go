package config

import (
	"errors"
	"fmt"
	"os"

	"reserva/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App          AppConfig          `yaml:"app"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Backup       BackupConfig       `yaml:"backup"`
	Monitoring   MonitoringConfig   `yaml:"monitoring"`
	Logging      LoggingConfig      `yaml:"logging"`
	API          APIConfig          `yaml:"api"`
	Booking      BookingConfig      `yaml:"booking"`
	Verification VerificationConfig `yaml:"verification"`
	Exports      ExportConfig       `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// BookingConfig holds the reservation policy knobs.
type BookingConfig struct {
	Campuses            []string `yaml:"campuses"`
	DurationChoices     []int    `yaml:"duration_choices"`
	MaxDurationMinutes  int      `yaml:"max_duration_minutes"`
	IdempotencyTTL      int      `yaml:"idempotency_ttl"`
	RateLimitRequests   int      `yaml:"rate_limit_requests"`
	RateLimitWindowSecs int      `yaml:"rate_limit_window"`
}

type VerificationConfig struct {
	RefreshSeconds int `yaml:"refresh_seconds"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; ignore a missing file but not a broken one.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand ${VAR} references before parsing.
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Booking.MaxDurationMinutes > models.MaxReservationMinutes {
		return fmt.Errorf("max_duration_minutes %d exceeds policy cap %d",
			c.Booking.MaxDurationMinutes, models.MaxReservationMinutes)
	}

	for _, d := range c.Booking.DurationChoices {
		if d <= 0 {
			return fmt.Errorf("duration choice %d must be positive", d)
		}
		if d > c.Booking.MaxDurationMinutes {
			return fmt.Errorf("duration choice %d exceeds max_duration_minutes %d",
				d, c.Booking.MaxDurationMinutes)
		}
	}

	seen := make(map[string]bool, len(c.Booking.Campuses))
	for _, campus := range c.Booking.Campuses {
		if campus == "" {
			return errors.New("campus name must not be empty")
		}
		if seen[campus] {
			return fmt.Errorf("duplicate campus: %s", campus)
		}
		seen[campus] = true
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	// auth enabled by default when API is enabled
	if !c.API.Auth.Enabled {
		c.API.Auth.Enabled = true
	}
	if !c.API.HTTP.Enabled && c.API.Enabled {
		c.API.HTTP.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.HeaderExtra == "" {
		c.API.Auth.HeaderExtra = "x-api-extra"
	}

	// Booking policy defaults
	if len(c.Booking.Campuses) == 0 {
		c.Booking.Campuses = append([]string(nil), models.DefaultCampuses...)
	}
	if len(c.Booking.DurationChoices) == 0 {
		c.Booking.DurationChoices = append([]int(nil), models.DefaultDurationChoices...)
	}
	if c.Booking.MaxDurationMinutes == 0 {
		c.Booking.MaxDurationMinutes = models.MaxReservationMinutes
	}
	if c.Booking.IdempotencyTTL == 0 {
		c.Booking.IdempotencyTTL = models.DefaultIdempotencyTTL
	}
	if c.Booking.RateLimitRequests == 0 {
		c.Booking.RateLimitRequests = models.RateLimitRequests
	}
	if c.Booking.RateLimitWindowSecs == 0 {
		c.Booking.RateLimitWindowSecs = models.RateLimitWindow
	}

	if c.Verification.RefreshSeconds == 0 {
		c.Verification.RefreshSeconds = models.DefaultVerificationRefreshSeconds
	}
}
