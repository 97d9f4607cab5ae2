package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Auth      AuthConfig      `yaml:"auth"`
	Platform  PlatformConfig  `yaml:"platform"`
	Calendar  CalendarConfig  `yaml:"calendar"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// TransportConfig selects how MCP clients connect: "stdio" or "http".
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

// AuthConfig controls bearer authentication. BootstrapKey, when set, is
// registered for DefaultTenant at startup.
type AuthConfig struct {
	Enabled       bool   `yaml:"enabled"`
	DefaultTenant string `yaml:"default_tenant"`
	BootstrapKey  string `yaml:"bootstrap_key"`
}

// PlatformConfig points at the CRM REST API that serves metadata and records.
// AppURL is the web app origin used for record page links; it defaults to
// BaseURL.
type PlatformConfig struct {
	BaseURL      string        `yaml:"base_url"`
	AppURL       string        `yaml:"app_url"`
	TokenURL     string        `yaml:"token_url"`
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	Scopes       []string      `yaml:"scopes"`
	Timeout      time.Duration `yaml:"timeout"`
}

type CalendarConfig struct {
	Timezone      string `yaml:"timezone"`
	DayCap        int    `yaml:"day_cap"`
	DefaultObject string `yaml:"default_object"`
	Concurrency   int    `yaml:"concurrency"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "crmcal.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Auth: AuthConfig{
			Enabled:       true,
			DefaultTenant: "default",
		},
		Platform: PlatformConfig{
			Timeout: 30 * time.Second,
		},
		Calendar: CalendarConfig{
			Timezone:      "UTC",
			DayCap:        4,
			DefaultObject: "Event",
			Concurrency:   4,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load reads configuration from an optional YAML file, an optional .env file
// and environment variables, in that order of increasing precedence.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CRMCAL_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := loadDotEnv(os.Getenv("CRMCAL_ENV_FILE")); err != nil {
		return Config{}, err
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Calendar.DayCap < 1 || c.Calendar.DayCap > 20 {
		return fmt.Errorf("invalid calendar day cap %d", c.Calendar.DayCap)
	}
	if _, err := time.LoadLocation(c.Calendar.Timezone); err != nil {
		return fmt.Errorf("invalid calendar timezone: %w", err)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// loadDotEnv loads variables from path, or from ./.env when path is empty.
// A missing default file is not an error. Variables already set win.
func loadDotEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString("CRMCAL_SERVER_HOST", &cfg.Server.Host)
	if err := setInt("CRMCAL_SERVER_PORT", &cfg.Server.Port); err != nil {
		return err
	}
	setString("CRMCAL_DB_PATH", &cfg.DB.Path)
	setString("CRMCAL_LOG_LEVEL", &cfg.Log.Level)
	setString("CRMCAL_LOG_PATH", &cfg.Log.Path)
	setString("CRMCAL_TRANSPORT", &cfg.Transport.Mode)
	if err := setBool("CRMCAL_AUTH_ENABLED", &cfg.Auth.Enabled); err != nil {
		return err
	}
	setString("CRMCAL_DEFAULT_TENANT", &cfg.Auth.DefaultTenant)
	setString("CRMCAL_API_KEY", &cfg.Auth.BootstrapKey)

	setString("CRMCAL_PLATFORM_BASE_URL", &cfg.Platform.BaseURL)
	setString("CRMCAL_PLATFORM_APP_URL", &cfg.Platform.AppURL)
	setString("CRMCAL_PLATFORM_TOKEN_URL", &cfg.Platform.TokenURL)
	setString("CRMCAL_PLATFORM_CLIENT_ID", &cfg.Platform.ClientID)
	setString("CRMCAL_PLATFORM_CLIENT_SECRET", &cfg.Platform.ClientSecret)
	if scopes := os.Getenv("CRMCAL_PLATFORM_SCOPES"); scopes != "" {
		cfg.Platform.Scopes = strings.Fields(strings.ReplaceAll(scopes, ",", " "))
	}
	if v := os.Getenv("CRMCAL_PLATFORM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CRMCAL_PLATFORM_TIMEOUT: %w", err)
		}
		cfg.Platform.Timeout = d
	}

	setString("CRMCAL_TIMEZONE", &cfg.Calendar.Timezone)
	if err := setInt("CRMCAL_DAY_CAP", &cfg.Calendar.DayCap); err != nil {
		return err
	}
	setString("CRMCAL_DEFAULT_OBJECT", &cfg.Calendar.DefaultObject)
	if err := setInt("CRMCAL_FETCH_CONCURRENCY", &cfg.Calendar.Concurrency); err != nil {
		return err
	}

	if err := setBool("CRMCAL_METRICS_ENABLED", &cfg.Metrics.Enabled); err != nil {
		return err
	}
	setString("CRMCAL_METRICS_PATH", &cfg.Metrics.Path)
	return nil
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}
