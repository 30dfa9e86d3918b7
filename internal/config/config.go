// Package config loads packzen configuration from a YAML file, the
// environment and built-in defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Auth     AuthConfig     `yaml:"auth"`
	Client   ClientConfig   `yaml:"client"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"PACKZEN_ADDR"             env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"PACKZEN_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"PACKZEN_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"PACKZEN_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"PACKZEN_SHUTDOWN_TIMEOUT" env-default:"10s"`
	CORSOrigins     string        `yaml:"cors_origins"     env:"PACKZEN_CORS_ORIGINS"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"PACKZEN_DB" env-default:"packzen.db"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	File  string `yaml:"file"  env:"PACKZEN_LOG_FILE"`
}

// AuthConfig holds token and login throttling settings.
type AuthConfig struct {
	TokenTTL   time.Duration `yaml:"token_ttl"   env:"PACKZEN_TOKEN_TTL"   env-default:"24h"`
	LoginRate  float64       `yaml:"login_rate"  env:"PACKZEN_LOGIN_RATE"  env-default:"0.2"`
	LoginBurst int           `yaml:"login_burst" env:"PACKZEN_LOGIN_BURST" env-default:"5"`
}

// ClientConfig holds settings used by the terminal host and import/export
// commands to reach a running server.
type ClientConfig struct {
	BaseURL  string `yaml:"base_url" env:"PACKZEN_URL"      env-default:"http://localhost:8080"`
	Username string `yaml:"username" env:"PACKZEN_USER"`
	Password string `yaml:"password" env:"PACKZEN_PASSWORD"`
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults. The file path comes from CONFIG_PATH
// (fallback "./packzen.yaml"); a missing fallback file is not an error.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./packzen.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Validate checks the loaded configuration. Load calls it automatically;
// call it again after applying flag overrides.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0 (got %v)", c.Auth.TokenTTL)
	}
	if c.Auth.LoginRate <= 0 {
		return fmt.Errorf("auth.login_rate must be > 0 (got %v)", c.Auth.LoginRate)
	}
	if c.Auth.LoginBurst <= 0 {
		return fmt.Errorf("auth.login_burst must be > 0 (got %d)", c.Auth.LoginBurst)
	}
	return nil
}

// AllowedOrigins splits the comma-separated CORS origin list.
func (s ServerConfig) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
