// Package config provides configuration loading and validation for the service and CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. TALENTSYNC_SERVER_PORT.
const EnvPrefix = "TALENTSYNC"

// Config is the complete runtime configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Compiler CompilerConfig `mapstructure:"compiler"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`

	// SkillCategoriesFile is an optional TOML file replacing the built-in
	// skill keyword lists.
	SkillCategoriesFile string `mapstructure:"skillCategoriesFile"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout"`
	WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout     time.Duration `mapstructure:"idleTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `mapstructure:"maxBodyBytes"`
	// AllowedOrigins lists CORS origins; "*" allows any.
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
	// DocumentHistory exposes the stored document routes. They are
	// unauthenticated, so this stays off unless the server is private.
	DocumentHistory bool `mapstructure:"documentHistory"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CompilerConfig configures the LaTeX engine and its circuit breaker.
type CompilerConfig struct {
	Engine         string               `mapstructure:"engine"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// CircuitBreakerConfig mirrors compiler.BreakerSettings.
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"maxRequests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MinRequests      uint32        `mapstructure:"minRequests"`
	FailureThreshold float64       `mapstructure:"failureThreshold"`
}

// CacheConfig selects the PDF cache backend.
type CacheConfig struct {
	Backend  string        `mapstructure:"backend"`
	Dir      string        `mapstructure:"dir"`
	RedisURL string        `mapstructure:"redisURL"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// DatabaseConfig configures the optional document store.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from defaults, an optional file and the environment,
// in increasing order of precedence. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyFallbacks()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.writeTimeout", 60*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.maxBodyBytes", 1<<20)
	v.SetDefault("server.allowedOrigins", []string{"*"})
	v.SetDefault("server.documentHistory", false)

	v.SetDefault("compiler.engine", "pdflatex")
	v.SetDefault("compiler.timeout", 30*time.Second)
	v.SetDefault("compiler.circuitBreaker.enabled", true)
	v.SetDefault("compiler.circuitBreaker.maxRequests", 1)
	v.SetDefault("compiler.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("compiler.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("compiler.circuitBreaker.minRequests", 5)
	v.SetDefault("compiler.circuitBreaker.failureThreshold", 0.6)

	v.SetDefault("cache.backend", "none")
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.redisURL", "")
	v.SetDefault("cache.ttl", 24*time.Hour)

	v.SetDefault("database.url", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("skillCategoriesFile", "")
}

// applyFallbacks honours the conventional unprefixed variables and fills
// derived defaults.
func (c *Config) applyFallbacks() {
	if c.Database.URL == "" {
		c.Database.URL = os.Getenv("DATABASE_URL")
	}
	if c.Cache.RedisURL == "" {
		c.Cache.RedisURL = os.Getenv("REDIS_URL")
	}
	if c.Cache.Backend == "file" && c.Cache.Dir == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			c.Cache.Dir = dir + string(os.PathSeparator) + "talentsync"
		}
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.maxBodyBytes must be positive"))
	}
	if c.Compiler.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("compiler.timeout must be positive"))
	}
	if c.Compiler.Engine == "" {
		errs = append(errs, fmt.Errorf("compiler.engine must not be empty"))
	}
	if cb := c.Compiler.CircuitBreaker; cb.Enabled {
		if cb.FailureThreshold <= 0 || cb.FailureThreshold > 1 {
			errs = append(errs, fmt.Errorf("compiler.circuitBreaker.failureThreshold must be in (0, 1], got %g", cb.FailureThreshold))
		}
		if cb.MaxRequests == 0 {
			errs = append(errs, fmt.Errorf("compiler.circuitBreaker.maxRequests must be at least 1"))
		}
	}

	switch c.Cache.Backend {
	case "none", "":
	case "file":
		if c.Cache.Dir == "" {
			errs = append(errs, fmt.Errorf("cache.dir is required for the file backend"))
		}
	case "redis":
		if c.Cache.RedisURL == "" {
			errs = append(errs, fmt.Errorf("cache.redisURL (or REDIS_URL) is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be none, file or redis, got %q", c.Cache.Backend))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must not be negative"))
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	if c.SkillCategoriesFile != "" {
		if _, err := os.Stat(c.SkillCategoriesFile); err != nil {
			errs = append(errs, fmt.Errorf("skill categories file not found: %s", c.SkillCategoriesFile))
		}
	}

	if len(errs) > 0 {
		return &Error{Message: "invalid configuration", Cause: errors.Join(errs...)}
	}
	return nil
}

// Error is returned by Load and Validate.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
