package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is the configuration file read when none is given
const DefaultPath = "comix.toml"

var (
	// ErrNotFound is returned when the configuration file does not exist
	ErrNotFound = errors.New("config file not found")
	// ErrInvalidPort is returned when basics.port is not an integer
	ErrInvalidPort = errors.New("basics.port must be an integer")
)

// Basics holds the settings every deployment must provide
type Basics struct {
	Port      int
	Directory string
}

// Server holds listener settings
type Server struct {
	Host string `toml:"host"`
	Env  string `toml:"env"` // "development" or "production"
}

// Storage holds extraction settings
type Storage struct {
	Path           string `toml:"path"`
	CacheSize      int    `toml:"cache_size"`      // issues kept extracted, 0 means unbounded
	ExtractWorkers int    `toml:"extract_workers"` // 0 means GOMAXPROCS
}

// Logging holds log sink settings
type Logging struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Template holds the layout location
type Template struct {
	Path string `toml:"path"`
}

// Config holds all application configuration
type Config struct {
	Basics   Basics
	Server   Server
	Storage  Storage
	Logging  Logging
	Template Template
}

// file mirrors Config as written on disk. The port is decoded loosely so a
// quoted number is accepted and anything else gets a clear error.
type file struct {
	Basics struct {
		Port      any    `toml:"port"`
		Directory string `toml:"directory"`
	} `toml:"basics"`
	Server   Server   `toml:"server"`
	Storage  Storage  `toml:"storage"`
	Logging  Logging  `toml:"logging"`
	Template Template `toml:"template"`
}

// Default returns the configuration used for every unset field
func Default() Config {
	return Config{
		Server: Server{
			Host: "0.0.0.0",
			Env:  "production",
		},
		Storage: Storage{
			Path: "temporary_storage",
		},
		Logging: Logging{
			Level: "info",
		},
		Template: Template{
			Path: "template.html",
		},
	}
}

// Load reads, overrides from the environment, normalizes and validates
// the configuration file at path.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	defaults := Default()
	raw := file{
		Server:   defaults.Server,
		Storage:  defaults.Storage,
		Logging:  defaults.Logging,
		Template: defaults.Template,
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Config{
		Basics:   Basics{Directory: raw.Basics.Directory},
		Server:   raw.Server,
		Storage:  raw.Storage,
		Logging:  raw.Logging,
		Template: raw.Template,
	}
	if raw.Basics.Port != nil {
		port, err := parsePort(raw.Basics.Port)
		if err != nil {
			return nil, err
		}
		cfg.Basics.Port = port
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parsePort(value any) (int, error) {
	switch v := value.(type) {
	case int64:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidPort, v)
		}
		return int(v), nil
	case string:
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPort, v)
		}
		return port, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrInvalidPort, v)
	}
}

// applyEnv lets COMIX_* variables override the file
func (c *Config) applyEnv() error {
	if value := getEnv("COMIX_PORT", ""); value != "" {
		port, err := parsePort(value)
		if err != nil {
			return fmt.Errorf("COMIX_PORT: %w", err)
		}
		c.Basics.Port = port
	}
	c.Basics.Directory = getEnv("COMIX_DIRECTORY", c.Basics.Directory)
	c.Server.Env = getEnv("COMIX_ENV", c.Server.Env)
	c.Logging.Level = getEnv("COMIX_LOG_LEVEL", c.Logging.Level)
	return nil
}

// normalize accepts Windows-style separators in the collection path
func (c *Config) normalize() {
	c.Basics.Directory = strings.ReplaceAll(strings.TrimSpace(c.Basics.Directory), `\`, "/")
	c.Storage.Path = strings.TrimSpace(c.Storage.Path)
	c.Template.Path = strings.TrimSpace(c.Template.Path)
}

// Validate ensures the configuration is usable
func (c *Config) Validate() error {
	if c.Basics.Port < 1 || c.Basics.Port > 65535 {
		return fmt.Errorf("basics.port must be between 1 and 65535, got %d", c.Basics.Port)
	}
	if c.Basics.Directory == "" {
		return errors.New("basics.directory must be set")
	}
	if c.Storage.Path == "" {
		return errors.New("storage.path must be set")
	}
	if c.Storage.CacheSize < 0 {
		return errors.New("storage.cache_size must not be negative")
	}
	if c.Storage.ExtractWorkers < 0 {
		return errors.New("storage.extract_workers must not be negative")
	}
	if c.Template.Path == "" {
		return errors.New("template.path must be set")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
