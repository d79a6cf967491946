package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const ConfigFile = "blogql.toml"

const (
	DefaultPort           = 22880
	DefaultDepthLimit     = 5
	DefaultQueryCacheSize = 1000
	DefaultMinYearOfBirth = 1950
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the blogql configuration.
type Config struct {
	Server   ServerConfig   `toml:"server" yaml:"server"`
	GraphQL  GraphQLConfig  `toml:"graphql" yaml:"graphql"`
	Database DatabaseConfig `toml:"database" yaml:"database"`
	Profiles ProfilesConfig `toml:"profiles" yaml:"profiles"`
	Log      LogConfig      `toml:"log" yaml:"log"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Port int `toml:"port" yaml:"port" env:"BLOGQL_PORT"`
}

// GraphQLConfig defines request validation and execution limits.
type GraphQLConfig struct {
	// Validate parses and validates every request (including the depth
	// limit) before execution and answers failures with HTTP 500.
	Validate        bool `toml:"validate" yaml:"validate" env:"BLOGQL_GRAPHQL_VALIDATE"`
	DepthLimit      int  `toml:"depth_limit" yaml:"depth_limit" env:"BLOGQL_GRAPHQL_DEPTH_LIMIT"`
	ComplexityLimit int  `toml:"complexity_limit,omitempty" yaml:"complexity_limit,omitempty" env:"BLOGQL_GRAPHQL_COMPLEXITY_LIMIT"`
	Introspection   bool `toml:"introspection" yaml:"introspection" env:"BLOGQL_GRAPHQL_INTROSPECTION"`
	QueryCacheSize  int  `toml:"query_cache_size" yaml:"query_cache_size" env:"BLOGQL_GRAPHQL_QUERY_CACHE_SIZE"`
}

// DatabaseConfig selects the driver and data source.
type DatabaseConfig struct {
	Driver string `toml:"driver" yaml:"driver" env:"BLOGQL_DATABASE_DRIVER"`
	DSN    string `toml:"dsn" yaml:"dsn" env:"BLOGQL_DATABASE_DSN"`
	Debug  bool   `toml:"debug,omitempty" yaml:"debug,omitempty" env:"BLOGQL_DATABASE_DEBUG"`
}

// ProfilesConfig holds profile validation settings.
type ProfilesConfig struct {
	MinYearOfBirth int `toml:"min_year_of_birth" yaml:"min_year_of_birth" env:"BLOGQL_MIN_YEAR_OF_BIRTH"`
}

// LogConfig defines logger level and encoding ("json" or "console").
type LogConfig struct {
	Level  string `toml:"level" yaml:"level" env:"BLOGQL_LOG_LEVEL"`
	Format string `toml:"format" yaml:"format" env:"BLOGQL_LOG_FORMAT"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: DefaultPort},
		GraphQL: GraphQLConfig{
			Validate:       true,
			DepthLimit:     DefaultDepthLimit,
			Introspection:  true,
			QueryCacheSize: DefaultQueryCacheSize,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			DSN:    "blogql.db",
		},
		Profiles: ProfilesConfig{MinYearOfBirth: DefaultMinYearOfBirth},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from the given file and applies BLOGQL_*
// environment overrides. Returns default config (plus overrides) if the
// file doesn't exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, cfg)
	}
	return toml.Unmarshal(data, cfg)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// applyDefaults fills values a partial file left at zero.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.GraphQL.DepthLimit == 0 {
		c.GraphQL.DepthLimit = DefaultDepthLimit
	}
	if c.GraphQL.QueryCacheSize == 0 {
		c.GraphQL.QueryCacheSize = DefaultQueryCacheSize
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Profiles.MinYearOfBirth == 0 {
		c.Profiles.MinYearOfBirth = DefaultMinYearOfBirth
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if !c.IsValidDriver(c.Database.Driver) {
		return fmt.Errorf("unknown database driver %q (want %s or %s)", c.Database.Driver, DriverSQLite, DriverPostgres)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if c.GraphQL.DepthLimit < 0 {
		return fmt.Errorf("graphql depth_limit must not be negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// Save writes the configuration to the given path, as YAML when the
// extension asks for it and TOML otherwise.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = toml.Marshal(c)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// IsValidDriver returns true if the driver is supported.
func (c *Config) IsValidDriver(driver string) bool {
	return driver == DriverSQLite || driver == DriverPostgres
}
