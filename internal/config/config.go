// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config loads the storefront configuration. Values come from
// built-in defaults, then an optional YAML file, then STOREFRONT_*
// environment variables, each layer overriding the one before.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment overrides. Double underscores
// separate sections: STOREFRONT_DB__HOST sets db.host.
const EnvPrefix = "STOREFRONT_"

// Output cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheValkey = "valkey"
)

const defaultDBPassword = "changeme"

// Config holds all application configuration values.
type Config struct {
	Server Server      `koanf:"server"`
	Log    Log         `koanf:"log"`
	DB     Database    `koanf:"db"`
	Valkey Valkey      `koanf:"valkey"`
	Theme  Theme       `koanf:"theme"`
	Cache  OutputCache `koanf:"cache"`
	Admin  Admin       `koanf:"admin"`
}

type Server struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
	Env  string `koanf:"env"` // "development", "production", "testing"
}

type Log struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // "text" or "json"
}

// Database is the PostgreSQL connection. An empty host disables the
// database and the storefront renders from an empty catalog.
type Database struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`
}

type Valkey struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// Theme controls template loading and rendering.
type Theme struct {
	Dir                string `koanf:"dir"`
	AssetBaseURL       string `koanf:"asset_base_url"`
	CacheSize          int    `koanf:"cache_size"`
	MaxIncludeDepth    int    `koanf:"max_include_depth"`
	Debug              bool   `koanf:"debug"`
	DiagnosticComments bool   `koanf:"diagnostic_comments"`
	Watch              bool   `koanf:"watch"`
}

// OutputCache selects and sizes the rendered page cache.
type OutputCache struct {
	Backend    string `koanf:"backend"`
	Size       int    `koanf:"size"`
	TTLSeconds int    `koanf:"ttl_seconds"`
	// Namespace prefixes Valkey keys so storefronts can share a server.
	Namespace string `koanf:"namespace"`
}

type Admin struct {
	Token string `koanf:"token"`
}

// Default returns the development defaults.
func Default() Config {
	return Config{
		Server: Server{Host: "0.0.0.0", Port: 8080, Env: "development"},
		Log:    Log{Level: "info", Format: "text"},
		DB: Database{
			Host:     "localhost",
			Port:     5432,
			User:     "storefront",
			Password: defaultDBPassword,
			Name:     "storefront",
			SSLMode:  "disable",
		},
		Valkey: Valkey{Host: "localhost", Port: 6379},
		Theme: Theme{
			Dir:             "themes/default",
			AssetBaseURL:    "/assets",
			CacheSize:       512,
			MaxIncludeDepth: 20,
		},
		Cache: OutputCache{Backend: CacheMemory, Size: 1024, TTLSeconds: 300, Namespace: "storefront"},
	}
}

// Load reads the configuration. path may be empty; a named file that does
// not exist is an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(toMap(Default()), "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("config: file %s not found", path)
			}
			return nil, fmt.Errorf("config: stat %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	transform := func(s string) string {
		key := strings.TrimPrefix(s, EnvPrefix)
		return strings.ToLower(strings.ReplaceAll(key, "__", "."))
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", transform), nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Env == "production" && c.DB.Host != "" && c.DB.Password == defaultDBPassword {
		return errors.New("config: db.password must be set in production")
	}
	switch c.Cache.Backend {
	case CacheNone, CacheMemory, CacheValkey:
	default:
		return fmt.Errorf("config: unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	if c.Theme.Dir == "" {
		return errors.New("config: theme.dir is required")
	}
	return nil
}

// DSN returns the PostgreSQL connection string, or "" when no database is
// configured.
func (c *Config) DSN() string {
	if c.DB.Host == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		c.DB.User, c.DB.Password, net.JoinHostPort(c.DB.Host, strconv.Itoa(c.DB.Port)), c.DB.Name, c.DB.SSLMode,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return net.JoinHostPort(c.Valkey.Host, strconv.Itoa(c.Valkey.Port))
}

// CacheTTL is the output cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Server.Env == "development"
}

// toMap converts a Config into a map for the koanf confmap provider.
func toMap(cfg Config) map[string]any {
	return map[string]any{
		"server": map[string]any{
			"host": cfg.Server.Host,
			"port": cfg.Server.Port,
			"env":  cfg.Server.Env,
		},
		"log": map[string]any{
			"level":  cfg.Log.Level,
			"format": cfg.Log.Format,
		},
		"db": map[string]any{
			"host":     cfg.DB.Host,
			"port":     cfg.DB.Port,
			"user":     cfg.DB.User,
			"password": cfg.DB.Password,
			"name":     cfg.DB.Name,
			"sslmode":  cfg.DB.SSLMode,
		},
		"valkey": map[string]any{
			"host":     cfg.Valkey.Host,
			"port":     cfg.Valkey.Port,
			"password": cfg.Valkey.Password,
			"db":       cfg.Valkey.DB,
		},
		"theme": map[string]any{
			"dir":                 cfg.Theme.Dir,
			"asset_base_url":      cfg.Theme.AssetBaseURL,
			"cache_size":          cfg.Theme.CacheSize,
			"max_include_depth":   cfg.Theme.MaxIncludeDepth,
			"debug":               cfg.Theme.Debug,
			"diagnostic_comments": cfg.Theme.DiagnosticComments,
			"watch":               cfg.Theme.Watch,
		},
		"cache": map[string]any{
			"backend":     cfg.Cache.Backend,
			"size":        cfg.Cache.Size,
			"ttl_seconds": cfg.Cache.TTLSeconds,
			"namespace":   cfg.Cache.Namespace,
		},
		"admin": map[string]any{
			"token": cfg.Admin.Token,
		},
	}
}
