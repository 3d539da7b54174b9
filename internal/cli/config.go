package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/prxtenses/repair-json-stream/pkg/errors"
)

// Config is the optional TOML configuration. Every field has a working
// default; a missing config file is not an error.
//
// Example (~/.config/repairjson/config.toml):
//
//	wrappers = ["Decimal", "Money"]
//
//	[serve]
//	addr = ":8080"
//
//	[cache]
//	backend = "file"       # file, redis or none
//	ttl = "24h"
//	redis_addr = "localhost:6379"
type Config struct {
	// Wrappers lists extra wrapper-call names to unwrap, on top of the
	// built-in constructor set.
	Wrappers []string `toml:"wrappers"`

	Serve ServeConfig `toml:"serve"`
	Cache CacheConfig `toml:"cache"`
}

// ServeConfig configures the HTTP adapter.
type ServeConfig struct {
	// Addr is the listen address (host:port).
	Addr string `toml:"addr"`
}

// CacheConfig selects and configures the result cache backend.
type CacheConfig struct {
	// Backend is one of file, redis, none.
	Backend string `toml:"backend"`

	// Dir is the file backend's directory (default: XDG cache dir).
	Dir string `toml:"dir"`

	// TTL is how long entries live, as a Go duration string.
	TTL duration `toml:"ttl"`

	// RedisAddr is the redis backend's address.
	RedisAddr string `toml:"redis_addr"`
}

// duration wraps time.Duration with TOML text unmarshalling ("24h", "90s").
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() *Config {
	return &Config{
		Serve: ServeConfig{Addr: ":8080"},
		Cache: CacheConfig{
			Backend:   errors.CacheBackendFile,
			TTL:       duration{defaultCacheTTL},
			RedisAddr: "localhost:6379",
		},
	}
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing file yields the defaults; a present but invalid
// file is an error, so typos never silently disable configuration.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return defaultConfig(), nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if explicit {
			return nil, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return defaultConfig(), nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	cfg := defaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	for _, name := range cfg.Wrappers {
		if err := errors.ValidateWrapperName(name); err != nil {
			return err
		}
	}
	if err := errors.ValidateCacheBackend(cfg.Cache.Backend); err != nil {
		return err
	}
	if cfg.Serve.Addr != "" {
		if err := errors.ValidateListenAddr(cfg.Serve.Addr); err != nil {
			return err
		}
	}
	return nil
}
