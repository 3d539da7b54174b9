// Package cli implements the repairjson command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/prxtenses/repair-json-stream/pkg/buildinfo"
	"github.com/prxtenses/repair-json-stream/pkg/cache"
	"github.com/prxtenses/repair-json-stream/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "repairjson"

	// defaultCacheTTL is how long serve results stay cached when the config
	// does not say otherwise.
	defaultCacheTTL = 24 * time.Hour
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the default config file location when set by the
	// --config flag.
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "repairjson turns almost-JSON into valid JSON",
		Long:         `repairjson repairs the malformed JSON that LLMs, logs and shell sessions produce: truncated documents, markdown fences, curly quotes, unquoted keys, comments, trailing commas and constructor wrappers, all fixed in a single pass that never fails.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: $XDG_CONFIG_HOME/repairjson/config.toml)")

	// Register all subcommands
	root.AddCommand(c.repairCommand())
	root.AddCommand(c.extractCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the effective config for a command invocation.
func (c *CLI) loadConfig() (*Config, error) {
	return LoadConfig(c.ConfigPath)
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache builds the cache backend selected by config. The null cache is
// the quiet fallback when the backend cannot be constructed.
func newCache(cfg *Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case errors.CacheBackendNone:
		return cache.NewNullCache(), nil
	case errors.CacheBackendRedis:
		return cache.NewRedisCache(cfg.Cache.RedisAddr), nil
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/repairjson/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/repairjson/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
