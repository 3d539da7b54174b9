package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/prxtenses/repair-json-stream/pkg/cache"
	apperrors "github.com/prxtenses/repair-json-stream/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the repair result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached repair results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend != apperrors.CacheBackendFile {
				printInfo("Cache backend is %q, nothing to clear on disk", cfg.Cache.Backend)
				return nil
			}

			dir, err := c.resolveCacheDir(cfg)
			if err != nil {
				return err
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			sp := newSpinnerWithContext(cmd.Context(), "Clearing cache")
			sp.Start()

			count := 0
			_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
				if err != nil || info.IsDir() {
					return nil
				}
				count++
				return nil
			})

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				sp.StopWithError("Could not open cache")
				return apperrors.Wrap(apperrors.ErrCodeCache, err, "open cache at %s", dir)
			}
			if err := fc.Clear(); err != nil {
				sp.StopWithError("Could not clear cache")
				return apperrors.Wrap(apperrors.ErrCodeCache, err, "clear cache at %s", dir)
			}

			sp.StopWithSuccess(fmt.Sprintf("Cleared %d cached entries", count))
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			dir, err := c.resolveCacheDir(cfg)
			if err != nil {
				return err
			}
			fmt.Println(dir)
			return nil
		},
	}
}

// resolveCacheDir picks the configured directory, falling back to the
// platform default.
func (c *CLI) resolveCacheDir(cfg *Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeCache, err, "locate cache directory")
	}
	return dir, nil
}
