// Package cli implements the genomap command-line interface.
//
// The commands wrap the same [pipeline.Runner] the HTTP API uses:
//   - layout: place the labels of a feature map and write them as JSON
//   - query: list the features visible in a range
//   - serve: run the HTTP API
//   - cache: inspect or clear the local layout cache
//   - config: show the effective configuration
//
// # Configuration
//
// Defaults come from a TOML file at $XDG_CONFIG_HOME/genomap/config.toml
// (or the path given by --config). Flags override the file, and the
// pipeline defaults apply to anything neither sets.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/genomap/pkg/buildinfo"
	"github.com/matzehuels/genomap/pkg/cache"
	"github.com/matzehuels/genomap/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "genomap"

	// configFileName is the name of the configuration file in the config directory.
	configFileName = "config.toml"
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
	Config Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "genomap places feature labels around genome maps",
		Long:         `genomap indexes the annotated features of circular and linear sequence maps and places their labels so that no two overlap, keeping leader lines short and close to radial.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/genomap/config.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags are the cache selection flags shared by layout and serve.
type cacheFlags struct {
	noCache  bool
	redisURL string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&f.redisURL, "redis", "", "cache layouts in Redis at this URL (redis://host:port/db)")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, f cacheFlags) (*pipeline.Runner, error) {
	cc, keyer, err := c.newCache(ctx, f)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

// newCache picks the cache backend: none when disabled, Redis when a URL is
// configured and reachable, and the file cache otherwise. Redis keys are
// scoped to the application and the configured namespace since the server
// may be shared.
func (c *CLI) newCache(ctx context.Context, f cacheFlags) (cache.Cache, cache.Keyer, error) {
	if f.noCache || c.Config.Cache.Disabled {
		return cache.NewNullCache(), nil, nil
	}

	redisURL := f.redisURL
	if redisURL == "" {
		redisURL = c.Config.Cache.Redis
	}
	if redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, redisURL)
		if err == nil {
			c.Logger.Debug("using redis cache", "url", redisURL)
			return rc, redisKeyer(c.Config.Cache.Namespace), nil
		}
		if !errors.Is(err, cache.ErrUnavailable) {
			return nil, nil, err
		}
		c.Logger.Warn("redis unavailable, falling back to file cache", "error", err)
	}

	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, err
	}
	return fc, nil, nil
}

// redisKeyer prefixes keys with "genomap:" and the namespace, if any.
func redisKeyer(namespace string) cache.Keyer {
	prefix := appName + ":"
	if namespace != "" {
		prefix += namespace + ":"
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), prefix)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, defaulting to the XDG
// standard location (~/.cache/genomap/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/genomap/).
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

// configPath returns the config file path using XDG standard
// (~/.config/genomap/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName, configFileName), nil
}
