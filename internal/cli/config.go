package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/genomap/pkg/api"
	"github.com/matzehuels/genomap/pkg/errors"
	"github.com/matzehuels/genomap/pkg/pipeline"
)

// Config is the on-disk configuration.
//
//	[layout]
//	strategy = "angled"
//	max_line_angle = 70.0
//
//	[cache]
//	redis = "redis://localhost:6379/0"
//	namespace = "staging"
//
//	[server]
//	addr = ":8080"
//	metrics = true
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig holds layout defaults. Zero values leave the pipeline
// defaults in place.
type LayoutConfig struct {
	Strategy     string  `toml:"strategy"`
	Width        float64 `toml:"width"`
	Height       float64 `toml:"height"`
	Radius       float64 `toml:"radius"`
	LineLength   float64 `toml:"line_length"`
	MaxLineAngle float64 `toml:"max_line_angle"`
	Margin       float64 `toml:"margin"`
	FontSize     float64 `toml:"font_size"`
	MaxLabels    int     `toml:"max_labels"`
	WrapIslands  bool    `toml:"wrap_islands"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"`
	Redis    string `toml:"redis"`
	// Namespace separates the Redis keys of environments sharing a server.
	Namespace string `toml:"namespace"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr    string `toml:"addr"`
	Metrics bool   `toml:"metrics"`
}

// loadConfig reads the config file. A missing default file is not an
// error; a missing explicit --config file is.
func (c *CLI) loadConfig() error {
	path := c.configPath
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return nil
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return nil
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		c.Logger.Warn("unknown config keys", "file", path, "keys", strings.Join(keys, ", "))
	}
	if cfg.Layout.Strategy != "" {
		if err := pipeline.ValidateStrategy(cfg.Layout.Strategy); err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
	}

	c.Config = cfg
	c.configPath = path
	c.Logger.Debug("loaded config", "file", path)
	return nil
}

// applyConfig copies config defaults into opts for every layout flag the
// user did not set on the command line.
func applyConfig(cmd *cobra.Command, cfg LayoutConfig, opts *pipeline.Options) {
	unset := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f == nil || !f.Changed
	}
	if cfg.Strategy != "" && unset("strategy") {
		opts.Strategy = cfg.Strategy
	}
	if cfg.Width != 0 && unset("width") {
		opts.Width = cfg.Width
	}
	if cfg.Height != 0 && unset("height") {
		opts.Height = cfg.Height
	}
	if cfg.Radius != 0 && unset("radius") {
		opts.Radius = cfg.Radius
	}
	if cfg.LineLength != 0 && unset("line-length") {
		opts.LineLength = cfg.LineLength
	}
	if cfg.MaxLineAngle != 0 && unset("max-angle") {
		opts.MaxLineAngle = cfg.MaxLineAngle
	}
	if cfg.Margin != 0 && unset("margin") {
		opts.Margin = cfg.Margin
	}
	if cfg.FontSize != 0 && unset("font-size") {
		opts.FontSize = cfg.FontSize
	}
	if cfg.MaxLabels != 0 && unset("max-labels") {
		opts.MaxLabels = cfg.MaxLabels
	}
	if cfg.WrapIslands && unset("wrap-islands") {
		opts.WrapIslands = true
	}
}

// configCommand creates the config inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			if cfg.Layout.Strategy == "" {
				cfg.Layout.Strategy = pipeline.DefaultStrategy
			}
			if cfg.Server.Addr == "" {
				cfg.Server.Addr = api.DefaultAddr
			}
			if cfg.Cache.Dir == "" && !cfg.Cache.Disabled {
				if dir, err := c.cacheDir(); err == nil {
					cfg.Cache.Dir = dir
				}
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				p, err := configPath()
				if err != nil {
					return err
				}
				path = p
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	return cmd
}
