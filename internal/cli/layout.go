package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/genomap/pkg/api"
	"github.com/matzehuels/genomap/pkg/genome"
	"github.com/matzehuels/genomap/pkg/observability"
	"github.com/matzehuels/genomap/pkg/pipeline"
)

// layoutFlags holds the command-line state of the layout command.
type layoutFlags struct {
	output  string
	remote  string
	metrics bool
	cache   cacheFlags
}

// layoutCommand creates the layout command for placing feature labels.
func (c *CLI) layoutCommand() *cobra.Command {
	var flags layoutFlags
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [map.json|map.toml]",
		Short: "Place the feature labels of a map",
		Long: `Place the feature labels of a map.

The layout command reads a feature map (JSON or TOML), indexes its named
features, and places one label per visible feature so that no two labels
overlap. The result is written as <map>.labels.json and lists every label's
bounding box, attachment point and leader line.

Results are cached locally (or in Redis with --redis) for faster subsequent
runs. Use --remote to compute the layout on a running 'genomap serve'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyConfig(cmd, c.Config.Layout, &opts)
			return c.runLayout(cmd.Context(), args[0], opts, flags)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: <input>.labels.json)")
	cmd.Flags().StringVar(&flags.remote, "remote", "", "compute the layout on the genomap server at this URL")
	cmd.Flags().BoolVar(&flags.metrics, "metrics", false, "print placement metrics to stderr")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when a cached layout exists")
	flags.cache.register(cmd)

	registerLayoutFlags(cmd, &opts)
	return cmd
}

// registerLayoutFlags binds the placement options to flags.
func registerLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	f := cmd.Flags()
	f.StringVarP(&opts.Strategy, "strategy", "s", pipeline.DefaultStrategy, "placement strategy: "+strings.Join(pipeline.Strategies(), ", "))
	f.Float64Var(&opts.Width, "width", pipeline.DefaultWidth, "canvas width in pixels")
	f.Float64Var(&opts.Height, "height", pipeline.DefaultHeight, "canvas height in pixels")
	f.Float64Var(&opts.Radius, "radius", 0, "map radius in pixels (circular maps; default: 30% of the canvas)")
	f.Float64Var(&opts.LineLength, "line-length", 0, "initial leader line length in pixels")
	f.Float64Var(&opts.MaxLineAngle, "max-angle", 0, "largest leader line angle in degrees")
	f.Float64Var(&opts.Margin, "margin", 0, "gap between stacked labels in pixels")
	f.Float64Var(&opts.FontSize, "font-size", pipeline.DefaultFontSize, "label font size in pixels")
	f.Float64Var(&opts.Zoom, "zoom", pipeline.DefaultZoom, "zoom factor; above 1 only part of the map is shown")
	f.IntVar(&opts.CenterBp, "center", 0, "position shown at the centre when zoomed (default: map middle)")
	f.IntVar(&opts.MaxLabels, "max-labels", 0, "thin the visible features to at most this many labels (0: all)")
	f.BoolVar(&opts.WrapIslands, "wrap-islands", false, "merge label islands across the origin of circular maps")
}

// runLayout loads the map, places the labels, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, flags layoutFlags) error {
	m, err := genome.ImportFile(input)
	if err != nil {
		return fmt.Errorf("load map %s: %w", input, err)
	}
	c.Logger.Debug("loaded map", "name", m.Name, "length", m.Length, "features", len(m.Features))

	var metrics *observability.MetricsHooks
	if flags.metrics {
		metrics = observability.NewMetricsHooks()
		observability.SetLayoutHooks(metrics)
		observability.SetCacheHooks(metrics)
		defer func() {
			metrics.WriteText(os.Stderr)
			observability.Reset()
			metrics.Close()
		}()
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Placing %d labels...", len(m.Named())))
	spinner.Start()

	result, cacheHit, err := c.computeLayout(ctx, m, opts, flags)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := flags.output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".labels.json"
	}
	if err := writeResultFile(result, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	fmt.Println(statsLine(result.Stats, cacheHit))
	if result.Stats.Popped > 0 {
		printWarning("%d labels did not fit their island and were moved outward", result.Stats.Popped)
	}
	printNewline()
	printNextStep("Inspect features", fmt.Sprintf("%s query %s", appName, input))

	return nil
}

// computeLayout runs the layout locally or on a remote server.
func (c *CLI) computeLayout(ctx context.Context, m *genome.Map, opts pipeline.Options, flags layoutFlags) (*pipeline.Result, bool, error) {
	if flags.remote != "" {
		c.Logger.Debug("requesting remote layout", "server", flags.remote)
		resp, err := api.NewClient(flags.remote).Layout(ctx, m, opts)
		if err != nil {
			return nil, false, err
		}
		return resp.Result, resp.Cached, nil
	}

	runner, err := c.newRunner(ctx, flags.cache)
	if err != nil {
		return nil, false, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	return runner.Layout(ctx, m, opts)
}

// writeResultFile writes an indented JSON result.
func writeResultFile(r *pipeline.Result, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
