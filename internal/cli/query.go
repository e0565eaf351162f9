package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/genomap/pkg/errors"
	"github.com/matzehuels/genomap/pkg/genome"
	"github.com/matzehuels/genomap/pkg/pipeline"
)

// queryCommand creates the query command for listing visible features.
func (c *CLI) queryCommand() *cobra.Command {
	var (
		start, stop, step int
		asJSON            bool
	)

	cmd := &cobra.Command{
		Use:   "query [map.json|map.toml]",
		Short: "List the named features overlapping a range",
		Long: `List the named features overlapping a range.

On a circular map a range whose start is past its stop wraps the origin, so
--start 9500 --stop 200 covers both ends of a 10 kb plasmid. With --step N
only every Nth feature by position is listed; the same features are kept at
every zoom level.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := genome.ImportFile(args[0])
			if err != nil {
				return fmt.Errorf("load map %s: %w", args[0], err)
			}
			if start == 0 && stop == 0 {
				start, stop = 1, m.Length
			}
			if step < 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--step must be at least 1")
			}

			prog := newProgress(c.Logger)
			runner := pipeline.NewRunner(nil, nil, c.Logger)
			features, err := runner.Query(cmd.Context(), m, start, stop, step)
			if err != nil {
				return err
			}
			prog.done("queried features", "map", m.Name, "count", len(features))

			out := cmd.OutOrStdout()
			if asJSON {
				if features == nil {
					features = []genome.Feature{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(features)
			}
			if len(features) == 0 {
				printInfo("No features in %d..%d", start, stop)
				return nil
			}
			fmt.Fprintln(out, featureTable(m, features))
			return nil
		},
	}

	cmd.Flags().IntVar(&start, "start", 0, "first position of the range (default: 1)")
	cmd.Flags().IntVar(&stop, "stop", 0, "last position of the range (default: map length)")
	cmd.Flags().IntVar(&step, "step", 1, "list every Nth feature")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print features as JSON")

	return cmd
}
