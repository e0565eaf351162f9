package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/genomap/pkg/errors"
	"github.com/matzehuels/genomap/pkg/genome"
)

// convertCommand creates the convert command, which validates a map and
// re-encodes it as JSON (the format accepted by the HTTP API).
func (c *CLI) convertCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert [map.json|map.toml]",
		Short: "Validate a map and write it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := genome.ImportFile(args[0])
			if err != nil {
				return fmt.Errorf("load map %s: %w", args[0], err)
			}
			if err := m.Validate(); err != nil {
				return err
			}

			if output == "" {
				return genome.WriteJSON(cmd.OutOrStdout(), m)
			}
			f, err := os.Create(output)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", output)
			}
			defer f.Close()
			if err := genome.WriteJSON(f, m); err != nil {
				return err
			}
			printSuccess("Wrote %s (%d features)", output, len(m.Features))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}
