package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/simpleindex/pkg/config"
)

func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration after merging defaults, the config file, .env,
SIMPLEINDEX_* environment variables and flags. Secrets are masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), c.settings().String())
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the default config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.Path())
			return nil
		},
	})

	return cmd
}
