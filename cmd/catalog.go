package cmd

import (
	"modelwire/internal/catalog"

	"github.com/spf13/cobra"
)

// catalogCmd groups catalog subcommands.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Feed sources and matching rules",
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active catalog as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(GetConfig().Pipeline.Catalog)
		if err != nil {
			return err
		}
		raw, err := cat.YAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(raw)
		return err
	},
}

func init() {
	catalogCmd.AddCommand(catalogShowCmd)
	rootCmd.AddCommand(catalogCmd)
}
