// Package commands wires the vigia CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vigia-dev/vigia/internal/buildinfo"
)

const defaultConfigFile = "vigia.yaml"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "vigia",
		Short:   "Agenda financeira com proteção contra compras por impulso",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newScheduleCommand())

	return rootCmd
}
