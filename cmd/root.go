// Package cmd wires configuration, storage and services into the CLI.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "gateworks",
		Short:         "Gateworks back office",
		Long:          `Back office for the gate automation business: admin API, public catalog, media uploads and maintenance reminders.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newServeCommand(),
		newRemindCommand(),
		newMigrateCommand(),
	)
	return root
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
