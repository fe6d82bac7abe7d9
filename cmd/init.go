package cmd

import (
	"github.com/spf13/cobra"

	"github.com/maxwell142857/cs5500-group6/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize akinator configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to pick the question generator provider and data directory, and writes the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
