package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	mcpserver "github.com/maxwell142857/cs5500-group6/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing game tools so an AI agent can host games.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		log.Info().Str("data_dir", a.cfg.DataDir).Msg("akinator MCP server started on stdio")

		srv := mcpserver.NewServer(a.engine, a.tracker)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
