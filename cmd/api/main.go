package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/michael-i-mclean/toggle/cmd/api/commands"
	_ "github.com/michael-i-mclean/toggle/docs"
)

// @title Toggle Service API
// @version 1.0
// @description Service managing persistent boolean toggles. Every mutation is durably written to a single JSON snapshot file before the response is sent.

// @contact.name Toggle Service
// @contact.url https://github.com/michael-i-mclean/toggle

// @license.name MIT
// @license.url https://github.com/michael-i-mclean/toggle/blob/main/LICENSE

// @host localhost:8080
// @BasePath /

func main() {
	rootCmd := &cobra.Command{
		Use:   "toggled",
		Short: "Toggle Service API server",
		Long:  `Toggle Service manages a set of boolean toggle records behind an HTTP API, persisting the full set to a JSON snapshot file after every mutation and reloading it on startup.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewSnapshotCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
