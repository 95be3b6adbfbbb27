package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	rootCmd = &cobra.Command{
		Use:   "harava",
		Short: "Cloud Resource Export Engine",
		Long: `Harava - Cloud Resource Export Engine

Harava rakes your cloud accounts and exports every resource as a
normalized JSON document: list, describe, enrich, emit. No state
files, no store; the output stream is the inventory.

Point it at one account or a whole organization of role ARNs, choose
the resource kinds to export, and pipe the documents wherever they
need to go.`,
		Version: version,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// init sets up the root command
func init() {
	rootCmd.SetVersionTemplate(`Harava {{.Version}} - Cloud Resource Export Engine
`)
}
