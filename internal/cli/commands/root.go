package commands

import (
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sebastes",
		Short: "Redfish service scanner and Go model generator",
		Long: color.CyanString(`Sebastes - Redfish model generator

Sebastes walks a live Redfish service, samples every distinct resource type
it can reach and emits a typed Go client library for the scanned tree.

Features:
  • One authenticated fetch per URI, budget-bounded
  • Random sampling of wide collections
  • Canonical base types shared by every generated model
  • Ready-to-import library with its own go.mod`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewScanCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the Sebastes version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			// Set GoVersion to actual runtime if not set at build time
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			valueColor := color.New(color.FgWhite)

			titleColor.Fprint(cmd.OutOrStdout(), "Sebastes version: ")
			valueColor.Fprintln(cmd.OutOrStdout(), Version)

			titleColor.Fprint(cmd.OutOrStdout(), "Git commit: ")
			valueColor.Fprintln(cmd.OutOrStdout(), GitCommit)

			titleColor.Fprint(cmd.OutOrStdout(), "Build date: ")
			valueColor.Fprintln(cmd.OutOrStdout(), BuildDate)

			titleColor.Fprint(cmd.OutOrStdout(), "Go version: ")
			valueColor.Fprintln(cmd.OutOrStdout(), goVer)
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
