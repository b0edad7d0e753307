// Package root contains the root command for the application
package root

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"fjacquet/funds-xlsx/internal/config"
	"fjacquet/funds-xlsx/internal/container"
	"fjacquet/funds-xlsx/internal/logging"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input  string
	Output string
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "funds-xlsx",
		Short: "A CLI tool to extract fund holdings from documents and export them to XLSX.",
		Long: `funds-xlsx extracts tables of securities holdings from PDF, CSV, XLSX,
XML and HTML documents, reconciles the funds they describe, optionally
enriches them with ICTax data, and exports the result to XLSX.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to funds-xlsx!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize and configure logging
			config.LoadEnv()
			Log = config.ConfigureLogging()

			cfg, err := config.InitializeConfig()
			if err != nil {
				Log.Fatalf("Failed to initialize configuration: %v", err)
			}

			AppContainer, err = container.NewContainer(cfg)
			if err != nil {
				Log.Fatalf("Failed to initialize dependencies: %v", err)
			}
		},
	}

	// Common flags accessible to all commands
	SharedFlags = CommonFlags{}

	// AppContainer holds the dependencies built before each command runs.
	// Tests may swap it out.
	AppContainer *container.Container
)

// Init initializes the root command and all flags
func Init() {
	// Add persistent flags to root command for common options
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
}

// GetContainer returns the dependency container built before the command
// runs, or nil when no command has run yet.
func GetContainer() *container.Container {
	return AppContainer
}

// GetLogrusAdapter returns the shared logger wrapped in the logging interface.
func GetLogrusAdapter() logging.Logger {
	return logging.NewLogrusAdapterFromLogger(Log)
}
