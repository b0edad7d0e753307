// Package batch handles batch processing of holdings documents
package batch

import (
	"fmt"

	"github.com/spf13/cobra"

	cmdcommon "fjacquet/funds-xlsx/cmd/common"
	"fjacquet/funds-xlsx/cmd/root"
	"fjacquet/funds-xlsx/internal/common"
	"fjacquet/funds-xlsx/internal/fileutils"
	"fjacquet/funds-xlsx/internal/funds"
	"fjacquet/funds-xlsx/internal/ictax"
)

var (
	specRef           string
	force             bool
	sourceOverride    string
	thousandSeparator string
	decimalSeparator  string
	noLookup          bool
	year              int
	nameWidth         int
)

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch process holdings documents from a directory",
	Long: `Batch process files from an input directory and output them to another directory.

The batch command extracts funds from every supported document in the input
directory, reconciles holdings of the same instrument across documents and
writes one consolidated workbook per run.

Example:
  funds-xlsx batch -i statements/ -o reports/`,
	Run: batchFunc,
}

func init() {
	Cmd.Flags().StringVarP(&specRef, "spec", "s", "1", "Table specification: a number from 'specs' or a YAML file path")
	Cmd.Flags().BoolVarP(&force, "force", "f", false, "Re-extract PDF tables even when a cache exists")
	Cmd.Flags().StringVar(&sourceOverride, "source", "", "Document type override applied to every file (csv, xlsx, xml, html, pdf)")
	Cmd.Flags().StringVar(&thousandSeparator, "thousand-separator", "'", "Thousand separator used by the documents' numbers")
	Cmd.Flags().StringVar(&decimalSeparator, "decimal-separator", ".", "Decimal separator used by the documents' numbers")
	Cmd.Flags().BoolVar(&noLookup, "no-lookup", false, "Skip the online ICTax lookup")
	Cmd.Flags().IntVarP(&year, "year", "y", 0, "Tax year to query (default: latest completed year)")
	Cmd.Flags().IntVar(&nameWidth, "name-width", 40, "Width of the Name column in the workbook")

	// Override the usage text for the input/output flags in batch context
	Cmd.SetUsageTemplate(`Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

Available Commands:{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags (for batch, -i/-o refer to directories):
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`)
}

func batchFunc(cmd *cobra.Command, args []string) {
	root.Log.Info("Batch command called")

	// Use the shared flags from root command
	inputDir := root.SharedFlags.Input
	outputDir := root.SharedFlags.Output

	logger := root.GetLogrusAdapter()
	root.Log.Infof("Input directory: %s", inputDir)
	root.Log.Infof("Output directory: %s", outputDir)

	if inputDir == "" || outputDir == "" {
		logger.Fatal("Input and output directories must be specified")
	}
	if !fileutils.DirectoryExists(inputDir) {
		logger.Fatalf("Input directory does not exist: %s", inputDir)
	}
	if err := fileutils.EnsureDirectoryExists(outputDir); err != nil {
		logger.Fatalf("Failed to create output directory: %v", err)
	}

	appContainer := root.GetContainer()
	if appContainer == nil {
		logger.Fatal("Container not initialized")
	}
	cfg := appContainer.GetConfig()
	aggregator := appContainer.GetAggregator()

	files, err := aggregator.CollectFiles(inputDir)
	if err != nil {
		logger.Fatalf("Failed to collect input files: %v", err)
	}
	if len(files) == 0 {
		logger.Warn("No supported files found in input directory")
		return
	}

	opts := cmdcommon.ExtractOptions{
		SpecRef:           specRef,
		SourceOverride:    sourceOverride,
		Force:             force,
		ThousandSeparator: thousandSeparator,
		DecimalSeparator:  decimalSeparator,
	}
	// Flags left at their defaults fall back to the configuration.
	if !cmd.Flags().Changed("thousand-separator") {
		opts.ThousandSeparator = cfg.Extract.ThousandSeparator
	}
	if !cmd.Flags().Changed("decimal-separator") {
		opts.DecimalSeparator = cfg.Extract.DecimalSeparator
	}
	width := nameWidth
	if !cmd.Flags().Changed("name-width") {
		width = cfg.Export.NameWidth
	}

	extractFunc := func(filePath string) ([]funds.Fund, error) {
		return cmdcommon.ExtractFunds(appContainer, filePath, opts)
	}
	aggregated, err := aggregator.AggregateFunds(files, extractFunc)
	if err != nil {
		logger.Fatalf("Error during batch extraction: %v", err)
	}
	if len(aggregated) == 0 {
		logger.Warn("No funds found in input directory")
		return
	}

	result, _ := aggregator.ReconcileFunds(aggregated)

	taxYear := ictax.Year(year)
	if lookup := appContainer.GetLookup(); lookup != nil && !noLookup {
		root.Log.Infof("Looking up %d funds online for tax year %d", len(result), taxYear)
		result, err = lookup.LookupAll(cmd.Context(), result, taxYear)
		if err != nil {
			logger.Fatalf("Error looking up funds: %v", err)
		}
		root.Log.Infof("Queried %d funds", len(result))
	}

	outputPath := aggregator.OutputName(outputDir, taxYear)
	if err := common.WriteFundsToXLSX(result, outputPath, cfg.Export.Sheet, width); err != nil {
		logger.Fatalf("Error writing funds to XLSX: %v", err)
	}
	csvPath := fileutils.ReplaceExtension(outputPath, ".csv")
	if err := common.WriteFundsToCSV(result, csvPath); err != nil {
		logger.Fatalf("Error writing funds to CSV: %v", err)
	}

	root.Log.Info(fmt.Sprintf("Batch processing completed. %d funds written to %s.", len(result), outputPath))
}
