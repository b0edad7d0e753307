// Package extract handles table and fund extraction commands
package extract

import (
	"github.com/spf13/cobra"

	cmdcommon "fjacquet/funds-xlsx/cmd/common"
	"fjacquet/funds-xlsx/cmd/root"
	"fjacquet/funds-xlsx/internal/common"
	"fjacquet/funds-xlsx/internal/fileutils"
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
	csvOutput         bool
)

// Cmd represents the extract command
var Cmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract tables or funds from a document",
	Long:  `Extract the tables of a holdings document that match a table specification, as-is or converted into fund holdings.`,
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Extract matching tables to XLSX",
	Long:  `Extract every table matching the specification and write each one to a sheet of an XLSX workbook.`,
	Run:   tablesFunc,
}

var fundsCmd = &cobra.Command{
	Use:   "funds",
	Short: "Extract fund holdings to XLSX",
	Long:  `Extract the funds held according to the document's matching tables, enrich them through the ICTax API and write them to an XLSX workbook.`,
	Run:   fundsFunc,
}

func init() {
	Cmd.PersistentFlags().StringVarP(&specRef, "spec", "s", "1", "Table specification: a number from 'specs' or a YAML file path")
	Cmd.PersistentFlags().BoolVarP(&force, "force", "f", false, "Re-extract PDF tables even when a cache exists")
	Cmd.PersistentFlags().StringVar(&sourceOverride, "source", "", "Document type override (csv, xlsx, xml, html, pdf)")

	fundsCmd.Flags().StringVar(&thousandSeparator, "thousand-separator", "'", "Thousand separator used by the document's numbers")
	fundsCmd.Flags().StringVar(&decimalSeparator, "decimal-separator", ".", "Decimal separator used by the document's numbers")
	fundsCmd.Flags().BoolVar(&noLookup, "no-lookup", false, "Skip the online ICTax lookup")
	fundsCmd.Flags().IntVarP(&year, "year", "y", 0, "Tax year to query (default: latest completed year)")
	fundsCmd.Flags().IntVar(&nameWidth, "name-width", 40, "Width of the Name column in the workbook")
	fundsCmd.Flags().BoolVar(&csvOutput, "csv", false, "Also write the funds to a CSV file next to the workbook")

	Cmd.AddCommand(tablesCmd)
	Cmd.AddCommand(fundsCmd)
}

func tablesFunc(cmd *cobra.Command, args []string) {
	logger := root.GetLogrusAdapter()
	root.Log.Info("Extract tables command called")
	root.Log.Infof("Input file: %s", root.SharedFlags.Input)

	appContainer := root.GetContainer()
	if appContainer == nil {
		logger.Fatal("Container not initialized")
	}
	if root.SharedFlags.Input == "" {
		logger.Fatal("Input file is required")
	}

	opts := cmdcommon.ExtractOptions{
		SpecRef:        specRef,
		SourceOverride: sourceOverride,
		Force:          force,
	}
	matched, err := cmdcommon.LoadTables(appContainer, root.SharedFlags.Input, opts, nil)
	if err != nil {
		logger.Fatalf("Error extracting tables: %v", err)
	}

	output := cmdcommon.OutputPath(root.SharedFlags.Input, root.SharedFlags.Output, ".xlsx")
	if err := common.WriteTablesToXLSX(matched, output, common.DefaultTablesSheet); err != nil {
		logger.Fatalf("Error writing tables to XLSX: %v", err)
	}
	root.Log.Info("Table extraction completed successfully!")
}

func fundsFunc(cmd *cobra.Command, args []string) {
	logger := root.GetLogrusAdapter()
	root.Log.Info("Extract funds command called")
	root.Log.Infof("Input file: %s", root.SharedFlags.Input)

	appContainer := root.GetContainer()
	if appContainer == nil {
		logger.Fatal("Container not initialized")
	}
	if root.SharedFlags.Input == "" {
		logger.Fatal("Input file is required")
	}
	cfg := appContainer.GetConfig()

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

	result, err := cmdcommon.ExtractFunds(appContainer, root.SharedFlags.Input, opts)
	if err != nil {
		logger.Fatalf("Error extracting funds: %v", err)
	}

	if lookup := appContainer.GetLookup(); lookup != nil && !noLookup {
		taxYear := ictax.Year(year)
		root.Log.Infof("Looking up %d funds online for tax year %d", len(result), taxYear)
		result, err = lookup.LookupAll(cmd.Context(), result, taxYear)
		if err != nil {
			logger.Fatalf("Error looking up funds: %v", err)
		}
		root.Log.Infof("Queried %d funds", len(result))
	}

	output := cmdcommon.OutputPath(root.SharedFlags.Input, root.SharedFlags.Output, ".xlsx")
	if err := common.WriteFundsToXLSX(result, output, cfg.Export.Sheet, width); err != nil {
		logger.Fatalf("Error writing funds to XLSX: %v", err)
	}
	if csvOutput {
		csvFile := fileutils.ReplaceExtension(output, ".csv")
		if err := common.WriteFundsToCSV(result, csvFile); err != nil {
			logger.Fatalf("Error writing funds to CSV: %v", err)
		}
	}
	root.Log.Info("Fund extraction completed successfully!")
}
