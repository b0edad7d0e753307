// Package specs handles the table specification listing command
package specs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fjacquet/funds-xlsx/cmd/root"
	"fjacquet/funds-xlsx/internal/specstore"
)

// Cmd represents the specs command
var Cmd = &cobra.Command{
	Use:   "specs",
	Short: "List the available table specifications",
	Long: `List every table specification file with its number and content.
The number selects the specification in the extract and batch commands.`,
	Run: specsFunc,
}

func specsFunc(cmd *cobra.Command, args []string) {
	logger := root.GetLogrusAdapter()

	appContainer := root.GetContainer()
	if appContainer == nil {
		logger.Fatal("Container not initialized")
	}

	if err := writeSpecs(os.Stdout, appContainer.GetSpecs()); err != nil {
		logger.Fatalf("Error listing specifications: %v", err)
	}
}

// writeSpecs prints every specification with the 1-based number that
// Resolve accepts as a reference.
func writeSpecs(w io.Writer, store *specstore.Store) error {
	paths, err := store.List()
	if err != nil {
		return err
	}
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read specification %s: %w", path, err)
		}
		fmt.Fprintf(w, "=== SPEC #%d: %s ===\n", i+1, filepath.Base(path))
		fmt.Fprint(w, string(data))
		fmt.Fprintln(w)
	}
	return nil
}
