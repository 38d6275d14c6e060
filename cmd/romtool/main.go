// Command romtool provides ROM inspection utilities: importing a ROM (and
// optional battery save) to validate it loads, scanning a directory of ROMs
// into a summary table, diffing two ROM headers, and dumping emulated
// frames as PNGs.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "romtool",
		Short:         "NES ROM inspection and diagnostic utilities",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newImportCmd(), newScanCmd(), newCompareCmd(), newDumpCmd())

	if err := root.Execute(); err != nil {
		log.Error(err)
		if _, ok := err.(usageError); ok {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// usageError marks an error as a usage mistake (exit code 2) rather than a
// runtime failure (exit code 1), per the CLI contract.
type usageError struct{ error }

func newUsageError(format string, args ...any) error {
	return usageError{error: fmt.Errorf(format, args...)}
}
