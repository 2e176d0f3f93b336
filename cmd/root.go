package cmd

import (
	"os"

	"github.com/crytic/symgen/logging"
	"github.com/crytic/symgen/logging/colors"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// cmdLogger is the logger used by the cmd package for messages outside a generation run.
var cmdLogger = logging.NewLogger(zerolog.InfoLevel)

var rootCmd = &cobra.Command{
	Use:   "symgen",
	Short: "A path-condition driven test generator",
	Long: "symgen extracts the branch conditions of a function, solves the condition of every path through it and " +
		"writes one test case per feasible path",
}

func init() {
	// Colors only make sense on a terminal
	colored := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if !colored {
		colors.DisableColor()
	}
	cmdLogger.AddWriter(os.Stdout, logging.UNSTRUCTURED, colored)
}

// Execute runs the root command, which dispatches to the sub-command given on the command line.
func Execute() error {
	return rootCmd.Execute()
}
