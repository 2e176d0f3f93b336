package cmd

import (
	"fmt"

	"github.com/crytic/symgen/symbolic/config"
)

// addReplayFlags adds the various flags for the replay command
func addReplayFlags() error {
	defaultConfig := config.GetDefaultProjectConfig()

	// Prevent alphabetical sorting of usage message
	replayCmd.Flags().SortFlags = false

	// Report file
	replayCmd.Flags().String("report", "", "path to a json, yaml or cbor report written by the generate command")
	if err := replayCmd.MarkFlagRequired("report"); err != nil {
		return err
	}

	// Target
	replayCmd.Flags().String("target", "", "path to the source file to replay against, if not the one recorded in the report")

	// Integer width
	replayCmd.Flags().Int("int-width", defaultConfig.Solver.IntWidth,
		fmt.Sprintf("bit width of integer inputs without a fixed-width type (default is %d)", defaultConfig.Solver.IntWidth))
	return nil
}
