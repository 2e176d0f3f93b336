package cmd

import (
	"github.com/crytic/symgen/symbolic/config"
	"github.com/spf13/cobra"
)

// addInitFlags adds the various flags for the init command
func addInitFlags() error {
	// Output path for configuration
	initCmd.Flags().String("out", "", "output path for the new project configuration file (json, or yaml by extension)")

	// Target function
	initCmd.Flags().String("target", "", "path to the source file which declares the target function")
	initCmd.Flags().String("function", "", "name of the target function")

	return nil
}

// updateProjectConfigWithInitFlags will update the given projectConfig with any CLI arguments that were provided to the init command
func updateProjectConfigWithInitFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error
	if cmd.Flags().Changed("target") {
		projectConfig.Target.File, err = cmd.Flags().GetString("target")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("function") {
		projectConfig.Target.Function, err = cmd.Flags().GetString("function")
		if err != nil {
			return err
		}
	}
	return nil
}
