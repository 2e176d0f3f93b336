package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/crytic/symgen/logging/colors"
	"github.com/crytic/symgen/symbolic/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// cmdValidFlagArgs will return the flags of a command which have not been used yet, for dynamic completion
func cmdValidFlagArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			// Include the "--" prefix to indicate that it is a flag and not a positional argument
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}

// cmdValidateNoArgs makes sure that there are no positional arguments provided to a command
func cmdValidateNoArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		err = fmt.Errorf("%v does not accept any positional arguments, only flags and their associated values", cmd.Name())
		cmdLogger.Error(fmt.Sprintf("Failed to validate args to the %v command", cmd.Name()), err)
		return err
	}
	return nil
}

// readProjectConfig obtains the project configuration of a command and navigates through the following
// possibilities:
// #1: We will search for either a custom config file (via --config) or the default (symgen.json).
// If we find it, read it. If we can't read it, throw an error.
// #2: If a custom file was provided (--config was used), and we can't find the file, throw an error.
// #3: If symgen.json can't be found, use the default project configuration.
// Returns the configuration and the path it was read from, or would have been read from.
func readProjectConfig(cmd *cobra.Command) (*config.ProjectConfig, string, error) {
	// Check to see if --config flag was used and store the value of --config flag
	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", err
	}

	// If --config was not used, look for `symgen.json` in the current work directory
	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			return nil, "", err
		}
		configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	// Check to see if the file exists at configPath
	_, existenceError := os.Stat(configPath)

	// Possibility #1: File was found
	if existenceError == nil {
		cmdLogger.Info("Reading the configuration file at: ", colors.Bold, configPath, colors.Reset)
		projectConfig, err := config.ReadProjectConfigFromFile(configPath)
		if err != nil {
			return nil, "", err
		}
		return projectConfig, configPath, nil
	}

	// Possibility #2: If the --config flag was used, and we couldn't find the file, we'll throw an error
	if configFlagUsed {
		return nil, "", existenceError
	}

	// Possibility #3: --config flag was not used and symgen.json was not found, so use the default project config
	cmdLogger.Debug(fmt.Sprintf("Unable to find the config file at %v, will use the default project configuration", configPath))
	return config.GetDefaultProjectConfig(), configPath, nil
}
