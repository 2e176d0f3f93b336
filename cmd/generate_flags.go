package cmd

import (
	"fmt"
	"strings"

	"github.com/crytic/symgen/symbolic/config"
	"github.com/spf13/cobra"
)

// addGenerateFlags adds the various flags for the generate command
func addGenerateFlags() error {
	defaultConfig := config.GetDefaultProjectConfig()

	// Prevent alphabetical sorting of usage message
	generateCmd.Flags().SortFlags = false

	// Config file
	generateCmd.Flags().String("config", "", "path to config file")

	// Target
	generateCmd.Flags().String("target", "", "path to the source file which declares the target function")
	generateCmd.Flags().String("function", "", "name of the target function")
	generateCmd.Flags().String("language", "",
		fmt.Sprintf("language of the target file (%v), inferred from its extension if not provided", strings.Join(config.SupportedLanguages, ", ")))

	// Generation
	generateCmd.Flags().Int("workers", 0,
		fmt.Sprintf("number of paths solved concurrently (unless a config file is provided, default is %d)", defaultConfig.Generation.Workers))
	generateCmd.Flags().StringArray("constraint", []string{},
		"boolean expression over the parameters every generated input must satisfy, may be repeated (e.g. --constraint 'a > 0')")
	generateCmd.Flags().Int("max-paths", 0,
		fmt.Sprintf("maximum number of paths of the target (unless a config file is provided, default is %d). 0 means that the limit is not enforced", defaultConfig.Generation.MaxPaths))
	generateCmd.Flags().Bool("verify", false,
		fmt.Sprintf("replay generated test cases against the target (unless a config file is provided, default is %t)", defaultConfig.Generation.Verify))

	// Solver
	generateCmd.Flags().String("backend", "",
		fmt.Sprintf("solver backend, one of %v (unless a config file is provided, default is %q)", strings.Join(config.SupportedBackends, ", "), defaultConfig.Solver.Backend))
	generateCmd.Flags().Int("timeout", 0,
		fmt.Sprintf("number of milliseconds a single path may take to solve (unless a config file is provided, default is %d)", defaultConfig.Solver.Timeout))
	generateCmd.Flags().Int("int-width", 0,
		fmt.Sprintf("bit width of integer inputs without a fixed-width type (unless a config file is provided, default is %d)", defaultConfig.Solver.IntWidth))
	generateCmd.Flags().String("cache-dir", "", "directory path of the persistent solver cache")

	// Output
	generateCmd.Flags().String("out", "",
		fmt.Sprintf("directory path reports are written to (unless a config file is provided, default is %q)", defaultConfig.Output.Directory))
	generateCmd.Flags().StringSlice("format", []string{},
		fmt.Sprintf("report formats to write, any of %v (unless a config file is provided, default is %v)", strings.Join(config.SupportedOutputFormats, ", "), defaultConfig.Output.Formats))
	generateCmd.Flags().Bool("no-color", false, "disable colored console output")

	// Watch mode
	generateCmd.Flags().Bool("watch", false, "regenerate the test cases whenever the target file changes")
	return nil
}

// updateProjectConfigWithGenerateFlags will update the given projectConfig with any CLI arguments that were provided
// to the generate command
func updateProjectConfigWithGenerateFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update the target
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
	if cmd.Flags().Changed("language") {
		projectConfig.Target.Language, err = cmd.Flags().GetString("language")
		if err != nil {
			return err
		}
	}

	// Update number of workers
	if cmd.Flags().Changed("workers") {
		projectConfig.Generation.Workers, err = cmd.Flags().GetInt("workers")
		if err != nil {
			return err
		}
	}

	// Constraints given on the command line are added to those of the config file
	if cmd.Flags().Changed("constraint") {
		constraints, err := cmd.Flags().GetStringArray("constraint")
		if err != nil {
			return err
		}
		projectConfig.Generation.DomainConstraints = append(projectConfig.Generation.DomainConstraints, constraints...)
	}

	// Update max paths
	if cmd.Flags().Changed("max-paths") {
		projectConfig.Generation.MaxPaths, err = cmd.Flags().GetInt("max-paths")
		if err != nil {
			return err
		}
	}

	// Update verification enablement
	if cmd.Flags().Changed("verify") {
		projectConfig.Generation.Verify, err = cmd.Flags().GetBool("verify")
		if err != nil {
			return err
		}
	}

	// Update the solver
	if cmd.Flags().Changed("backend") {
		projectConfig.Solver.Backend, err = cmd.Flags().GetString("backend")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("timeout") {
		projectConfig.Solver.Timeout, err = cmd.Flags().GetInt("timeout")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("int-width") {
		projectConfig.Solver.IntWidth, err = cmd.Flags().GetInt("int-width")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("cache-dir") {
		projectConfig.Solver.CacheDirectory, err = cmd.Flags().GetString("cache-dir")
		if err != nil {
			return err
		}
	}

	// Update the output
	if cmd.Flags().Changed("out") {
		projectConfig.Output.Directory, err = cmd.Flags().GetString("out")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("format") {
		projectConfig.Output.Formats, err = cmd.Flags().GetStringSlice("format")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("no-color") {
		projectConfig.Logging.NoColor, err = cmd.Flags().GetBool("no-color")
		if err != nil {
			return err
		}
	}
	return nil
}
