package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/crytic/symgen/cmd/exitcodes"
	"github.com/crytic/symgen/logging/colors"
	"github.com/crytic/symgen/symbolic"
	"github.com/crytic/symgen/symbolic/config"
	"github.com/crytic/symgen/symbolic/extraction"
	"github.com/crytic/symgen/symbolic/report"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// generateCmd represents the command provider for test generation
var generateCmd = &cobra.Command{
	Use:               "generate",
	Short:             "Generates a test case for every feasible path of a function",
	Long:              `Generates a test case for every feasible path of a function`,
	Args:              cmdValidateNoArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunGenerate,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the generate command
	err := addGenerateFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the generate command", err)
	}

	// Add the generate command and its associated flags to the root command
	rootCmd.AddCommand(generateCmd)
}

// pathFlags are the flags holding paths, which are resolved against the working directory the command was run from.
var pathFlags = map[string]func(*config.ProjectConfig) *string{
	"target":    func(c *config.ProjectConfig) *string { return &c.Target.File },
	"out":       func(c *config.ProjectConfig) *string { return &c.Output.Directory },
	"cache-dir": func(c *config.ProjectConfig) *string { return &c.Solver.CacheDirectory },
}

// cmdRunGenerate executes the CLI generate command: it reads the project configuration, applies the flags, runs the
// generator and writes its reports. With --watch, the generator runs again whenever the target file changes.
func cmdRunGenerate(cmd *cobra.Command, args []string) error {
	projectConfig, configPath, err := readProjectConfig(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the generate command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeGeneratorError)
	}

	// Update the project configuration given whatever flags were set using the CLI
	err = updateProjectConfigWithGenerateFlags(cmd, projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the generate command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeGeneratorError)
	}
	for flag, path := range pathFlags {
		if p := path(projectConfig); cmd.Flags().Changed(flag) && *p != "" {
			if *p, err = filepath.Abs(*p); err != nil {
				return exitcodes.NewErrorWithExitCode(errors.WithStack(err), exitcodes.ExitCodeGeneratorError)
			}
		}
	}
	if !colors.Enabled() {
		projectConfig.Logging.NoColor = true
	}

	// Paths in the configuration file are relative to the directory it is in
	err = os.Chdir(filepath.Dir(configPath))
	if err != nil {
		cmdLogger.Error("Failed to run the generate command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeGeneratorError)
	}

	// Stop generating on keyboard interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return err
	}
	if !watch {
		return generate(ctx, *projectConfig)
	}

	// In watch mode, failed runs are reported and the next change is awaited
	if err := generate(ctx, *projectConfig); err != nil {
		cmdLogger.Warn("Generation failed, waiting for the target to change", err)
	}
	cmdLogger.Info("Watching ", colors.Bold, projectConfig.Target.File, colors.Reset, " for changes, press Ctrl+C to stop")
	err = watchFile(ctx, projectConfig.Target.File, defaultWatchDebounce, func() {
		cmdLogger.Info("The target changed, regenerating")
		if err := generate(ctx, *projectConfig); err != nil {
			cmdLogger.Warn("Generation failed, waiting for the target to change", err)
		}
	})
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// generate runs the generator once with the provided configuration and writes the reports of the run. The returned
// error carries the exit code describing the outcome of the run.
func generate(ctx context.Context, projectConfig config.ProjectConfig) error {
	generator, err := symbolic.NewGenerator(projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to create the generator", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeGeneratorError)
	}
	defer generator.Close()

	results, err := generator.Run(ctx)
	if err != nil {
		cmdLogger.Error("Failed to generate test cases", err)
		return exitcodes.NewErrorWithExitCode(err, exitCodeForRunError(err))
	}

	r := report.FromResults(results, report.Meta{File: projectConfig.Target.File, Backend: projectConfig.Solver.Backend})
	if _, err = report.Write(r, projectConfig.Output, os.Stdout); err != nil {
		cmdLogger.Error("Failed to write the reports", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeGeneratorError)
	}

	// A run with failed paths or replay mismatches completed, but not successfully
	if len(results.FailedPaths) > 0 {
		cmdLogger.Warn(colors.Yellow, len(results.FailedPaths), " path(s) could not be solved", colors.Reset)
		return exitcodes.NewErrorWithExitCode(nil, exitcodes.ExitCodeSolverFailures)
	}
	if results.Verification != nil && !results.Verification.Passed() {
		cmdLogger.Warn(colors.Yellow, len(results.Verification.Mismatches), " test case(s) did not replay to their outcome", colors.Reset)
		return exitcodes.NewErrorWithExitCode(nil, exitcodes.ExitCodeReplayFailed)
	}
	return nil
}

// exitCodeForRunError returns the exit code of a run which failed before producing results.
func exitCodeForRunError(err error) int {
	var unsupported *extraction.UnsupportedConstructError
	if errors.As(err, &unsupported) {
		return exitcodes.ExitCodeUnsupportedTarget
	}
	return exitcodes.ExitCodeGeneratorError
}
