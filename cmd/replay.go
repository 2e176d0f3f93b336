package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/crytic/symgen/cmd/exitcodes"
	"github.com/crytic/symgen/logging"
	"github.com/crytic/symgen/logging/colors"
	"github.com/crytic/symgen/symbolic/report"
	"github.com/spf13/cobra"
)

// replayCmd represents the command provider for replaying a report
var replayCmd = &cobra.Command{
	Use:               "replay",
	Short:             "Replays the test cases of a report against their target",
	Long:              `Replays the test cases of a report against their target, checking that each still reaches its recorded outcome`,
	Args:              cmdValidateNoArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunReplay,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the replay command
	err := addReplayFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the replay command", err)
	}

	// Add the replay command and its associated flags to the root command
	rootCmd.AddCommand(replayCmd)
}

// cmdRunReplay executes the CLI replay command: it reads a report, re-extracts its target and replays every recorded
// test case. Any test case which does not reach its outcome fails the command.
func cmdRunReplay(cmd *cobra.Command, args []string) error {
	reportPath, err := cmd.Flags().GetString("report")
	if err != nil {
		return err
	}
	target, err := cmd.Flags().GetString("target")
	if err != nil {
		return err
	}
	intWidth, err := cmd.Flags().GetInt("int-width")
	if err != nil {
		return err
	}

	r, err := report.ReadFromFile(reportPath)
	if err != nil {
		cmdLogger.Error("Failed to read the report", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeGeneratorError)
	}
	if target == "" {
		target = r.Target.File
	}
	cmdLogger.Info("Replaying ", colors.Bold, len(r.TestCases), " test case(s)", colors.Reset, " of ", r.Target.Function, " in ", target)

	// The replayers log through the global logger
	logging.GlobalLogger.SetLevel(cmdLogger.Level())
	logging.GlobalLogger.AddWriter(os.Stdout, logging.UNSTRUCTURED, colors.Enabled())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := r.Replay(ctx, target, intWidth)
	if err != nil {
		cmdLogger.Error("Failed to replay the report", err)
		return exitcodes.NewErrorWithExitCode(err, exitCodeForRunError(err))
	}
	for name, reason := range summary.Skipped {
		cmdLogger.Warn("The ", name, " replay could not run: ", reason)
	}
	if !summary.Passed() {
		cmdLogger.Error(colors.Red, len(summary.Mismatches), " mismatch(es) found", colors.Reset)
		return exitcodes.NewErrorWithExitCode(nil, exitcodes.ExitCodeReplayFailed)
	}
	cmdLogger.Info(colors.GreenBold, "Every test case reached its recorded outcome", colors.Reset)
	return nil
}
