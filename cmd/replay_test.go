package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crytic/symgen/cmd/exitcodes"
	"github.com/crytic/symgen/symbolic/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReplayCommand verifies that the replay command requires a report, passes when the target is unchanged, and fails
// with the replay exit code once the target behaves differently.
func TestReplayCommand(t *testing.T) {
	// The report flag is required
	rootCmd.SetArgs([]string{"replay"})
	assert.ErrorContains(t, rootCmd.Execute(), "report")

	targetPath, err := filepath.Abs(filepath.Join("..", "symbolic", "testdata", "targets.go"))
	require.NoError(t, err)

	projectConfig := config.GetDefaultProjectConfig()
	projectConfig.Target.File = targetPath
	projectConfig.Target.Function = "Sign"
	projectConfig.Output.Directory = t.TempDir()
	projectConfig.Output.Formats = []string{"json"}
	projectConfig.Logging.Level = zerolog.ErrorLevel
	require.NoError(t, generate(context.Background(), *projectConfig))
	reportPath := filepath.Join(projectConfig.Output.Directory, "report.json")

	rootCmd.SetArgs([]string{"replay", "--report", reportPath, "--target", targetPath})
	assert.NoError(t, rootCmd.Execute())

	// Flip the outer condition so every test case takes the other branch
	src, err := os.ReadFile(targetPath)
	require.NoError(t, err)
	changedPath := filepath.Join(t.TempDir(), "targets.go")
	require.NoError(t, os.WriteFile(changedPath, []byte(strings.Replace(string(src), "if x > 0 {", "if x <= 0 {", 1)), 0644))

	rootCmd.SetArgs([]string{"replay", "--report", reportPath, "--target", changedPath})
	_, exitCode := exitcodes.GetInnerErrorAndExitCode(rootCmd.Execute())
	assert.EqualValues(t, exitcodes.ExitCodeReplayFailed, exitCode)

	// A report which cannot be read is a generator error
	rootCmd.SetArgs([]string{"replay", "--report", filepath.Join(t.TempDir(), "missing.json"), "--target", targetPath})
	_, exitCode = exitcodes.GetInnerErrorAndExitCode(rootCmd.Execute())
	assert.EqualValues(t, exitcodes.ExitCodeGeneratorError, exitCode)
}
