package main

import (
	"fmt"
	"os"

	"github.com/crytic/symgen/cmd"
	"github.com/crytic/symgen/cmd/exitcodes"
)

func main() {
	// Run our root CLI command, which contains all underlying command logic and will handle parsing/invocation.
	err := cmd.Execute()

	// Obtain the actual error and exit code from the error, if any.
	var exitCode int
	err, exitCode = exitcodes.GetInnerErrorAndExitCode(err)

	// Errors with a specific exit code were already logged by the command which returned them.
	if err != nil && exitCode == exitcodes.ExitCodeGeneralError {
		fmt.Println(err)
	}

	// If we have a non-success exit code, exit with it.
	if exitCode != exitcodes.ExitCodeSuccess {
		os.Exit(exitCode)
	}
}
