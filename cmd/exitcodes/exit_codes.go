package exitcodes

const (
	// ================================
	// Platform-universal exit codes
	// ================================

	// ExitCodeSuccess indicates no errors or failures had occurred.
	ExitCodeSuccess = 0

	// ExitCodeGeneralError indicates some type of general error occurred.
	ExitCodeGeneralError = 1

	// ================================
	// Application-specific exit codes
	// ================================
	// Note: Despite not being standardized, exit codes 2-5 are often used for common use cases, so we avoid them.

	// ExitCodeGeneratorError indicates that the generator failed before producing results, e.g. because the target
	// could not be read or parsed.
	ExitCodeGeneratorError = 6

	// ExitCodeReplayFailed indicates that at least one test case did not reach its recorded outcome when replayed.
	ExitCodeReplayFailed = 7

	// ExitCodeSolverFailures indicates that results were produced but at least one path failed with a solver error.
	ExitCodeSolverFailures = 8

	// ExitCodeUnsupportedTarget indicates the target function uses constructs outside the supported subset.
	ExitCodeUnsupportedTarget = 9
)
