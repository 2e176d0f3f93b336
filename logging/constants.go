package logging

// These constants identify the services that log. Each is used as the value of the "service" key of a sub-logger.
const (
	// CLI_SERVICE identifies the cmd package
	CLI_SERVICE = "cli"
	// GENERATOR_SERVICE identifies the generator pipeline
	GENERATOR_SERVICE = "generator"
	// EXTRACTION_SERVICE identifies the condition extractor and frontends
	EXTRACTION_SERVICE = "extraction"
	// SOLVER_SERVICE identifies the solver adapter and oracle backends
	SOLVER_SERVICE = "solver"
	// REPLAY_SERVICE identifies round-trip verification
	REPLAY_SERVICE = "replay"
	// REPORT_SERVICE identifies report writers
	REPORT_SERVICE = "report"
)
