package config

import "github.com/rs/zerolog"

// GetDefaultProjectConfig obtains a default configuration for a project. The target is left empty and must be
// provided before the configuration validates.
func GetDefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Target: TargetConfig{
			File:     "",
			Function: "",
			Language: "",
		},
		Generation: GenerationConfig{
			Workers:           4,
			DomainConstraints: []string{},
			MaxPaths:          4096,
			Verify:            true,
		},
		Solver: SolverConfig{
			Backend:        "bitblast",
			Timeout:        5000,
			IntWidth:       16,
			Command:        []string{"z3", "-in", "-smt2"},
			CacheDirectory: "",
		},
		Output: OutputConfig{
			Directory: "symgen-out",
			Formats:   []string{"text", "json"},
		},
		Logging: LoggingConfig{
			Level:        zerolog.InfoLevel,
			LogDirectory: "",
			NoColor:      false,
		},
	}
}
