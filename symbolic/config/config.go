// Package config describes the project configuration of a generation run and how it is read, written and validated.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// ProjectConfig describes the configuration of a generation run.
type ProjectConfig struct {
	// Target describes the function tests are generated for.
	Target TargetConfig `json:"target" yaml:"target"`

	// Generation describes the configuration used by the generator pipeline.
	Generation GenerationConfig `json:"generation" yaml:"generation"`

	// Solver describes the configuration of the satisfiability oracle.
	Solver SolverConfig `json:"solver" yaml:"solver"`

	// Output describes where and how results are reported.
	Output OutputConfig `json:"output" yaml:"output"`

	// Logging describes the configuration used for logging to file and console.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// TargetConfig describes the function tests are generated for.
type TargetConfig struct {
	// File is the path of the source file which declares the target function.
	File string `json:"file" yaml:"file"`

	// Function is the name of the target function.
	Function string `json:"function" yaml:"function"`

	// Language names the frontend used to parse File. If empty, it is inferred from the file extension.
	Language string `json:"language" yaml:"language"`
}

// GenerationConfig describes the configuration options used by the generator pipeline.
type GenerationConfig struct {
	// Workers describes the amount of paths that are solved concurrently.
	Workers int `json:"workers" yaml:"workers"`

	// DomainConstraints are boolean expressions in the target's language which every generated input must satisfy,
	// e.g. "a > 0".
	DomainConstraints []string `json:"domainConstraints" yaml:"domainConstraints"`

	// MaxPaths is the maximum number of paths the branch tree may have. Extraction fails on larger trees. A zero
	// value disables the limit.
	MaxPaths int `json:"maxPaths" yaml:"maxPaths"`

	// Verify describes whether generated test cases are replayed against the target to confirm they reach their
	// recorded outcome.
	Verify bool `json:"verify" yaml:"verify"`
}

// SolverConfig describes the configuration of the satisfiability oracle.
type SolverConfig struct {
	// Backend names the oracle backend: "bitblast", "smtlib" or "z3".
	Backend string `json:"backend" yaml:"backend"`

	// Timeout is the time in milliseconds a single path condition may take to solve.
	Timeout int `json:"timeout" yaml:"timeout"`

	// IntWidth is the bit width of integer inputs whose type does not declare one. It bounds the search space of the
	// bitblast backend.
	IntWidth int `json:"intWidth" yaml:"intWidth"`

	// Command is the command line of the external solver used by the smtlib backend. The query is written to its
	// standard input.
	Command []string `json:"command" yaml:"command"`

	// CacheDirectory describes the directory in which solver results are persisted across runs. If empty, no cache
	// is used.
	CacheDirectory string `json:"cacheDirectory" yaml:"cacheDirectory"`
}

// OutputConfig describes where and how results are reported.
type OutputConfig struct {
	// Directory is the directory reports are written to.
	Directory string `json:"directory" yaml:"directory"`

	// Formats lists the report formats to write. See SupportedOutputFormats.
	Formats []string `json:"formats" yaml:"formats"`
}

// LoggingConfig describes the configuration options used for logging
type LoggingConfig struct {
	// Level describes whether logs of certain severity levels (eg info, warning, etc.) will be emitted or discarded.
	// Increasing level values represent more severe logs
	Level zerolog.Level `json:"level" yaml:"level"`

	// LogDirectory describes the directory where log files will be outputted. If the string is empty, then no log
	// files are kept
	LogDirectory string `json:"logDirectory" yaml:"logDirectory"`

	// NoColor indicates whether console output should be colorized
	NoColor bool `json:"noColor" yaml:"noColor"`
}

// SupportedLanguages lists the languages frontends exist for.
var SupportedLanguages = []string{"go", "python"}

// SupportedBackends lists the names of the oracle backends.
var SupportedBackends = []string{"bitblast", "smtlib", "z3"}

// SupportedOutputFormats lists the report formats which can be written.
var SupportedOutputFormats = []string{"text", "json", "yaml", "cbor", "gotest", "cases"}

// isYAMLPath indicates whether a configuration file path should be treated as YAML.
func isYAMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// ReadProjectConfigFromFile reads a ProjectConfig from a provided file path. Files with a .yaml or .yml extension are
// parsed as YAML, any other file as JSON. Options absent from the file keep their default values.
// Returns the ProjectConfig if it succeeds, or an error if one occurs.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	projectConfig := GetDefaultProjectConfig()
	if isYAMLPath(path) {
		err = yaml.Unmarshal(b, projectConfig)
	} else {
		err = json.Unmarshal(b, projectConfig)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse the project configuration at %v", path)
	}

	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to a provided file path, as YAML if the path has a .yaml or .yml extension
// and as JSON otherwise.
// Returns an error if one occurs.
func (p *ProjectConfig) WriteToFile(path string) error {
	var (
		b   []byte
		err error
	)
	if isYAMLPath(path) {
		b, err = yaml.Marshal(p)
	} else {
		b, err = json.MarshalIndent(p, "", "\t")
	}
	if err != nil {
		return errors.WithStack(err)
	}

	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Validate validates that the ProjectConfig meets certain requirements.
// Returns an error if one occurs.
func (p *ProjectConfig) Validate() error {
	// Verify a target was provided
	if p.Target.File == "" {
		return errors.Errorf("a target file must be provided")
	}
	if p.Target.Function == "" {
		return errors.Errorf("a target function must be provided")
	}
	if p.Target.Language != "" && !slices.Contains(SupportedLanguages, p.Target.Language) {
		return errors.Errorf("unsupported target language %q, expected one of %v", p.Target.Language, SupportedLanguages)
	}

	// Verify the generation options
	if p.Generation.Workers <= 0 {
		return errors.Errorf("worker count must be a positive number")
	}
	if p.Generation.MaxPaths < 0 {
		return errors.Errorf("max paths cannot be negative")
	}

	// Verify the solver options
	if !slices.Contains(SupportedBackends, p.Solver.Backend) {
		return errors.Errorf("unsupported solver backend %q, expected one of %v", p.Solver.Backend, SupportedBackends)
	}
	if p.Solver.Timeout <= 0 {
		return errors.Errorf("solver timeout must be a positive number of milliseconds")
	}
	if p.Solver.IntWidth < 2 || p.Solver.IntWidth > 64 {
		return errors.Errorf("integer width must be between 2 and 64 bits")
	}
	if p.Solver.Backend == "smtlib" && len(p.Solver.Command) == 0 {
		return errors.Errorf("the smtlib backend requires a solver command")
	}

	// Verify the output formats
	for _, format := range p.Output.Formats {
		if !slices.Contains(SupportedOutputFormats, format) {
			return errors.Errorf("unsupported output format %q, expected one of %v", format, SupportedOutputFormats)
		}
	}
	if p.Output.Directory == "" {
		for _, format := range p.Output.Formats {
			if format != "text" {
				return errors.Errorf("an output directory is required to write %v reports", format)
			}
		}
	}

	return nil
}
