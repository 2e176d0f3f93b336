// Package report converts the results of a generation run into reports, and writes and reads them in the supported
// output formats.
package report

import (
	"time"

	"github.com/crytic/symgen/symbolic"
	"github.com/crytic/symgen/symbolic/replay"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/crytic/symgen/version"
)

// Report describes the results of a generation run in a form which can be serialized.
type Report struct {
	// SchemaVersion is the version of the report format. Readers check it against version.ReportSchemaConstraint.
	SchemaVersion string `json:"schemaVersion" yaml:"schemaVersion" cbor:"schemaVersion"`

	// RunID identifies the run which produced the report.
	RunID string `json:"runId" yaml:"runId" cbor:"runId"`

	// GeneratorVersion is the version of symgen which produced the report.
	GeneratorVersion string `json:"generatorVersion" yaml:"generatorVersion" cbor:"generatorVersion"`

	// GeneratedAt is the time the report was created, in RFC 3339 format.
	GeneratedAt string `json:"generatedAt" yaml:"generatedAt" cbor:"generatedAt"`

	// Target describes the function tests were generated for.
	Target Target `json:"target" yaml:"target" cbor:"target"`

	// Backend is the name of the oracle which solved the path conditions.
	Backend string `json:"backend" yaml:"backend" cbor:"backend"`

	// Summary holds the counts of the run.
	Summary Summary `json:"summary" yaml:"summary" cbor:"summary"`

	// TestCases holds the generated test cases in path order.
	TestCases []*types.TestCase `json:"testCases" yaml:"testCases" cbor:"testCases"`

	// DeadPaths lists the paths with an unsatisfiable condition.
	DeadPaths []symbolic.DeadPath `json:"deadPaths" yaml:"deadPaths" cbor:"deadPaths"`

	// FailedPaths lists the paths the oracle failed on.
	FailedPaths []symbolic.FailedPath `json:"failedPaths" yaml:"failedPaths" cbor:"failedPaths"`

	// Verification holds the outcome of replaying the test cases, if they were replayed.
	Verification *replay.Summary `json:"verification,omitempty" yaml:"verification,omitempty" cbor:"verification,omitempty"`
}

// Target describes the function tests were generated for.
type Target struct {
	// File is the path of the source file which declares the function.
	File string `json:"file" yaml:"file" cbor:"file"`

	// Function is the name of the function.
	Function string `json:"function" yaml:"function" cbor:"function"`

	// Package is the package or module the function is declared in, if the language has one.
	Package string `json:"package,omitempty" yaml:"package,omitempty" cbor:"package,omitempty"`

	// Language is the language of the source file.
	Language string `json:"language" yaml:"language" cbor:"language"`

	// Params describes the inputs of the function in declaration order.
	Params []Param `json:"params" yaml:"params" cbor:"params"`

	// ResultTypes are the source text of the declared result types, if the language declares them.
	ResultTypes []string `json:"resultTypes,omitempty" yaml:"resultTypes,omitempty" cbor:"resultTypes,omitempty"`
}

// Param describes a single input of the target function.
type Param struct {
	// Name is the name of the parameter.
	Name string `json:"name" yaml:"name" cbor:"name"`

	// Type is the declared type of the parameter.
	Type string `json:"type" yaml:"type" cbor:"type"`

	// Sort is "int" or "bool".
	Sort string `json:"sort" yaml:"sort" cbor:"sort"`

	// Min and Max bound integer parameters.
	Min int64 `json:"min,omitempty" yaml:"min,omitempty" cbor:"min,omitempty"`
	Max int64 `json:"max,omitempty" yaml:"max,omitempty" cbor:"max,omitempty"`
}

// Summary holds the counts of a run.
type Summary struct {
	// Paths is the number of paths of the branch tree.
	Paths int `json:"paths" yaml:"paths" cbor:"paths"`

	// TestCases is the number of test cases generated.
	TestCases int `json:"testCases" yaml:"testCases" cbor:"testCases"`

	// DeadPaths is the number of paths with an unsatisfiable condition.
	DeadPaths int `json:"deadPaths" yaml:"deadPaths" cbor:"deadPaths"`

	// FailedPaths is the number of paths the oracle failed on.
	FailedPaths int `json:"failedPaths" yaml:"failedPaths" cbor:"failedPaths"`

	// Duplicates is the number of test cases sharing their inputs with another.
	Duplicates int `json:"duplicates" yaml:"duplicates" cbor:"duplicates"`

	// DurationMs is the duration of the run in milliseconds.
	DurationMs int64 `json:"durationMs" yaml:"durationMs" cbor:"durationMs"`
}

// Meta describes the context of a run which the results do not carry.
type Meta struct {
	// File is the path of the target source file.
	File string

	// Backend is the name of the oracle backend.
	Backend string
}

// FromResults creates a Report from the results of a run.
func FromResults(results *symbolic.Results, meta Meta) *Report {
	report := &Report{
		SchemaVersion:    version.ReportSchemaVersion,
		RunID:            results.RunID.String(),
		GeneratorVersion: version.GetInfo().Version,
		GeneratedAt:      time.Now().UTC().Format(time.RFC3339),
		Target:           Target{File: meta.File, Params: make([]Param, len(results.Params))},
		Backend:          meta.Backend,
		Summary: Summary{
			Paths:       len(results.Paths),
			TestCases:   len(results.TestCases),
			DeadPaths:   len(results.DeadPaths),
			FailedPaths: len(results.FailedPaths),
			Duplicates:  len(results.Duplicates()),
			DurationMs:  results.Duration.Milliseconds(),
		},
		TestCases:    results.TestCases,
		DeadPaths:    results.DeadPaths,
		FailedPaths:  results.FailedPaths,
		Verification: results.Verification,
	}

	if fn := results.Function; fn != nil {
		report.Target.Function = fn.Name
		report.Target.Package = fn.Package
		report.Target.Language = fn.Language
		report.Target.ResultTypes = fn.ResultTypes
	}
	for i, param := range results.Params {
		report.Target.Params[i] = Param{Name: param.Name, Type: param.TypeText, Sort: param.Sort.String(), Min: param.Min, Max: param.Max}
	}
	return report
}

// Passed indicates whether every path was decided and every replayed test case reached its outcome.
func (r *Report) Passed() bool {
	return len(r.FailedPaths) == 0 && (r.Verification == nil || r.Verification.Passed())
}
