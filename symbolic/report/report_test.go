package report

import (
	"bytes"
	"context"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/crytic/symgen/symbolic"
	"github.com/crytic/symgen/symbolic/config"
	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/symbolic/replay"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/crytic/symgen/version"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestReport returns a report on a two-parameter go function with one test case per kind of outcome.
func newTestReport() *Report {
	expected := expr.IntValue(2)
	return &Report{
		SchemaVersion:    version.ReportSchemaVersion,
		RunID:            "6f1c8e2a-3b8d-4d36-9a8e-7d0f2f1b5c11",
		GeneratorVersion: version.Version,
		GeneratedAt:      "2026-01-02T03:04:05Z",
		Target: Target{
			File:     "targets.go",
			Function: "Scale",
			Package:  "targets",
			Language: "go",
			Params: []Param{
				{Name: "x", Type: "int8", Sort: "int", Min: -128, Max: 127},
				{Name: "double", Type: "bool", Sort: "bool"},
			},
			ResultTypes: []string{"int"},
		},
		Backend: "bitblast",
		Summary: Summary{Paths: 3, TestCases: 2, DeadPaths: 1, Duplicates: 0, DurationMs: 12},
		TestCases: []*types.TestCase{
			{
				PathID:    1,
				Inputs:    []types.InputValue{{Name: "x", Value: expr.IntValue(1)}, {Name: "double", Value: expr.BoolValue(true)}},
				Outcome:   "int(x) * 2",
				Expected:  &expected,
				Condition: "double",
			},
			{
				PathID:    3,
				Inputs:    []types.InputValue{{Name: "x", Value: expr.IntValue(-5)}, {Name: "double", Value: expr.BoolValue(false)}},
				Outcome:   "0",
				Condition: "(!double) && (x < 0)",
			},
		},
		DeadPaths: []symbolic.DeadPath{{PathID: 2, Outcome: "-1", Condition: "(!double) && (x < 0) && (x > 0)"}},
		Verification: &replay.Summary{
			Replayers:  []string{replay.TreeReplayerName},
			Replayed:   2,
			Mismatches: []replay.Mismatch{},
		},
	}
}

// TestEncodeRoundTrip verifies that a report decodes to what was encoded in each serialized format.
func TestEncodeRoundTrip(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatYAML, FormatCBOR} {
		t.Run(format, func(t *testing.T) {
			report := newTestReport()
			b, err := report.Encode(format)
			require.NoError(t, err)

			decoded, err := Decode(b, format)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(report, decoded, cmpopts.EquateEmpty()))
		})
	}
}

// TestReadFromFile verifies that reports are written and read back in the format given by the file extension.
func TestReadFromFile(t *testing.T) {
	dir := t.TempDir()
	report := newTestReport()

	for _, name := range []string{"report.json", "report.yml", "nested/report.cbor"} {
		path := filepath.Join(dir, name)
		require.NoError(t, report.WriteToFile(path))

		read, err := ReadFromFile(path)
		require.NoError(t, err)
		assert.EqualValues(t, report.Target, read.Target)
		assert.Len(t, read.TestCases, 2)
	}

	_, err := ReadFromFile(filepath.Join(dir, "report.txt"))
	assert.Error(t, err)
}

// TestDecodeIncompatible verifies that reports of an unsupported schema version are rejected.
func TestDecodeIncompatible(t *testing.T) {
	// Create the list of test cases
	testCases := []struct {
		schemaVersion string
		compatible    bool
	}{
		{schemaVersion: "1.0.0", compatible: true},
		{schemaVersion: "1.4.2", compatible: true},
		{schemaVersion: "2.0.0", compatible: false},
		{schemaVersion: "0.9.0", compatible: false},
		{schemaVersion: "latest", compatible: false},
	}

	for _, tc := range testCases {
		report := newTestReport()
		report.SchemaVersion = tc.schemaVersion
		b, err := report.Encode(FormatJSON)
		require.NoError(t, err)

		_, err = Decode(b, FormatJSON)
		if tc.compatible {
			assert.NoError(t, err, tc.schemaVersion)
		} else {
			assert.Error(t, err, tc.schemaVersion)
		}
	}
}

// TestCases verifies that test cases are written to one file each and read back in path order.
func TestCases(t *testing.T) {
	dir := filepath.Join(t.TempDir(), CasesDirectoryName)
	report := newTestReport()

	written, err := WriteCases(dir, report)
	require.NoError(t, err)
	require.Len(t, written, 2)
	for _, path := range written {
		assert.FileExists(t, path)
		assert.EqualValues(t, ".json", filepath.Ext(path))
	}

	read, err := ReadCases(dir)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(report.TestCases, read))

	// Rewriting the directory drops the cases of earlier runs, but leaves other files alone
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("kept"), 0644))
	rerun := newTestReport()
	rerun.TestCases = rerun.TestCases[1:]
	_, err = WriteCases(dir, rerun)
	require.NoError(t, err)
	read, err = ReadCases(dir)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(rerun.TestCases, read))
	assert.NoFileExists(t, written[0])
	assert.FileExists(t, notes)

	// Identical inputs on different paths are kept apart
	duplicate := *report.TestCases[0]
	duplicate.PathID = 4
	assert.NotEqual(t, caseFileName(report.TestCases[0]), caseFileName(&duplicate))
}

// TestWriteText verifies the text rendition of a report.
func TestWriteText(t *testing.T) {
	report := newTestReport()
	report.TestCases[1].DuplicateOf = []int{5}
	report.FailedPaths = []symbolic.FailedPath{{PathID: 5, Outcome: "7", Condition: "x == 3", Backend: "smtlib", Timeout: true}}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, report))
	text := buf.String()

	assert.Contains(t, text, "Function Scale (go) in targets.go")
	assert.Contains(t, text, "x=1, double=true")
	assert.Contains(t, text, "same inputs as #5")
	assert.Contains(t, text, "Dead paths")
	assert.Contains(t, text, "(!double) && (x < 0) && (x > 0)")
	assert.Contains(t, text, "timeout")
	assert.Contains(t, text, "all 2 test case(s) reached their outcome")

	// Columns line up on the header
	lines := strings.Split(text, "\n")
	var header, first string
	for i, line := range lines {
		if strings.HasPrefix(line, "PATH  INPUTS") {
			header, first = line, lines[i+2]
			break
		}
	}
	require.NotEmpty(t, header)
	assert.EqualValues(t, strings.Index(header, "OUTCOME"), strings.Index(first, "int(x) * 2"))
}

// TestRenderGoTest verifies the generated go test is valid go which holds every test case.
func TestRenderGoTest(t *testing.T) {
	report := newTestReport()
	report.TestCases = append(report.TestCases, &types.TestCase{
		PathID:  4,
		Inputs:  []types.InputValue{{Name: "x", Value: expr.IntValue(0)}, {Name: "double", Value: expr.BoolValue(false)}},
		Outcome: "return",
	})

	src, err := RenderGoTest(report)
	require.NoError(t, err)

	file, err := parser.ParseFile(token.NewFileSet(), GoTestFileName("Scale"), src, parser.AllErrors)
	require.NoError(t, err)
	assert.EqualValues(t, "targets", file.Name.Name)
	assert.EqualValues(t, "scale_symgen_test.go", GoTestFileName("Scale"))

	text := string(src)
	assert.Contains(t, text, "func TestScaleSymgen(t *testing.T)")
	// gofmt aligns the values of the keyed fields of each case
	assert.Regexp(t, `want:\s+func\(x int8, double bool\) int \{ return int\(x\) \* 2 \},`, text)
	assert.Regexp(t, `x:\s+-5,`, text)
	assert.Contains(t, text, `"reflect"`)
	assert.Len(t, regexp.MustCompile(`want:\s+func\(`).FindAllString(text, -1), 2)
}

// TestRenderGoTestErrors verifies that go tests are refused for targets they cannot be rendered for.
func TestRenderGoTestErrors(t *testing.T) {
	python := newTestReport()
	python.Target.Language = "python"
	_, err := RenderGoTest(python)
	assert.Error(t, err)

	reserved := newTestReport()
	reserved.Target.Params[1].Name = "want"
	_, err = RenderGoTest(reserved)
	assert.Error(t, err)
}

// TestWrite verifies that a generation run is written in every configured format.
func TestWrite(t *testing.T) {
	cfg := config.GetDefaultProjectConfig()
	cfg.Target.File = filepath.Join("..", "testdata", "targets.go")
	cfg.Target.Function = "Sign"
	cfg.Output.Formats = []string{}
	cfg.Logging.Level = zerolog.ErrorLevel

	generator, err := symbolic.NewGenerator(*cfg)
	require.NoError(t, err)
	defer generator.Close()
	results, err := generator.Run(context.Background())
	require.NoError(t, err)

	report := FromResults(results, Meta{File: cfg.Target.File, Backend: cfg.Solver.Backend})
	assert.EqualValues(t, "Sign", report.Target.Function)
	assert.EqualValues(t, 3, report.Summary.Paths)
	assert.EqualValues(t, 2, report.Summary.TestCases)
	assert.EqualValues(t, 1, report.Summary.DeadPaths)
	assert.EqualValues(t, results.RunID.String(), report.RunID)
	assert.True(t, report.Passed())

	output := config.OutputConfig{
		Directory: t.TempDir(),
		Formats:   config.SupportedOutputFormats,
	}
	var console bytes.Buffer
	written, err := Write(report, output, &console)
	require.NoError(t, err)
	assert.Contains(t, console.String(), "Function Sign (go)")

	for _, name := range []string{"report.txt", "report.json", "report.yaml", "report.cbor", "sign_symgen_test.go"} {
		path := filepath.Join(output.Directory, name)
		assert.Contains(t, written, path)
		assert.FileExists(t, path)
	}
	entries, err := os.ReadDir(filepath.Join(output.Directory, CasesDirectoryName))
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	read, err := ReadFromFile(filepath.Join(output.Directory, "report.cbor"))
	require.NoError(t, err)
	assert.Len(t, read.DeadPaths, 1)
}

// TestReplay verifies that the test cases of a report replay against their target, and that a changed target is
// detected.
func TestReplay(t *testing.T) {
	cfg := config.GetDefaultProjectConfig()
	cfg.Target.File = filepath.Join("..", "testdata", "targets.go")
	cfg.Target.Function = "Sign"
	cfg.Output.Formats = []string{}
	cfg.Logging.Level = zerolog.ErrorLevel

	generator, err := symbolic.NewGenerator(*cfg)
	require.NoError(t, err)
	defer generator.Close()
	results, err := generator.Run(context.Background())
	require.NoError(t, err)
	report := FromResults(results, Meta{File: cfg.Target.File, Backend: cfg.Solver.Backend})

	summary, err := report.Replay(context.Background(), "", cfg.Solver.IntWidth)
	require.NoError(t, err)
	assert.True(t, summary.Passed())
	assert.EqualValues(t, []string{replay.TreeReplayerName, replay.GoReplayerName}, summary.Replayers)

	// Flip the outer condition so both test cases take the other branch
	src, err := os.ReadFile(cfg.Target.File)
	require.NoError(t, err)
	changed := filepath.Join(t.TempDir(), "targets.go")
	require.NoError(t, os.WriteFile(changed, []byte(strings.Replace(string(src), "if x > 0 {", "if x <= 0 {", 1)), 0644))

	summary, err = report.Replay(context.Background(), changed, cfg.Solver.IntWidth)
	require.NoError(t, err)
	assert.False(t, summary.Passed())
	assert.Len(t, summary.Mismatches, 4)

	// A target with a different signature cannot be replayed
	report.Target.Function = "Distance"
	_, err = report.Replay(context.Background(), "", cfg.Solver.IntWidth)
	assert.Error(t, err)
}
