package replay

import (
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"strings"

	"github.com/crytic/symgen/logging"
	"github.com/crytic/symgen/symbolic/syntax"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/pkg/errors"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// GoReplayerName is the name of the GoReplayer.
const GoReplayerName = "go"

// harnessPackage is the package name the target source is interpreted under. Renaming the package keeps the
// interpreter from running the main function of a main package.
const harnessPackage = "symgentarget"

// bareReturnLabel is the outcome label of a return statement without results.
const bareReturnLabel = "return"

// GoReplayer replays test cases by interpreting the target source with yaegi and calling the target function with
// their inputs. The value returned is compared against the return statement of the recorded outcome, evaluated in the
// same scope. Only standard library imports are available to the target.
type GoReplayer struct {
	// src is the source of the file which declares the target.
	src []byte

	// fn is the parsed target function.
	fn *syntax.Function

	// logger describes the replayer's logger.
	logger *logging.Logger
}

// NewGoReplayer creates a GoReplayer for the provided Go source file and the target function parsed from it.
func NewGoReplayer(src []byte, fn *syntax.Function) *GoReplayer {
	return &GoReplayer{
		src:    src,
		fn:     fn,
		logger: logging.GlobalLogger.NewSubLogger("service", logging.REPLAY_SERVICE),
	}
}

// Name returns the name of the replayer.
func (r *GoReplayer) Name() string {
	return GoReplayerName
}

// replayCheck is the signature of a generated harness function: whether the outcome matched, then the actual and the
// expected results as text.
type replayCheck = func() (bool, string, string)

// Replay interprets the target together with one harness function per test case and runs each of them.
func (r *GoReplayer) Replay(ctx context.Context, testCases []*types.TestCase) ([]Mismatch, error) {
	if len(testCases) == 0 {
		return []Mismatch{}, nil
	}

	src, err := r.harnessSource(testCases)
	if err != nil {
		return nil, err
	}
	r.logger.Trace("Interpreting the replay harness:\n", src)

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, errors.Wrap(err, "could not load the standard library into the interpreter")
	}
	if _, err := i.EvalWithContext(ctx, src); err != nil {
		return nil, errors.Wrapf(err, "could not interpret the source of %v", r.fn.Name)
	}

	mismatches := make([]Mismatch, 0)
	for index, testCase := range testCases {
		mismatch := Mismatch{
			Replayer: GoReplayerName,
			PathID:   testCase.PathID,
			Inputs:   testCase.InputTuple(),
			Expected: testCase.Outcome,
		}

		value, err := i.EvalWithContext(ctx, fmt.Sprintf("%s.%s", harnessPackage, harnessFuncName(index)))
		if err != nil {
			return nil, errors.Wrapf(err, "could not resolve the harness of path #%d", testCase.PathID)
		}
		check, ok := value.Interface().(replayCheck)
		if !ok {
			return nil, errors.Errorf("the harness of path #%d has an unexpected type %v", testCase.PathID, value.Type())
		}

		matched, actual, expected, err := runCheck(ctx, check)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.WithStack(ctx.Err())
			}
			mismatch.Actual = err.Error()
			mismatches = append(mismatches, mismatch)
			continue
		}
		if !matched {
			mismatch.Expected = fmt.Sprintf("%s (%s)", strings.TrimSpace(expected), testCase.Outcome)
			mismatch.Actual = strings.TrimSpace(actual)
			mismatches = append(mismatches, mismatch)
		}
	}
	return mismatches, nil
}

// runCheck calls a harness function, turning a panic of the interpreted code into an error. A call which outlives the
// context is abandoned.
func runCheck(ctx context.Context, check replayCheck) (bool, string, string, error) {
	type checkResult struct {
		matched          bool
		actual, expected string
		err              error
	}
	done := make(chan checkResult, 1)
	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				done <- checkResult{err: errors.Errorf("panic: %v", recovered)}
			}
		}()
		matched, actual, expected := check()
		done <- checkResult{matched: matched, actual: actual, expected: expected}
	}()

	select {
	case result := <-done:
		return result.matched, result.actual, result.expected, result.err
	case <-ctx.Done():
		return false, "", "", errors.WithStack(ctx.Err())
	}
}

// harnessFuncName returns the name of the harness function of the test case at the provided index.
func harnessFuncName(index int) string {
	return fmt.Sprintf("SymgenReplay%d", index)
}

// harnessSource returns the target source, renamed into the harness package, followed by the harness functions.
func (r *GoReplayer) harnessSource(testCases []*types.TestCase) (string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", r.src, parser.PackageClauseOnly)
	if err != nil {
		return "", errors.WithStack(err)
	}
	start := fset.Position(file.Name.Pos()).Offset
	end := fset.Position(file.Name.End()).Offset

	var sb strings.Builder
	sb.Write(r.src[:start])
	sb.WriteString(harnessPackage)
	sb.WriteString("\n\nimport (\n\tsymgenfmt \"fmt\"\n\tsymgenreflect \"reflect\"\n)\n")
	sb.Write(r.src[end:])
	sb.WriteString("\n")

	for index, testCase := range testCases {
		if err := r.writeHarnessFunc(&sb, index, testCase); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// writeHarnessFunc writes the harness function of a single test case.
func (r *GoReplayer) writeHarnessFunc(sb *strings.Builder, index int, testCase *types.TestCase) error {
	assignment := testCase.Assignment()
	args := make([]string, len(r.fn.Params))

	fmt.Fprintf(sb, "\nfunc %s() (bool, string, string) {\n", harnessFuncName(index))
	for i, param := range r.fn.Params {
		value, err := assignment.Lookup(param.Name, param.Sort)
		if err != nil {
			return errors.Wrapf(err, "test case of path #%d", testCase.PathID)
		}
		fmt.Fprintf(sb, "\tvar %s %s = %s\n", param.Name, param.TypeText, value.String())
		args[i] = param.Name
	}
	call := fmt.Sprintf("%s(%s)", r.fn.Name, strings.Join(args, ", "))

	results := len(r.fn.ResultTypes)
	if results == 0 {
		fmt.Fprintf(sb, "\t%s\n\treturn true, \"\", \"\"\n}\n", call)
		return nil
	}

	got := make([]string, results)
	want := make([]string, results)
	equal := make([]string, results)
	for i := range got {
		got[i] = fmt.Sprintf("symgenGot%d", i)
		want[i] = fmt.Sprintf("symgenWant%d", i)
		equal[i] = fmt.Sprintf("symgenreflect.DeepEqual(%s, %s)", got[i], want[i])
	}
	fmt.Fprintf(sb, "\t%s := %s\n", strings.Join(got, ", "), call)

	// A bare return of named results has no expression to compare against
	if testCase.Outcome == bareReturnLabel {
		fmt.Fprintf(sb, "\treturn true, symgenfmt.Sprintln(%s), \"\"\n}\n", strings.Join(got, ", "))
		return nil
	}

	fmt.Fprintf(sb, "\t%s := func() (%s) { return %s }()\n", strings.Join(want, ", "), strings.Join(r.fn.ResultTypes, ", "), testCase.Outcome)
	fmt.Fprintf(sb, "\treturn %s, symgenfmt.Sprintln(%s), symgenfmt.Sprintln(%s)\n}\n",
		strings.Join(equal, " && "), strings.Join(got, ", "), strings.Join(want, ", "))
	return nil
}
