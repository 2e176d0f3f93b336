package smtlib

import (
	"context"
	"os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/crytic/symgen/logging"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/crytic/symgen/utils"
	"github.com/pkg/errors"
)

// Name is the backend name of the oracle.
const Name = "smtlib"

// Oracle is a types.Oracle which runs one solver process per query, writing the script to its standard input.
type Oracle struct {
	// command is the solver command line.
	command []string

	// logger describes the oracle's logger.
	logger *logging.Logger
}

// NewOracle creates an Oracle running the provided command line, e.g. "z3 -in -smt2".
func NewOracle(command []string) (*Oracle, error) {
	if len(command) == 0 || command[0] == "" {
		return nil, errors.New("the smtlib backend requires a solver command")
	}
	return &Oracle{
		command: append([]string(nil), command...),
		logger:  logging.GlobalLogger.NewSubLogger("service", logging.SOLVER_SERVICE),
	}, nil
}

// Name returns the name of the backend.
func (o *Oracle) Name() string {
	return Name
}

// Command returns the solver command line.
func (o *Oracle) Command() []string {
	return o.command
}

// Solve renders the query as an SMT-LIB2 script and runs the solver on it. The process is killed when the context is
// done.
func (o *Oracle) Solve(ctx context.Context, query *types.Query) (*types.OracleResult, error) {
	script, err := RenderScript(query)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, o.command[0], o.command[1:]...)
	cmd.Stdin = strings.NewReader(script)
	stdout, stderr, _, runErr := utils.RunCommandWithOutputAndError(cmd)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	// Solvers may exit with a failure code after reporting an error which still leaves a verdict, so the output is
	// checked first
	result, parseErr := ParseOutput(string(stdout), query.Vars)
	if parseErr == nil {
		return result, nil
	}
	o.logger.Debug("Could not parse the output of ", o.command[0], ": ", string(stdout), parseErr)
	if runErr != nil {
		return nil, errors.Wrapf(runErr, "solver %v failed: %v", o.command[0], strings.TrimSpace(string(stderr)))
	}
	return nil, parseErr
}

// versionRegexp matches the first semantic version in a solver's version banner.
var versionRegexp = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// Version runs the solver with --version and returns the version it reports.
func Version(ctx context.Context, command []string) (*semver.Version, error) {
	if len(command) == 0 {
		return nil, errors.New("no solver command provided")
	}
	cmd := exec.CommandContext(ctx, command[0], "--version")
	stdout, stderr, _, err := utils.RunCommandWithOutputAndError(cmd)
	if err != nil {
		return nil, errors.Wrapf(err, "could not run %v --version: %v", command[0], strings.TrimSpace(string(stderr)))
	}
	return ParseVersion(string(stdout))
}

// ParseVersion extracts the version from a solver's version banner, e.g. "Z3 version 4.12.2 - 64 bit".
func ParseVersion(banner string) (*semver.Version, error) {
	match := versionRegexp.FindString(banner)
	if match == "" {
		return nil, errors.Errorf("no version found in %q", strings.TrimSpace(banner))
	}
	return semver.NewVersion(match)
}
