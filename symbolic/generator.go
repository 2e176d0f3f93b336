// Package symbolic implements the generator pipeline: it extracts the branch tree of a target function, enumerates its
// paths, solves every path condition and synthesizes one test case per satisfiable path.
package symbolic

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/crytic/symgen/logging"
	"github.com/crytic/symgen/logging/colors"
	"github.com/crytic/symgen/symbolic/config"
	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/symbolic/extraction"
	"github.com/crytic/symgen/symbolic/frontend"
	"github.com/crytic/symgen/symbolic/frontend/golang"
	"github.com/crytic/symgen/symbolic/paths"
	"github.com/crytic/symgen/symbolic/replay"
	"github.com/crytic/symgen/symbolic/solver"
	"github.com/crytic/symgen/symbolic/solver/cache"
	"github.com/crytic/symgen/symbolic/solver/smtlib"
	"github.com/crytic/symgen/symbolic/syntax"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/crytic/symgen/utils"
	"github.com/pkg/errors"
)

// versionCheckTimeout bounds the query of an external solver's version.
const versionCheckTimeout = 5 * time.Second

// Generator runs the generation pipeline on the target of a project configuration.
type Generator struct {
	// config describes the project configuration which the generator is targeting.
	config config.ProjectConfig

	// frontend parses the target source and domain constraints.
	frontend frontend.Frontend

	// adapter submits path conditions to the configured oracle.
	adapter *solver.Adapter

	// cache is the persistent oracle cache, or nil if none is configured.
	cache *cache.Oracle

	// logFile is the structured log file of the run, or nil if none is kept.
	logFile *os.File

	// logger describes the generator's logger.
	logger *logging.Logger

	// Events describes the event system for the Generator.
	Events GeneratorEvents
}

// NewGenerator returns an instance of a new Generator provided a project configuration, or an error if one is
// encountered while initializing the code.
func NewGenerator(cfg config.ProjectConfig) (*Generator, error) {
	// Validate our provided config
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	// Setup the global logger before creating any component, since each takes a sub-logger from it
	logging.GlobalLogger.SetLevel(cfg.Logging.Level)
	logging.GlobalLogger.AddWriter(os.Stdout, logging.UNSTRUCTURED, !cfg.Logging.NoColor)
	var logFile *os.File
	if cfg.Logging.LogDirectory != "" {
		logFile, err = utils.CreateFile(cfg.Logging.LogDirectory, fmt.Sprintf("log-%d.log", time.Now().Unix()))
		if err != nil {
			return nil, err
		}
		logging.GlobalLogger.AddWriter(logFile, logging.STRUCTURED, false)
	}

	generator := &Generator{
		config:  cfg,
		logFile: logFile,
		logger:  logging.GlobalLogger.NewSubLogger("service", logging.GENERATOR_SERVICE),
	}

	// Resolve the frontend of the target
	generator.frontend, err = frontend.ForFile(cfg.Target.File, cfg.Target.Language, cfg.Solver.IntWidth)
	if err != nil {
		generator.closeLogFile()
		return nil, err
	}

	// Create the oracle, backed by the persistent cache if one is configured
	oracle, err := solver.NewOracle(cfg.Solver)
	if err != nil {
		generator.closeLogFile()
		return nil, err
	}
	if cfg.Solver.CacheDirectory != "" {
		generator.cache, err = cache.NewOracleForWidth(oracle, cfg.Solver.CacheDirectory, cfg.Solver.IntWidth)
		if err != nil {
			generator.closeLogFile()
			return nil, err
		}
		oracle = generator.cache
	}
	generator.adapter = solver.NewAdapter(oracle, solver.Options{Timeout: time.Duration(cfg.Solver.Timeout) * time.Millisecond})

	generator.Events.PathSolved.Subscribe(generator.onPathSolved)
	return generator, nil
}

// Config exposes the underlying project configuration provided to the Generator.
func (g *Generator) Config() config.ProjectConfig {
	return g.config
}

// Frontend returns the frontend used to parse the target.
func (g *Generator) Frontend() frontend.Frontend {
	return g.frontend
}

// CacheStats returns the number of oracle cache hits and misses so far. Both are zero if no cache is configured.
func (g *Generator) CacheStats() (hits uint64, misses uint64) {
	if g.cache == nil {
		return 0, 0
	}
	return g.cache.Stats()
}

// Run executes the pipeline on the configured target and returns its results. An *extraction.UnsupportedConstructError
// is returned if the target uses a construct outside the supported subset; solver failures on individual paths are
// part of the results instead.
func (g *Generator) Run(ctx context.Context) (*Results, error) {
	results, err := g.run(ctx)
	publishErr := g.Events.GenerationFinished.Publish(GenerationFinishedEvent{Generator: g, Results: results, Err: err})
	if err != nil {
		return nil, err
	}
	if publishErr != nil {
		return nil, publishErr
	}
	return results, nil
}

func (g *Generator) run(ctx context.Context) (*Results, error) {
	start := time.Now()

	// Read and parse the target
	src, err := os.ReadFile(g.config.Target.File)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	fn, err := g.frontend.ParseFunction(src, g.config.Target.Function)
	if err != nil {
		return nil, err
	}
	g.logger.Info("Extracting the branch conditions of ", colors.Bold, fn.Name, colors.Reset, " in ", g.config.Target.File, " (", fn.Language, ")")

	// Build the branch tree and enumerate its paths
	root, err := extraction.Extract(fn, extraction.Options{MaxPaths: g.config.Generation.MaxPaths})
	if err != nil {
		return nil, err
	}
	enumerated := paths.Enumerate(root)
	g.logger.Info("Found ", len(types.Predicates(root)), " branch(es) and ", colors.Bold, len(enumerated), " path(s)", colors.Reset)

	domain, err := g.parseDomainConstraints(fn.Params)
	if err != nil {
		return nil, err
	}

	if g.config.Solver.Backend == smtlib.Name {
		g.logSolverVersion(ctx)
	}

	err = g.Events.GenerationStarting.Publish(GenerationStartingEvent{Generator: g, Function: fn.Name, Paths: len(enumerated)})
	if err != nil {
		return nil, err
	}

	// Solve every path
	synthesizer := NewSynthesizer(g.adapter, fn.Params, SynthesizerOptions{
		Workers:    g.config.Generation.Workers,
		PathSolved: &g.Events.PathSolved,
	})
	results := synthesizer.Synthesize(ctx, enumerated, domain)
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	results.Function = fn
	results.Tree = root

	// Replay the test cases through the branch tree and, for Go targets, the interpreted source
	if g.config.Generation.Verify {
		replayers := []replay.Replayer{replay.NewTreeReplayer(root)}
		if fn.Language == golang.Language {
			replayers = append(replayers, replay.NewGoReplayer(src, fn))
		}
		results.Verification, err = replay.Verify(ctx, results.TestCases, replayers...)
		if err != nil {
			return nil, err
		}
	}

	results.Duration = time.Since(start)
	satisfiable, unsatisfiable, failed := results.Counts()
	g.logger.Info("Generated ", colors.Bold, satisfiable, " test case(s)", colors.Reset, " in ", results.Duration.Round(time.Millisecond),
		": ", unsatisfiable, " dead path(s), ", failed, " failed path(s)")
	return results, nil
}

// parseDomainConstraints parses the configured domain constraints, which must be boolean expressions over the
// parameters of the target.
func (g *Generator) parseDomainConstraints(params []syntax.Param) ([]expr.Expr, error) {
	domain := make([]expr.Expr, 0, len(g.config.Generation.DomainConstraints))
	for _, text := range g.config.Generation.DomainConstraints {
		constraint, err := g.frontend.ParseExpr(text, params)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid domain constraint %q", text)
		}
		if err := expr.TypeCheck(constraint); err != nil || constraint.Sort() != expr.SortBool {
			return nil, errors.Errorf("domain constraint %q is not a boolean expression", text)
		}
		domain = append(domain, constraint)
	}
	return domain, nil
}

// logSolverVersion logs the version of the external solver. Failing to obtain it is not an error, since not every
// solver supports --version.
func (g *Generator) logSolverVersion(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, versionCheckTimeout)
	defer cancel()
	v, err := smtlib.Version(ctx, g.config.Solver.Command)
	if err != nil {
		g.logger.Debug("Could not determine the version of ", filepath.Base(g.config.Solver.Command[0]), err)
		return
	}
	g.logger.Info("Using ", filepath.Base(g.config.Solver.Command[0]), " version ", v.String())
}

// onPathSolved logs the verdict on a single path.
func (g *Generator) onPathSolved(event PathSolvedEvent) error {
	result := event.Result
	switch result.Status {
	case PathSatisfiable:
		g.logger.Info("Path #", result.Path.ID, " ", colors.Green, "satisfiable", colors.Reset, ": ", result.TestCase.InputTuple(), " -> ", result.Path.Outcome.Label)
	case PathUnsatisfiable:
		g.logger.Info("Path #", result.Path.ID, " ", colors.Yellow, "unsatisfiable", colors.Reset, ": ", result.Condition.String())
	case PathSolverError:
		g.logger.Warn("Path #", result.Path.ID, " ", colors.Red, "failed", colors.Reset, ": ", result.Condition.String(), result.Err)
	}
	return nil
}

// Close releases the oracle cache and the log file.
func (g *Generator) Close() error {
	var err error
	if g.cache != nil {
		hits, misses := g.cache.Stats()
		g.logger.Debug("Solver cache: ", hits, " hit(s), ", misses, " miss(es)")
		err = g.cache.Close()
		g.cache = nil
	}
	g.closeLogFile()
	return err
}

// closeLogFile detaches the log file from the global logger and closes it.
func (g *Generator) closeLogFile() {
	if g.logFile == nil {
		return
	}
	logging.GlobalLogger.RemoveWriter(g.logFile, logging.STRUCTURED, false)
	_ = g.logFile.Close()
	g.logFile = nil
}
