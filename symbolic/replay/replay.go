// Package replay verifies generated test cases by feeding their inputs back through the target and checking that the
// recorded outcome is reached.
package replay

import (
	"context"
	"fmt"

	"github.com/crytic/symgen/logging"
	"github.com/crytic/symgen/logging/colors"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/crytic/symgen/utils"
	"github.com/pkg/errors"
)

// Replayer runs test cases against some rendition of the target.
type Replayer interface {
	// Name identifies the replayer in mismatch reports.
	Name() string

	// Replay runs every test case and returns one Mismatch for each which did not reach its recorded outcome. An
	// error is returned only if the replayer could not run at all.
	Replay(ctx context.Context, testCases []*types.TestCase) ([]Mismatch, error)
}

// Mismatch describes a test case which did not reach its recorded outcome.
type Mismatch struct {
	// Replayer is the name of the replayer which observed the mismatch.
	Replayer string `json:"replayer" yaml:"replayer" cbor:"replayer"`

	// PathID is the identifier of the path the test case targets.
	PathID int `json:"pathId" yaml:"pathId" cbor:"pathId"`

	// Inputs is the input tuple of the test case.
	Inputs string `json:"inputs" yaml:"inputs" cbor:"inputs"`

	// Expected describes the recorded outcome.
	Expected string `json:"expected" yaml:"expected" cbor:"expected"`

	// Actual describes what replaying the inputs produced.
	Actual string `json:"actual" yaml:"actual" cbor:"actual"`
}

// String returns a single line description of the mismatch.
func (m Mismatch) String() string {
	return fmt.Sprintf("[%s] path #%d (%s): expected %s, got %s", m.Replayer, m.PathID, m.Inputs, m.Expected, m.Actual)
}

// Summary describes the outcome of replaying a set of test cases.
type Summary struct {
	// Replayers names the replayers which ran.
	Replayers []string `json:"replayers" yaml:"replayers" cbor:"replayers"`

	// Replayed is the number of test cases replayed by each replayer.
	Replayed int `json:"replayed" yaml:"replayed" cbor:"replayed"`

	// Mismatches lists the test cases which did not reach their recorded outcome.
	Mismatches []Mismatch `json:"mismatches" yaml:"mismatches" cbor:"mismatches"`

	// Skipped maps the name of each replayer which could not run to the reason.
	Skipped map[string]string `json:"skipped,omitempty" yaml:"skipped,omitempty" cbor:"skipped,omitempty"`
}

// Passed indicates whether every test case reached its recorded outcome.
func (s *Summary) Passed() bool {
	return len(s.Mismatches) == 0
}

// Verify runs every test case through each replayer in turn. A replayer which cannot run is recorded as skipped; only
// cancellation of the context fails the verification.
func Verify(ctx context.Context, testCases []*types.TestCase, replayers ...Replayer) (*Summary, error) {
	logger := logging.GlobalLogger.NewSubLogger("service", logging.REPLAY_SERVICE)
	summary := &Summary{
		Replayers:  make([]string, 0, len(replayers)),
		Replayed:   len(testCases),
		Mismatches: make([]Mismatch, 0),
		Skipped:    make(map[string]string),
	}
	for _, replayer := range replayers {
		if utils.CheckContextDone(ctx) {
			return nil, errors.WithStack(ctx.Err())
		}
		mismatches, err := replayer.Replay(ctx, testCases)
		if ctx.Err() != nil {
			return nil, errors.WithStack(ctx.Err())
		}
		if err != nil {
			logger.Warn("Could not replay test cases with the ", replayer.Name(), " replayer", err)
			summary.Skipped[replayer.Name()] = err.Error()
			continue
		}
		summary.Replayers = append(summary.Replayers, replayer.Name())
		summary.Mismatches = append(summary.Mismatches, mismatches...)

		if len(mismatches) == 0 {
			logger.Info("Replayed ", len(testCases), " test case(s) with the ", replayer.Name(), " replayer: ", colors.GreenBold, "all passed", colors.Reset)
			continue
		}
		buffer := logging.NewLogBuffer()
		buffer.Append(colors.Red, len(mismatches), " of ", len(testCases), " test case(s) did not replay to their outcome with the ", replayer.Name(), " replayer", colors.Reset)
		for _, mismatch := range mismatches {
			buffer.Append("\n  ", colors.Bold, "- ", colors.Reset, mismatch.String())
		}
		logger.Warn(buffer)
	}
	return summary, nil
}
