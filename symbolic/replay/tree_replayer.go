package replay

import (
	"context"
	"fmt"

	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/symbolic/paths"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/pkg/errors"
)

// TreeReplayerName is the name of the TreeReplayer.
const TreeReplayerName = "tree"

// TreeReplayer replays test cases by evaluating the predicates of the branch tree under their inputs. It checks the
// model the test cases were generated from, independently of the oracle which produced them.
type TreeReplayer struct {
	// root is the root of the branch tree.
	root types.Node

	// pathIDs maps every leaf of the tree to the identifier of the path which ends in it.
	pathIDs map[*types.Outcome]int
}

// NewTreeReplayer creates a TreeReplayer for the provided branch tree.
func NewTreeReplayer(root types.Node) *TreeReplayer {
	pathIDs := make(map[*types.Outcome]int)
	for path := range paths.All(root) {
		pathIDs[path.Outcome] = path.ID
	}
	return &TreeReplayer{root: root, pathIDs: pathIDs}
}

// Name returns the name of the replayer.
func (r *TreeReplayer) Name() string {
	return TreeReplayerName
}

// Replay walks the branch tree once per test case and checks that the reached leaf ends the targeted path, and that
// the value it returns matches the recorded one.
func (r *TreeReplayer) Replay(ctx context.Context, testCases []*types.TestCase) ([]Mismatch, error) {
	mismatches := make([]Mismatch, 0)
	for _, testCase := range testCases {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}

		mismatch := Mismatch{
			Replayer: TreeReplayerName,
			PathID:   testCase.PathID,
			Inputs:   testCase.InputTuple(),
			Expected: fmt.Sprintf("path #%d (%s)", testCase.PathID, testCase.Outcome),
		}

		assignment := testCase.Assignment()
		leaf, err := r.walk(assignment)
		if err != nil {
			mismatch.Actual = "error: " + err.Error()
			mismatches = append(mismatches, mismatch)
			continue
		}

		if id := r.pathIDs[leaf]; id != testCase.PathID {
			mismatch.Actual = fmt.Sprintf("path #%d (%s)", id, leaf.Label)
			mismatches = append(mismatches, mismatch)
			continue
		}

		if testCase.Expected != nil && leaf.Value != nil {
			value, err := expr.Eval(leaf.Value, assignment)
			if err != nil {
				mismatch.Expected = testCase.Expected.String()
				mismatch.Actual = "error: " + err.Error()
				mismatches = append(mismatches, mismatch)
			} else if value != *testCase.Expected {
				mismatch.Expected = testCase.Expected.String()
				mismatch.Actual = value.String()
				mismatches = append(mismatches, mismatch)
			}
		}
	}
	return mismatches, nil
}

// walk returns the leaf reached by the provided inputs.
func (r *TreeReplayer) walk(assignment expr.Assignment) (*types.Outcome, error) {
	node := r.root
	for {
		switch n := node.(type) {
		case *types.Outcome:
			return n, nil
		case *types.BranchNode:
			taken, err := expr.EvalBool(n.Predicate.Expr, assignment)
			if err != nil {
				return nil, errors.Wrapf(err, "could not evaluate %v", n.Predicate)
			}
			if taken {
				node = n.Then
			} else {
				node = n.Else
			}
		default:
			return nil, errors.Errorf("unexpected branch tree node %T", node)
		}
	}
}
