package report

import (
	"context"
	"os"

	"github.com/crytic/symgen/symbolic/extraction"
	"github.com/crytic/symgen/symbolic/frontend"
	"github.com/crytic/symgen/symbolic/frontend/golang"
	"github.com/crytic/symgen/symbolic/replay"
	"github.com/pkg/errors"
)

// Replay re-extracts the branch tree of the report's target from the provided source file and replays every recorded
// test case through it, and through the interpreted source for Go targets. If file is empty, the file recorded in the
// report is used. intWidth is the bit width of integer parameters without a fixed-width type.
func (r *Report) Replay(ctx context.Context, file string, intWidth int) (*replay.Summary, error) {
	if file == "" {
		file = r.Target.File
	}

	fe, err := frontend.ForFile(file, r.Target.Language, intWidth)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	fn, err := fe.ParseFunction(src, r.Target.Function)
	if err != nil {
		return nil, err
	}
	if len(fn.Params) != len(r.Target.Params) {
		return nil, errors.Errorf("%v takes %d parameter(s) but the report records %d", fn.Name, len(fn.Params), len(r.Target.Params))
	}
	root, err := extraction.Extract(fn, extraction.Options{})
	if err != nil {
		return nil, err
	}

	replayers := []replay.Replayer{replay.NewTreeReplayer(root)}
	if fn.Language == golang.Language {
		replayers = append(replayers, replay.NewGoReplayer(src, fn))
	}
	return replay.Verify(ctx, r.TestCases, replayers...)
}
