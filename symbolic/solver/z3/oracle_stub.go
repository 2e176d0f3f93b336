//go:build !z3

package z3

import (
	"context"
	"time"

	"github.com/crytic/symgen/symbolic/types"
	"github.com/pkg/errors"
)

// Available indicates whether the binary was built with z3 support.
const Available = false

// errUnavailable is returned when the binary was built without the z3 build tag.
var errUnavailable = errors.New("symgen was built without z3 support, rebuild with -tags z3")

// Oracle is unavailable without the z3 build tag.
type Oracle struct{}

// NewOracle always fails without the z3 build tag.
func NewOracle(timeout time.Duration) (*Oracle, error) {
	return nil, errUnavailable
}

// Name returns the name of the backend.
func (o *Oracle) Name() string {
	return Name
}

// Solve always fails without the z3 build tag.
func (o *Oracle) Solve(ctx context.Context, query *types.Query) (*types.OracleResult, error) {
	return nil, errUnavailable
}
