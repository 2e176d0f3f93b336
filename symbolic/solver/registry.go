package solver

import (
	"time"

	"github.com/crytic/symgen/symbolic/config"
	"github.com/crytic/symgen/symbolic/solver/bitblast"
	"github.com/crytic/symgen/symbolic/solver/smtlib"
	"github.com/crytic/symgen/symbolic/solver/z3"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/pkg/errors"
)

// NewOracle creates the oracle backend named by the solver configuration.
func NewOracle(cfg config.SolverConfig) (types.Oracle, error) {
	switch cfg.Backend {
	case bitblast.Name, "":
		return bitblast.NewOracle(cfg.IntWidth)
	case smtlib.Name:
		return smtlib.NewOracle(cfg.Command)
	case z3.Name:
		return z3.NewOracle(time.Duration(cfg.Timeout) * time.Millisecond)
	default:
		return nil, errors.Errorf("unknown solver backend %q", cfg.Backend)
	}
}
