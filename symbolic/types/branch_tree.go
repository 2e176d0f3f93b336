// Package types defines the data model shared by the generator stages: predicates, the branch tree, paths, path
// conditions, test cases, and the contract satisfiability oracles implement.
package types

import (
	"fmt"

	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/symbolic/syntax"
)

// Predicate describes a branch condition of the target function. It is tagged with an identifier derived from its
// position in the branch tree, so the same target always yields the same identifiers.
type Predicate struct {
	// ID is the 1-based position of the predicate in a pre-order traversal of the branch tree.
	ID int

	// Expr is the structured boolean expression of the condition.
	Expr expr.Expr

	// Text is the condition as written in the source.
	Text string

	// Position is the location of the conditional in the source.
	Position syntax.Position
}

// Label returns the stable label of the predicate, e.g. "branch #3".
func (p *Predicate) Label() string {
	return fmt.Sprintf("branch #%d", p.ID)
}

// String returns the label and source text of the predicate.
func (p *Predicate) String() string {
	return fmt.Sprintf("%s (%s)", p.Label(), p.Text)
}

// Node is a node of the branch tree. The set of implementations is closed: *BranchNode and *Outcome.
type Node interface {
	// Leaves returns the number of outcomes reachable from this node.
	Leaves() int

	treeNode()
}

// BranchNode describes one conditional of the target function.
type BranchNode struct {
	// Predicate is the condition tested by this node.
	Predicate *Predicate

	// Then is the subtree executed when the predicate holds.
	Then Node

	// Else is the subtree executed when the predicate does not hold.
	Else Node
}

// Outcome describes a terminal return of the target function.
type Outcome struct {
	// Label is the returned expression as written in the source.
	Label string

	// Value is the returned value as an expression, or nil if it could not be translated.
	Value expr.Expr

	// DependsOnInputs indicates whether the returned value refers to any input.
	DependsOnInputs bool

	// Implicit indicates that the outcome is reached by falling off the end of the function.
	Implicit bool

	// Position is the location of the return in the source.
	Position syntax.Position
}

func (*BranchNode) treeNode() {}
func (*Outcome) treeNode()    {}

// Leaves returns the number of outcomes reachable from this node.
func (b *BranchNode) Leaves() int {
	return b.Then.Leaves() + b.Else.Leaves()
}

// Leaves returns one, as an Outcome is itself a leaf.
func (*Outcome) Leaves() int {
	return 1
}

// Predicates returns every predicate in the tree rooted at n, in pre-order with the then-subtree visited before the
// else-subtree.
func Predicates(n Node) []*Predicate {
	predicates := make([]*Predicate, 0)
	var walk func(Node)
	walk = func(n Node) {
		if b, ok := n.(*BranchNode); ok {
			predicates = append(predicates, b.Predicate)
			walk(b.Then)
			walk(b.Else)
		}
	}
	walk(n)
	return predicates
}
