// Package z3 provides an oracle which decides queries with an in-process z3 solver. The solver requires cgo and the
// z3 library, and is only built with the z3 build tag.
package z3

// Name is the backend name of the oracle.
const Name = "z3"
