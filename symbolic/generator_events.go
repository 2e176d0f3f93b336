package symbolic

import (
	"github.com/crytic/symgen/events"
)

// GeneratorEvents defines event emitters for a Generator.
type GeneratorEvents struct {
	// GenerationStarting emits events once the branch tree has been enumerated and path solving is about to begin.
	GenerationStarting events.EventEmitter[GenerationStartingEvent]

	// PathSolved emits events each time the verdict on a single path is known. Events are published from the
	// solving workers, so they arrive in completion order rather than traversal order.
	PathSolved events.EventEmitter[PathSolvedEvent]

	// GenerationFinished emits events when a run ends, successfully or not.
	GenerationFinished events.EventEmitter[GenerationFinishedEvent]
}

// GenerationStartingEvent describes an event where a Generator is about to solve the paths of its target.
type GenerationStartingEvent struct {
	// Generator represents the instance of the Generator for which the event occurred.
	Generator *Generator

	// Function is the name of the target function.
	Function string

	// Paths is the number of paths which will be solved.
	Paths int
}

// PathSolvedEvent describes an event where the verdict on a single path is known.
type PathSolvedEvent struct {
	// Result describes the verdict on the path.
	Result *PathResult
}

// GenerationFinishedEvent describes an event where a Generator run has ended.
type GenerationFinishedEvent struct {
	// Generator represents the instance of the Generator for which the event occurred.
	Generator *Generator

	// Results holds the results of the run, or nil if it failed.
	Results *Results

	// Err describes the error which ended the run, if any.
	Err error
}
