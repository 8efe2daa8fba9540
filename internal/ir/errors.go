package ir

import "fmt"

// ValidationError reports a malformed raw signal sequence. Index is the
// offending position, or -1 when the problem concerns the whole sequence.
type ValidationError struct {
	Reason string
	Index  int
}

func (e *ValidationError) Error() string {
	return "invalid signal sequence: " + e.Reason
}

// ClassificationError reports a signal whose length falls inside no known
// class of its kind. This is expected when normalizing one command's capture
// against classes built from a different capture or tolerance; the caller
// decides whether to recapture, widen the tolerance, or give up.
type ClassificationError struct {
	Signal Signal
	Index  int
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("no %s class contains %s at position %d",
		e.Signal.Kind, e.Signal, e.Index)
}
