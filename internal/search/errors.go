package search

import (
	"errors"
	"fmt"
)

// ErrEmptyPopulation is returned by Population.Best before any successful
// evaluation has been admitted.
var ErrEmptyPopulation = errors.New("population has no evaluated members")

// ConsistencyError marks a structurally malformed configuration. It signals
// a generator or controller bug and aborts the run; it is never recovered
// from.
type ConsistencyError struct {
	Reason string
}

func (e *ConsistencyError) Error() string {
	return "configuration consistency violation: " + e.Reason
}

func consistencyf(format string, args ...any) *ConsistencyError {
	return &ConsistencyError{Reason: fmt.Sprintf(format, args...)}
}

// FailureKind classifies an evaluation failure.
type FailureKind string

const (
	FailureNonConvergence FailureKind = "non_convergence"
	FailureTimeout        FailureKind = "timeout"
	FailureResource       FailureKind = "resource_error"
	FailureMalformedInput FailureKind = "malformed_input"
)

// EvalError is the error contract of the external evaluator. Individual
// evaluation failures are expected and non-fatal; the scheduler retries
// them before marking the configuration permanently failed.
type EvalError struct {
	Kind FailureKind
	Err  error
}

func (e *EvalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("evaluation failed: %s", e.Kind)
	}
	return fmt.Sprintf("evaluation failed (%s): %v", e.Kind, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// failureKindOf maps an evaluator error onto its kind, defaulting to a
// resource error for errors outside the EvalError contract.
func failureKindOf(err error) FailureKind {
	var evalErr *EvalError
	if errors.As(err, &evalErr) {
		return evalErr.Kind
	}
	return FailureResource
}
