package journey

import (
	"errors"
	"fmt"

	dErrors "teacherid/pkg/domain-errors"
)

var (
	// ErrUnknownStep means the step is not part of the active journey. It is a
	// client error: the step reference was stale or tampered with.
	ErrUnknownStep = errors.New("unknown step")
	// ErrInaccessibleStep means a computed next or previous step failed its
	// access predicate. It is a graph authoring defect.
	ErrInaccessibleStep = errors.New("invalid navigation")
	// ErrNoReachableStep means no step of the graph is accessible.
	ErrNoReachableStep = errors.New("no reachable step")
	ErrNoPreviousStep  = errors.New("no previous step")
	// ErrUnsupportedOperation means the journey kind does not offer the operation.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

func unknownStepError(kind Kind, step Step) error {
	return dErrors.Wrap(ErrUnknownStep, dErrors.CodeBadRequest,
		fmt.Sprintf("step %s is not part of the %s journey", step, kind))
}

func inaccessibleStepError(kind Kind, from, to Step) error {
	return dErrors.Wrap(ErrInaccessibleStep, dErrors.CodeInternal,
		fmt.Sprintf("%s journey: step %s computed from %s is not accessible", kind, to, from))
}

func noReachableStepError(kind Kind) error {
	return dErrors.Wrap(ErrNoReachableStep, dErrors.CodeInternal,
		fmt.Sprintf("%s journey has no accessible step", kind))
}

func noPreviousStepError(kind Kind, step Step) error {
	return dErrors.Wrap(ErrNoPreviousStep, dErrors.CodeBadRequest,
		fmt.Sprintf("%s journey: step %s has no previous step", kind, step))
}

func unsupportedError(kind Kind, op string) error {
	return dErrors.Wrap(ErrUnsupportedOperation, dErrors.CodeBadRequest,
		fmt.Sprintf("%s is not supported by the %s journey", op, kind))
}
