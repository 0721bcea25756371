// Package journey implements the sign-in step graphs.
//
// A Journey wraps one AuthenticationState value and one journey kind. Queries
// (CanAccessStep, NextStep, LastAccessibleStepURL, ...) are pure functions of
// the two. Operations that perform I/O (Advance, CreateUser, OnEmailVerified,
// ...) never mutate the journey they are called on; they return an Outcome
// carrying the updated state for the caller to persist.
package journey

import (
	"fmt"
	"log/slog"

	"teacherid/internal/signin/metrics"
	"teacherid/internal/signin/models"
)

// Deps are the collaborators a journey calls out to.
type Deps struct {
	Links    LinkResolver
	Lookup   TrnLookuper
	Users    UserRepository
	Sessions SessionEstablisher
	Tickets  TicketRaiser
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// Outcome is the result of an operation: the state to save and where to send
// the user. Forbidden outcomes leave State as it was.
type Outcome struct {
	State       models.AuthenticationState
	RedirectURL string
	Forbidden   bool
}

// Journey is an immutable pairing of a journey kind with a state.
type Journey struct {
	kind  Kind
	graph graph
	state models.AuthenticationState
	deps  Deps
}

// New builds a journey of the given kind.
func New(kind Kind, state models.AuthenticationState, deps Deps) (Journey, error) {
	g, ok := graphFor(kind)
	if !ok {
		return Journey{}, fmt.Errorf("journey kind %d: %w", int(kind), ErrUnsupportedOperation)
	}
	return Journey{kind: kind, graph: g, state: state, deps: deps}, nil
}

func (j Journey) Kind() Kind                        { return j.kind }
func (j Journey) State() models.AuthenticationState { return j.state }

// with returns a copy of the journey over st.
func (j Journey) with(st models.AuthenticationState) Journey {
	j.state = st
	return j
}

// HasStep reports whether step belongs to this journey kind.
func (j Journey) HasStep(step Step) bool { return j.graph.has(step) }

// Steps returns the steps of this journey kind.
func (j Journey) Steps() []Step {
	return append([]Step(nil), j.graph.steps...)
}

func (j Journey) StartStep() Step { return j.graph.start }

func (j Journey) StartStepURL() string {
	return j.deps.Links.StepURL(j.kind, j.graph.start, j.state.JourneyID)
}

// StepURL resolves step through the link resolver.
func (j Journey) StepURL(step Step) (string, error) {
	if !j.graph.has(step) {
		return "", unknownStepError(j.kind, step)
	}
	return j.deps.Links.StepURL(j.kind, step, j.state.JourneyID), nil
}

// NextStep returns the step after current; StepNone at the logical end.
func (j Journey) NextStep(current Step) (Step, error) {
	if !j.graph.has(current) {
		return StepNone, unknownStepError(j.kind, current)
	}
	return j.graph.next(current, j.state), nil
}

// PreviousStep returns the step the user must have come through to reach
// current, or StepNone when there is none.
func (j Journey) PreviousStep(current Step) (Step, error) {
	if !j.graph.has(current) {
		return StepNone, unknownStepError(j.kind, current)
	}
	return j.graph.previous(current, j.state), nil
}

// CanAccessStep reports whether the state allows step. Unknown steps are
// never accessible.
func (j Journey) CanAccessStep(step Step) bool {
	return j.graph.has(step) && j.graph.access(step, j.state)
}

// IsFinished reports whether this kind's own graph is exhausted.
func (j Journey) IsFinished() bool { return j.graph.finished(j.state) }

// IsCompleted additionally requires that no verification-level elevation is
// still outstanding.
func (j Journey) IsCompleted() bool {
	if j.kind == KindElevateTrnVerificationLevel {
		return j.IsFinished()
	}
	return j.IsFinished() && !j.state.RequiresTrnVerificationLevelElevation()
}

// completionURL is where a finished journey sends the user: the elevation
// hand-off if one is outstanding, otherwise back to the client.
func (j Journey) completionURL() string {
	if j.kind != KindElevateTrnVerificationLevel && j.state.RequiresTrnVerificationLevelElevation() {
		return j.deps.Links.StepURL(KindElevateTrnVerificationLevel, elevateGraph.start, j.state.JourneyID)
	}
	return j.state.PostSignInURL
}

// NextStepURL returns the URL of the step after current. The computed step
// must be accessible; an inaccessible one is a graph defect.
func (j Journey) NextStepURL(current Step) (string, error) {
	if !j.graph.has(current) {
		return "", unknownStepError(j.kind, current)
	}
	if j.IsFinished() {
		return j.completionURL(), nil
	}
	next := j.graph.next(current, j.state)
	if next == StepNone || !j.graph.access(next, j.state) {
		return "", inaccessibleStepError(j.kind, current, next)
	}
	return j.deps.Links.StepURL(j.kind, next, j.state.JourneyID), nil
}

// PreviousStepURL returns the URL of the step before current.
func (j Journey) PreviousStepURL(current Step) (string, error) {
	if !j.graph.has(current) {
		return "", unknownStepError(j.kind, current)
	}
	prev := j.graph.previous(current, j.state)
	if prev == StepNone {
		return "", noPreviousStepError(j.kind, current)
	}
	if !j.graph.access(prev, j.state) {
		return "", inaccessibleStepError(j.kind, current, prev)
	}
	return j.deps.Links.StepURL(j.kind, prev, j.state.JourneyID), nil
}

// TryPreviousStepURL is PreviousStepURL for callers that render a back link
// only when one exists.
func (j Journey) TryPreviousStepURL(current Step) (string, bool) {
	url, err := j.PreviousStepURL(current)
	if err != nil {
		return "", false
	}
	return url, true
}

// LastAccessibleStepURL finds where to send a user who asked for a step they
// cannot access. It walks forward from the start to the terminal step under
// the current state, then back until a step is accessible. The requested
// step plays no part in the walk.
func (j Journey) LastAccessibleStepURL(requested Step) (string, error) {
	if j.IsFinished() {
		return j.completionURL(), nil
	}

	seen := map[Step]bool{j.graph.start: true}
	terminal := j.graph.start
	for {
		next := j.graph.next(terminal, j.state)
		if next == StepNone || seen[next] {
			break
		}
		seen[next] = true
		terminal = next
	}

	visited := map[Step]bool{}
	for step := terminal; step != StepNone && !visited[step]; step = j.graph.previous(step, j.state) {
		visited[step] = true
		if j.graph.access(step, j.state) {
			return j.deps.Links.StepURL(j.kind, step, j.state.JourneyID), nil
		}
	}

	j.deps.logger().Error("journey has no accessible step",
		"journey_id", j.state.JourneyID,
		"journey_kind", j.kind.String(),
		"requested_step", requested.String(),
		"terminal_step", terminal.String(),
	)
	return "", noReachableStepError(j.kind)
}
