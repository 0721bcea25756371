// Package service runs journey operations against stored state.
//
// Every operation loads the state, materializes the journey that owns it,
// runs one journey operation and saves the result. Saves are optimistic; a
// concurrent write from another request surfaces as CodeConflict.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"teacherid/internal/signin/journey"
	"teacherid/internal/signin/metrics"
	"teacherid/internal/signin/models"
	id "teacherid/pkg/domain"
	dErrors "teacherid/pkg/domain-errors"
	"teacherid/pkg/platform/sentinel"
	"teacherid/pkg/requestcontext"
)

// Service orchestrates sign-in journeys.
type Service struct {
	states   StateStore
	accounts AccountFinder
	deps     journey.Deps
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service. deps are handed to every journey it builds; a
// logger or metrics option also fills the matching deps field when unset.
func New(states StateStore, accounts AccountFinder, deps journey.Deps, opts ...Option) *Service {
	s := &Service{states: states, accounts: accounts, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if deps.Logger == nil {
		deps.Logger = s.logger
	}
	if deps.Metrics == nil {
		deps.Metrics = s.metrics
	}
	s.deps = deps
	return s
}

// Start opens a journey for an authorization request and returns the URL of
// its first step.
func (s *Service) Start(ctx context.Context, oauth models.OAuthContext, postSignInURL string) (journey.Outcome, error) {
	if strings.TrimSpace(oauth.ClientID) == "" {
		return journey.Outcome{}, dErrors.New(dErrors.CodeValidation, "client_id is required")
	}
	if strings.TrimSpace(postSignInURL) == "" {
		return journey.Outcome{}, dErrors.New(dErrors.CodeValidation, "post sign-in url is required")
	}

	st := models.NewAuthenticationState(id.NewJourneyID(), oauth, postSignInURL, requestcontext.Now(ctx))
	ctx = requestcontext.WithJourneyID(ctx, st.JourneyID)
	saved, err := s.save(ctx, st)
	if err != nil {
		return journey.Outcome{}, err
	}
	j := journey.Materialize(saved, s.deps)
	s.logger.InfoContext(ctx, "journey started",
		"journey_id", saved.JourneyID.String(),
		"journey_kind", j.Kind().String(),
		"client_id", oauth.ClientID,
		"client_ip", requestcontext.ClientIP(ctx),
		"user_agent", requestcontext.UserAgent(ctx),
		"device", requestcontext.Device(ctx),
	)
	return journey.Outcome{State: saved, RedirectURL: j.StartStepURL()}, nil
}

// Get returns the live journey for journeyID.
func (s *Service) Get(ctx context.Context, journeyID id.JourneyID) (journey.Journey, error) {
	st, err := s.states.Load(ctx, journeyID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return journey.Journey{}, dErrors.Wrap(err, dErrors.CodeNotFound, "journey not found")
	case errors.Is(err, sentinel.ErrExpired):
		return journey.Journey{}, dErrors.Wrap(err, dErrors.CodeNotFound, "journey has expired")
	case err != nil:
		return journey.Journey{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load journey")
	}
	return journey.Materialize(st, s.deps), nil
}

// Record applies the answer given at step and advances past it.
func (s *Service) Record(ctx context.Context, journeyID id.JourneyID, step journey.Step, apply func(models.AuthenticationState) (models.AuthenticationState, error)) (journey.Outcome, error) {
	return s.run(ctx, journeyID, step, func(ctx context.Context, j journey.Journey) (journey.Outcome, error) {
		st, err := apply(j.State())
		if err != nil {
			return journey.Outcome{}, err
		}
		return journey.Materialize(st, s.deps).Advance(ctx, step)
	})
}

// Advance moves past a step that takes no answer.
func (s *Service) Advance(ctx context.Context, journeyID id.JourneyID, step journey.Step) (journey.Outcome, error) {
	return s.run(ctx, journeyID, step, func(ctx context.Context, j journey.Journey) (journey.Outcome, error) {
		return j.Advance(ctx, step)
	})
}

// OnEmailVerified records that the user confirmed the address in play at
// step. At the ordinary confirmation step that address may already belong
// to an account, which the journey then signs in as.
func (s *Service) OnEmailVerified(ctx context.Context, journeyID id.JourneyID, step journey.Step) (journey.Outcome, error) {
	return s.run(ctx, journeyID, step, func(ctx context.Context, j journey.Journey) (journey.Outcome, error) {
		var user *models.User
		if step == journey.StepEmailConfirmation {
			u, err := s.findAccount(ctx, s.accounts.FindByEmail, j.State().EmailAddress)
			if err != nil {
				return journey.Outcome{}, err
			}
			user = u
		}
		return j.OnEmailVerified(ctx, user, step)
	})
}

// OnMobileVerified records that the user confirmed their mobile number.
func (s *Service) OnMobileVerified(ctx context.Context, journeyID id.JourneyID, step journey.Step) (journey.Outcome, error) {
	return s.run(ctx, journeyID, step, func(ctx context.Context, j journey.Journey) (journey.Outcome, error) {
		user, err := s.findAccount(ctx, s.accounts.FindByMobileNumber, j.State().MobileNumber)
		if err != nil {
			return journey.Outcome{}, err
		}
		return j.OnMobileVerified(ctx, user, step)
	})
}

// CreateUser registers the account the journey describes.
func (s *Service) CreateUser(ctx context.Context, journeyID id.JourneyID, step journey.Step) (journey.Outcome, error) {
	return s.run(ctx, journeyID, step, func(ctx context.Context, j journey.Journey) (journey.Outcome, error) {
		return j.CreateUser(ctx, step)
	})
}

// ChooseTrnOwnerEmail completes the TRN-in-use reconciliation.
func (s *Service) ChooseTrnOwnerEmail(ctx context.Context, journeyID id.JourneyID, step journey.Step, email string) (journey.Outcome, error) {
	return s.run(ctx, journeyID, step, func(ctx context.Context, j journey.Journey) (journey.Outcome, error) {
		return j.ChooseTrnOwnerEmail(ctx, step, email)
	})
}

// ApplyTrnToken seeds a fresh journey from a pre-authorized TRN token.
func (s *Service) ApplyTrnToken(ctx context.Context, journeyID id.JourneyID, token string) (journey.Outcome, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return journey.Outcome{}, dErrors.New(dErrors.CodeValidation, "trn token is required")
	}
	return s.run(ctx, journeyID, journey.StepNone, func(ctx context.Context, j journey.Journey) (journey.Outcome, error) {
		t, err := s.accounts.FindTrnToken(ctx, token)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return journey.Outcome{}, dErrors.New(dErrors.CodeNotFound, "trn token not found")
		case err != nil:
			return journey.Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load trn token")
		}
		if t.IsUsed() {
			return journey.Outcome{}, dErrors.New(dErrors.CodeBadRequest, "trn token has already been used")
		}
		return j.ApplyTrnToken(ctx, t)
	})
}

type operation func(ctx context.Context, j journey.Journey) (journey.Outcome, error)

// run loads the journey, checks step, runs op and saves the outcome. A step
// the state does not allow yields a recovery redirect and nothing is saved,
// as does a forbidden outcome. StepNone skips the step check.
func (s *Service) run(ctx context.Context, journeyID id.JourneyID, step journey.Step, op operation) (journey.Outcome, error) {
	ctx = requestcontext.WithJourneyID(ctx, journeyID)
	j, err := s.Get(ctx, journeyID)
	if err != nil {
		return journey.Outcome{}, err
	}

	if step != journey.StepNone {
		if !j.HasStep(step) {
			_, err := j.StepURL(step)
			return journey.Outcome{}, err
		}
		if !j.CanAccessStep(step) {
			url, err := j.LastAccessibleStepURL(step)
			if err != nil {
				return journey.Outcome{}, err
			}
			s.logger.InfoContext(ctx, "step not accessible, redirecting",
				"journey_id", journeyID.String(),
				"journey_kind", j.Kind().String(),
				"step", step.String(),
			)
			return journey.Outcome{State: j.State(), RedirectURL: url}, nil
		}
	}

	out, err := op(ctx, j)
	if err != nil {
		s.logFailure(ctx, j, step, err)
		return journey.Outcome{}, err
	}
	if out.Forbidden {
		return out, nil
	}

	saved, err := s.save(ctx, out.State)
	if err != nil {
		return journey.Outcome{}, err
	}
	out.State = saved
	return out, nil
}

func (s *Service) save(ctx context.Context, st models.AuthenticationState) (models.AuthenticationState, error) {
	saved, err := s.states.Save(ctx, st)
	switch {
	case errors.Is(err, sentinel.ErrStaleVersion):
		s.metrics.IncrementStateConflict()
		s.logger.WarnContext(ctx, "journey state changed concurrently",
			"journey_id", st.JourneyID.String(),
			"version", st.Version,
		)
		return models.AuthenticationState{}, dErrors.Wrap(err, dErrors.CodeConflict, "journey was updated by another request")
	case err != nil:
		return models.AuthenticationState{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save journey")
	}
	return saved, nil
}

func (s *Service) findAccount(ctx context.Context, find func(context.Context, string) (*models.User, error), key string) (*models.User, error) {
	if key == "" {
		return nil, nil
	}
	u, err := find(ctx, key)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up account")
	}
	return u, nil
}

func (s *Service) logFailure(ctx context.Context, j journey.Journey, step journey.Step, err error) {
	attrs := []any{
		"journey_id", j.State().JourneyID.String(),
		"journey_kind", j.Kind().String(),
		"step", step.String(),
		"error", err,
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		s.logger.ErrorContext(ctx, "journey operation failed", attrs...)
		return
	}
	s.logger.InfoContext(ctx, "journey operation rejected", attrs...)
}
