// Package handler exposes sign-in journeys over HTTP.
//
// Every step lives at /sign-in/{kind}/{step}?asid={journeyID}. GET describes
// the step, POST submits it. Both answer with a 303 to wherever the journey
// goes next.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"teacherid/internal/signin/journey"
	"teacherid/internal/signin/links"
	"teacherid/internal/signin/models"
	"teacherid/internal/signin/session"
	id "teacherid/pkg/domain"
	dErrors "teacherid/pkg/domain-errors"
	"teacherid/pkg/platform/httputil"
	"teacherid/pkg/requestcontext"
)

// Service defines the journey operations the handler drives.
type Service interface {
	Start(ctx context.Context, oauth models.OAuthContext, postSignInURL string) (journey.Outcome, error)
	Get(ctx context.Context, journeyID id.JourneyID) (journey.Journey, error)
	Record(ctx context.Context, journeyID id.JourneyID, step journey.Step, apply func(models.AuthenticationState) (models.AuthenticationState, error)) (journey.Outcome, error)
	Advance(ctx context.Context, journeyID id.JourneyID, step journey.Step) (journey.Outcome, error)
	OnEmailVerified(ctx context.Context, journeyID id.JourneyID, step journey.Step) (journey.Outcome, error)
	OnMobileVerified(ctx context.Context, journeyID id.JourneyID, step journey.Step) (journey.Outcome, error)
	CreateUser(ctx context.Context, journeyID id.JourneyID, step journey.Step) (journey.Outcome, error)
	ChooseTrnOwnerEmail(ctx context.Context, journeyID id.JourneyID, step journey.Step, email string) (journey.Outcome, error)
	ApplyTrnToken(ctx context.Context, journeyID id.JourneyID, token string) (journey.Outcome, error)
}

// Handler wires the sign-in routes to the journey service.
type Handler struct {
	service       Service
	logger        *slog.Logger
	secureCookies bool
}

type Option func(*Handler)

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(h *Handler) {
		h.secureCookies = secure
	}
}

// New constructs a sign-in handler.
func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the sign-in routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post(links.PathPrefix, h.HandleStart)
	r.Post(links.PathPrefix+"/trn-token", h.HandleTrnToken)
	r.With(h.guard).Get(links.PathPrefix+"/{kind}/{step}", h.HandleGetStep)
	r.With(h.guard).Post(links.PathPrefix+"/{kind}/{step}", h.HandlePostStep)
}

// HandleStart handles POST /sign-in.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.DecodeAndPrepare[StartRequest](r)
	if err != nil {
		h.writeError(ctx, w, "invalid start request", err)
		return
	}
	out, err := h.service.Start(ctx, req.OAuthContext(), req.PostSignInURL)
	if err != nil {
		h.writeError(ctx, w, "failed to start journey", err)
		return
	}
	h.writeOutcome(ctx, w, r, out)
}

// HandleTrnToken handles POST /sign-in/trn-token?asid=.
func (h *Handler) HandleTrnToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	journeyID, err := journeyIDFrom(r)
	if err != nil {
		h.writeError(ctx, w, "invalid journey id", err)
		return
	}
	ctx = requestcontext.WithJourneyID(ctx, journeyID)
	req, err := httputil.DecodeAndPrepare[TrnTokenRequest](r)
	if err != nil {
		h.writeError(ctx, w, "invalid trn token request", err)
		return
	}

	ctx, rec := session.WithRecorder(ctx)
	out, err := h.service.ApplyTrnToken(ctx, journeyID, req.Token)
	if err != nil {
		h.writeError(ctx, w, "failed to apply trn token", err)
		return
	}
	h.setSessionCookie(w, rec)
	h.writeOutcome(ctx, w, r, out)
}

// HandleGetStep handles GET /sign-in/{kind}/{step}.
func (h *Handler) HandleGetStep(w http.ResponseWriter, r *http.Request) {
	j := journeyFrom(r.Context())
	step := journey.Step(chi.URLParam(r, "step"))
	httputil.WriteJSON(w, http.StatusOK, newStepResponse(j, step))
}

// HandlePostStep handles POST /sign-in/{kind}/{step}.
func (h *Handler) HandlePostStep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	j := journeyFrom(ctx)
	journeyID := j.State().JourneyID
	step := journey.Step(chi.URLParam(r, "step"))

	ctx, rec := session.WithRecorder(ctx)
	out, err := h.submit(ctx, r, j.Kind(), journeyID, step)
	if err != nil {
		h.writeError(ctx, w, "step submission failed", err, "step", step.String())
		return
	}
	h.setSessionCookie(w, rec)
	h.writeOutcome(ctx, w, r, out)
}

func (h *Handler) submit(ctx context.Context, r *http.Request, kind journey.Kind, journeyID id.JourneyID, step journey.Step) (journey.Outcome, error) {
	switch step {
	case journey.StepEmailConfirmation, journey.StepExistingAccountEmailConfirmation, journey.StepTrnInUse:
		return h.service.OnEmailVerified(ctx, journeyID, step)
	case journey.StepPhoneConfirmation:
		return h.service.OnMobileVerified(ctx, journeyID, step)
	case journey.StepCheckAnswers:
		if kind == journey.KindElevateTrnVerificationLevel {
			return h.service.Advance(ctx, journeyID, step)
		}
		return h.service.CreateUser(ctx, journeyID, step)
	case journey.StepTrnInUseCannotAccessEmail:
		return h.service.CreateUser(ctx, journeyID, step)
	case journey.StepTrnInUseChooseEmail:
		req, err := httputil.DecodeAndPrepare[ChooseEmailRequest](r)
		if err != nil {
			return journey.Outcome{}, err
		}
		return h.service.ChooseTrnOwnerEmail(ctx, journeyID, step, req.Email)
	case journey.StepLanding, journey.StepResendEmailConfirmation, journey.StepResendPhoneConfirmation:
		return h.service.Advance(ctx, journeyID, step)
	}

	req, err := httputil.DecodeAndPrepare[AnswerRequest](r)
	if err != nil {
		return journey.Outcome{}, err
	}
	apply, err := req.For(step)
	if err != nil {
		return journey.Outcome{}, err
	}
	return h.service.Record(ctx, journeyID, step, apply)
}

func (h *Handler) writeOutcome(ctx context.Context, w http.ResponseWriter, r *http.Request, out journey.Outcome) {
	if out.Forbidden {
		h.logger.WarnContext(ctx, "journey refused account",
			"request_id", requestcontext.RequestID(ctx),
			"journey_id", out.State.JourneyID.String(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "this account cannot be used here"))
		return
	}
	http.Redirect(w, r, out.RedirectURL, http.StatusSeeOther)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	attrs = append([]any{
		"request_id", requestcontext.RequestID(ctx),
		"journey_id", requestcontext.JourneyID(ctx).String(),
		"error", err,
	}, attrs...)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, rec *session.Recorder) {
	tok, ok := rec.Token()
	if !ok {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    tok.Value,
		Path:     "/",
		Expires:  tok.Expires,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
