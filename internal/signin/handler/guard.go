package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"teacherid/internal/signin/journey"
	"teacherid/internal/signin/links"
	id "teacherid/pkg/domain"
	dErrors "teacherid/pkg/domain-errors"
	"teacherid/pkg/requestcontext"
)

type journeyKey struct{}

// guard resolves the journey named by asid and keeps the user on it. A URL
// for another kind, or a step the state does not yet allow, is redirected to
// the last step the user may see.
func (h *Handler) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		journeyID, err := journeyIDFrom(r)
		if err != nil {
			h.writeError(ctx, w, "invalid journey id", err)
			return
		}
		ctx = requestcontext.WithJourneyID(ctx, journeyID)

		kind, err := journey.ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			h.writeError(ctx, w, "unknown journey kind", err)
			return
		}
		j, err := h.service.Get(ctx, journeyID)
		if err != nil {
			h.writeError(ctx, w, "failed to load journey", err)
			return
		}

		step := journey.Step(chi.URLParam(r, "step"))
		if j.Kind() == kind && !j.HasStep(step) {
			_, err := j.StepURL(step)
			h.writeError(ctx, w, "unknown step", err)
			return
		}
		if j.Kind() != kind || !j.CanAccessStep(step) {
			url, err := j.LastAccessibleStepURL(step)
			if err != nil {
				h.writeError(ctx, w, "no accessible step", err)
				return
			}
			h.logger.InfoContext(ctx, "redirecting to accessible step",
				"request_id", requestcontext.RequestID(ctx),
				"journey_id", journeyID.String(),
				"requested_kind", kind.String(),
				"journey_kind", j.Kind().String(),
				"requested_step", step.String(),
			)
			http.Redirect(w, r, url, http.StatusSeeOther)
			return
		}

		ctx = context.WithValue(ctx, journeyKey{}, j)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func journeyFrom(ctx context.Context) journey.Journey {
	j, _ := ctx.Value(journeyKey{}).(journey.Journey)
	return j
}

func journeyIDFrom(r *http.Request) (id.JourneyID, error) {
	raw := r.URL.Query().Get(links.JourneyQueryParam)
	if raw == "" {
		return id.JourneyID{}, dErrors.New(dErrors.CodeBadRequest, links.JourneyQueryParam+" is required")
	}
	return id.ParseJourneyID(raw)
}
