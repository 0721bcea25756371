// Package links builds step URLs of the form
// {base}/sign-in/{kind}/{step}?asid={journeyID}.
package links

import (
	"net/url"
	"strings"

	"teacherid/internal/signin/journey"
	id "teacherid/pkg/domain"
)

// JourneyQueryParam carries the journey id on every step URL.
const JourneyQueryParam = "asid"

// PathPrefix is where the step routes are mounted.
const PathPrefix = "/sign-in"

type Resolver struct {
	baseURL string
}

// New returns a resolver for baseURL. An empty base yields root-relative URLs.
func New(baseURL string) *Resolver {
	return &Resolver{baseURL: strings.TrimRight(baseURL, "/")}
}

func (r *Resolver) StepURL(kind journey.Kind, step journey.Step, journeyID id.JourneyID) string {
	q := url.Values{}
	q.Set(JourneyQueryParam, journeyID.String())
	return r.baseURL + StepPath(kind, step) + "?" + q.Encode()
}

// StepPath is the route path for step without the query or base URL.
func StepPath(kind journey.Kind, step journey.Step) string {
	return PathPrefix + "/" + url.PathEscape(kind.String()) + "/" + url.PathEscape(string(step))
}
