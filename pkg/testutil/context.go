package testutil

import (
	"net/http"
	"time"

	"teacherid/pkg/requestcontext"
)

// WithTime pins the request time.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
