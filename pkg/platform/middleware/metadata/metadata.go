package metadata

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mssola/useragent"

	"teacherid/pkg/requestcontext"
)

// ClientMetadata copies the client IP, User-Agent, its device label and chi
// request id into the request context. Apply it after chi's RequestID
// middleware.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := r.Header.Get("User-Agent")
		ctx := requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r), ua)
		ctx = requestcontext.WithDevice(ctx, DeviceLabel(ua))
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			ctx = requestcontext.WithRequestID(ctx, reqID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest extracts the client IP, honouring proxy headers.
func ClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First entry is the original client.
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}
	return "unknown"
}

// DeviceLabel condenses a User-Agent into "Browser version on OS", tagged
// with (bot) or (mobile) when the agent says so.
func DeviceLabel(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "unknown"
	}
	ua := useragent.New(userAgent)
	name, version := ua.Browser()
	label := strings.TrimSpace(name + " " + version)
	if os := ua.OS(); os != "" {
		if label != "" {
			label += " on "
		}
		label += os
	}
	if label == "" {
		label = "unknown"
	}
	switch {
	case ua.Bot():
		label += " (bot)"
	case ua.Mobile():
		label += " (mobile)"
	}
	return label
}
