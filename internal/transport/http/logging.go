package httptransport

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// RequestIDHeader carries the request id back to the caller.
const RequestIDHeader = "X-Request-ID"

// WithRequestLogging attaches a request-scoped logger to every request and writes one
// access log line per request. Probe and scrape endpoints log at debug level.
func WithRequestLogging(logger zerolog.Logger, next http.Handler) http.Handler {
	access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		event := hlog.FromRequest(r).Info()
		if quietPath(r.URL.Path) {
			event = hlog.FromRequest(r).Debug()
		}
		if status >= http.StatusInternalServerError {
			event = hlog.FromRequest(r).Warn()
		}
		event.
			Str("component", "httpreq").
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("handled request")
	})

	chain := []func(http.Handler) http.Handler{
		hlog.NewHandler(logger),
		hlog.RequestIDHandler("request_id", RequestIDHeader),
		hlog.RemoteAddrHandler("ip"),
		hlog.MethodHandler("method"),
		hlog.URLHandler("url"),
		hlog.UserAgentHandler("user_agent"),
		access,
	}

	h := next
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

func quietPath(path string) bool {
	return path == "/healthz" || path == "/metrics"
}
