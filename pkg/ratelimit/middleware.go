package ratelimit

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/minicrm/backoffice/pkg/httpapi"
)

// Middleware gates requests by caller IP. Redis failures let the request
// through so a cache outage does not take the API down with it.
func Middleware(log *slog.Logger, limiter *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				log.Warn("rate limiter unavailable", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				httpapi.WriteJSON(w, http.StatusTooManyRequests, map[string]string{
					"message": "Too many requests from this IP, please try again later.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
