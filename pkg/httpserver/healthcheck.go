package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/mtenant/pkg/logger"
)

// Check is a readiness probe such as pg.Healthcheck or redis.Healthcheck.
type Check func(context.Context) error

// Liveness always answers 200 "ALIVE".
func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ALIVE"))
	}
}

// Readiness answers 200 "READY" when every check passes and 503
// "NOT_READY" otherwise.
func Readiness(log *slog.Logger, checks ...Check) http.HandlerFunc {
	log = logger.OrDefault(log)
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.WarnContext(r.Context(), "readiness check failed", logger.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}
