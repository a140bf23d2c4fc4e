package tenancy

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/mtenant/pkg/logger"
)

// ErrorHandler writes the response for a request whose tenant could not be
// resolved.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type middlewareConfig struct {
	errorHandler ErrorHandler
	skipPaths    []string
	logger       *slog.Logger
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithErrorHandler replaces the handler invoked when resolution fails.
func WithErrorHandler(h ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithSkipPaths lists path prefixes served without resolving a tenant.
// Handlers behind them observe the default scope.
func WithSkipPaths(paths ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.skipPaths = append(c.skipPaths, paths...)
	}
}

// WithLogger sets the logger used for resolution failures. Nil is ignored.
func WithLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Middleware resolves the tenant of every request and serves it inside the
// resulting scope. Rejected tenants get 406 Not Acceptable.
func Middleware(c *Coordinator, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		errorHandler: DefaultErrorHandler,
		logger:       c.logger,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			err := c.RunInScope(r.Context(), NewRequestContext(r), func(ctx context.Context) error {
				next.ServeHTTP(w, r.WithContext(ctx))
				return nil
			})
			if err != nil {
				cfg.logger.DebugContext(r.Context(), "tenant resolution failed",
					logger.Error(err),
					slog.String("path", r.URL.Path),
				)
				cfg.errorHandler(w, r, err)
			}
		})
	}
}

// DefaultErrorHandler writes a plain-text error with the status HTTPStatus picks.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	status := HTTPStatus(err)
	msg := http.StatusText(status)
	if status == http.StatusNotAcceptable {
		msg = err.Error()
	}
	http.Error(w, msg, status)
}

// LoggerExtractor adds the active scope to log records as a "tenancy" group.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		s, ok := ScopeFromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		return logger.Group("tenancy",
			logger.Tenant(s.Tenant),
			slog.Bool("enabled", s.Enabled),
		), true
	}
}
