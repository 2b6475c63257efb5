// Package dispatchapi exposes notification dispatch over HTTP.
//
//	POST /notifications/{id}/dispatch   {"tokens": {"member_email": "a@b.co"}, "language": "de"}
//	GET  /healthz
//	GET  /readyz
//
// A dispatch always answers 200 with the notification.Result in "data"; the
// outcome of each message is reported there rather than through the status code.
// Malformed requests get 4xx with an "error" body.
package dispatchapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/notifycenter/pkg/binder"
	"github.com/dmitrymomot/notifycenter/pkg/httpserver"
	"github.com/dmitrymomot/notifycenter/pkg/logger"
	"github.com/dmitrymomot/notifycenter/pkg/notification"
	"github.com/dmitrymomot/notifycenter/pkg/tokens"
)

// Dispatcher sends notifications. *notification.Manager implements it.
type Dispatcher interface {
	DispatchLanguage(ctx context.Context, notificationID string, toks tokens.Tokens, lang string) notification.Result
}

type routerConfig struct {
	logger *slog.Logger
	checks []httpserver.Check
}

type Option func(*routerConfig)

func WithLogger(l *slog.Logger) Option {
	return func(c *routerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithReadinessCheck adds a dependency probed by /readyz.
func WithReadinessCheck(name string, probe func(context.Context) error) Option {
	return func(c *routerConfig) {
		c.checks = append(c.checks, httpserver.Check{Name: name, Probe: probe})
	}
}

// Router builds the HTTP API around d.
func Router(d Dispatcher, opts ...Option) chi.Router {
	cfg := &routerConfig{logger: logger.Discard()}
	for _, opt := range opts {
		opt(cfg)
	}
	log := cfg.logger.With(logger.Component("dispatchapi"))

	r := chi.NewRouter()
	r.Use(RequestID, middleware.Recoverer, AccessLog(log))

	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(log, cfg.checks...))
	r.Post("/notifications/{id}/dispatch", dispatchHandler(d, log))

	return r
}

func dispatchHandler(d Dispatcher, log *slog.Logger) http.HandlerFunc {
	bind := binder.JSON(binder.WithMaxSize(MaxBodySize), binder.AllowEmptyBody())

	return func(w http.ResponseWriter, r *http.Request) {
		var req DispatchRequest
		if err := bind(r, &req); err != nil {
			writeError(w, r, log, err)
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, r, log, err)
			return
		}

		id := chi.URLParam(r, "id")
		res := d.DispatchLanguage(r.Context(), id, req.TokenSet(), req.Language)
		writeJSON(w, http.StatusOK, Envelope{Data: res})
	}
}
