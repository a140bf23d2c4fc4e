package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mtenant/pkg/httpserver"
	"github.com/dmitrymomot/mtenant/pkg/registry"
	"github.com/dmitrymomot/mtenant/pkg/requestid"
	"github.com/dmitrymomot/mtenant/pkg/tenancy"
)

func newRouter(a *app) chi.Router {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)

	skip := append([]string{"/live", "/ready", "/admin/"}, a.cfg.Tenancy.SkipPaths...)
	r.Use(tenancy.Middleware(a.coordinator,
		tenancy.WithLogger(a.log),
		tenancy.WithSkipPaths(skip...),
	))

	r.Get("/live", httpserver.Liveness())
	r.Get("/ready", httpserver.Readiness(a.log, a.checks...))

	if reg := a.coordinator.Registry(); reg != nil {
		r.Route("/admin/tenants", func(r chi.Router) {
			r.Get("/", listTenantsHandler(reg))
			r.Post("/", addTenantHandler(reg))
			r.Get("/{tenant}", getTenantHandler(reg))
			r.Put("/{tenant}/settings", updateTenantSettingsHandler(reg))
			r.Delete("/{tenant}", removeTenantHandler(reg))
		})
	}

	r.Get("/whoami", whoamiHandler(a.coordinator))
	r.Route("/notes", func(r chi.Router) {
		r.Get("/", listNotesHandler(a.db))
		r.Post("/", createNoteHandler(a.db))
		r.Get("/{id}", getNoteHandler(a.db))
		r.Patch("/{id}", updateNoteHandler(a.db))
		r.Delete("/{id}", deleteNoteHandler(a.db))
	})

	return r
}

type whoami struct {
	tenancy.Scope
	Settings any `json:"settings,omitempty"`
}

// whoamiHandler reports the resolved scope and, when the tenant is
// registered, its settings.
func whoamiHandler(c *tenancy.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := whoami{Scope: c.CurrentScope(r.Context())}
		if reg := c.Registry(); reg != nil {
			rec, err := reg.Get(r.Context(), resp.Tenant)
			switch {
			case err == nil:
				if registry.HasSettings(rec.Settings) {
					resp.Settings = rec.Settings
				}
			case !errors.Is(err, registry.ErrTenantNotFound):
				writeFailure(w, r, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
