package main

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mtenant/pkg/registry"
)

type tenantInput struct {
	Tenant   string          `json:"tenant"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

func listTenantsHandler(reg registry.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := reg.List(r.Context())
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		if records == nil {
			records = []registry.Record{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func addTenantHandler(reg registry.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in tenantInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		rec, err := reg.Add(r.Context(), in.Tenant, in.Settings)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

func getTenantHandler(reg registry.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := reg.Get(r.Context(), chi.URLParam(r, "tenant"))
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// updateTenantSettingsHandler replaces the settings with the raw request body.
func updateTenantSettingsHandler(reg registry.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable body")
			return
		}
		rec, err := reg.UpdateSettings(r.Context(), chi.URLParam(r, "tenant"), body)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func removeTenantHandler(reg registry.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := reg.Remove(r.Context(), chi.URLParam(r, "tenant"))
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		if n == 0 {
			writeFailure(w, r, registry.ErrTenantNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
