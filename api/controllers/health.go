package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/marcoguerrero/cartkeeper/api/responses"
	"github.com/marcoguerrero/cartkeeper/pkg/config"
	pkgerrors "github.com/marcoguerrero/cartkeeper/pkg/errors"
	"github.com/marcoguerrero/cartkeeper/pkg/logger"
	"github.com/marcoguerrero/cartkeeper/pkg/types"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Health answers the plain liveness probe.
func Health(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CartKeeper-Env", cfg.App.Env)
		responses.WriteSuccess(w, types.StatusPayload{Status: "ok"})
	}
}

// HealthReady verifies the cart store and, when configured, the catalogue
// database are reachable.
func HealthReady(cfg *config.Config, logg *logger.Logger, store pinger, catalogueDB pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("X-CartKeeper-Env", cfg.App.Env)

		if store != nil {
			if err := store.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart store unreachable"))
				return
			}
		}
		if catalogueDB != nil {
			if err := catalogueDB.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalogue database unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, types.StatusPayload{Status: "ready"})
	}
}
