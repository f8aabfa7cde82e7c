package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/dexxrat/gamestore-backend/api/responses"
	"github.com/dexxrat/gamestore-backend/pkg/config"
	pkgerrors "github.com/dexxrat/gamestore-backend/pkg/errors"
	"github.com/dexxrat/gamestore-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GameStore-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the backing stores before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, db pinger, cache pinger) http.HandlerFunc {
	checks := map[string]pinger{
		"postgres": db,
		"redis":    cache,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GameStore-Env", cfg.App.Env)

		failed := map[string]string{}
		for name, p := range checks {
			if p == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			err := p.Ping(ctx)
			cancel()
			if err != nil {
				failed[name] = err.Error()
			}
		}

		if len(failed) > 0 {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(failed)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
