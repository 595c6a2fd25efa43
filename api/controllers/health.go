package controllers

import (
	"net/http"

	"github.com/chifaexpress/storefront-backend/api/responses"
	"github.com/chifaexpress/storefront-backend/pkg/config"
	"github.com/chifaexpress/storefront-backend/pkg/db"
	pkgerrors "github.com/chifaexpress/storefront-backend/pkg/errors"
	"github.com/chifaexpress/storefront-backend/pkg/logger"
	"github.com/chifaexpress/storefront-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Chifa-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when every backing store answers.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Chifa-Env", cfg.App.Env)

		checks := map[string]string{}
		failed := false

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				checks["database"] = "down"
				failed = true
			} else {
				checks["database"] = "ok"
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				checks["redis"] = "down"
				failed = true
			} else {
				checks["redis"] = "ok"
			}
		}

		if failed {
			err := pkgerrors.New(pkgerrors.CodeDependency, "one or more dependencies are unavailable").
				WithDetails(checks)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		checks["status"] = "ready"
		responses.WriteSuccess(w, checks)
	}
}
