package controllers

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/pizzeria/api/responses"
	pkgerrors "github.com/angelmondragon/pizzeria/pkg/errors"
	"github.com/angelmondragon/pizzeria/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency the API needs to be ready.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(env string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pizzeria-Env", env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every named dependency. Nil entries are reported as
// disabled.
func HealthReady(env string, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pizzeria-Env", env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		var failed []string
		for name, dep := range deps {
			if dep == nil {
				checks[name] = "disabled"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = "unavailable"
				failed = append(failed, name)
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", name), "health.dependency_failed", err)
				}
				continue
			}
			checks[name] = "ok"
		}

		if len(failed) > 0 {
			sort.Strings(failed)
			responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeUnavailable, "unavailable: "+strings.Join(failed, ", ")))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
