package handler

import (
	"context"
	"net/http"

	"github.com/kiranshivaraju/podzine/internal/api/response"
)

// Pinger is anything the health check can ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler returns an http.HandlerFunc for GET /api/v1/health. A nil
// pinger means the backing service is not configured and is reported as
// "disabled" without affecting overall health.
func NewHealthHandler(provider string, database, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": checkPing(r.Context(), database),
			"cache":    checkPing(r.Context(), cache),
		}

		if checks["database"] == "degraded" || checks["cache"] == "degraded" {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":      "ok",
			"ai_provider": provider,
			"services":    checks,
		})
	}
}

func checkPing(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "degraded"
	}
	return "ok"
}
