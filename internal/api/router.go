package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	mw "github.com/kiranshivaraju/podzine/internal/api/middleware"
	"github.com/kiranshivaraju/podzine/internal/api/response"
)

// Dependencies holds all handler dependencies for the router. A nil handler
// is served as 501.
type Dependencies struct {
	IndexHandler  http.HandlerFunc
	UploadHandler http.HandlerFunc
	StatusHandler http.HandlerFunc
	ResultHandler http.HandlerFunc

	HealthHandler http.HandlerFunc
	JobHandler    http.HandlerFunc
	StatusStream  http.Handler
	ListArticles  http.HandlerFunc
	GetArticle    http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Browser flow
	r.Get("/", orNotImplemented(deps.IndexHandler))
	r.Post("/upload", orNotImplemented(deps.UploadHandler))
	r.Get("/status", orNotImplemented(deps.StatusHandler))
	r.Get("/result", orNotImplemented(deps.ResultHandler))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", orNotImplemented(deps.HealthHandler))
		r.Get("/status", orNotImplemented(deps.StatusHandler))
		r.Get("/job", orNotImplemented(deps.JobHandler))

		if deps.StatusStream != nil {
			r.Handle("/status/stream", deps.StatusStream)
		} else {
			r.Get("/status/stream", orNotImplemented(nil))
		}

		r.Get("/articles", orNotImplemented(deps.ListArticles))
		r.Get("/articles/{articleID}", orNotImplemented(deps.GetArticle))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not enabled", nil)
	}
}
