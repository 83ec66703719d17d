package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/mannaz/internal/matchsvc"
	"github.com/starford/mannaz/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// broker, if non-nil, receives dataset events and serves GET /events.
func NewRouter(svc *matchsvc.Service, authEnabled bool, token string, broker *sse.Broker) chi.Router {
	h := NewHandler(svc, broker)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Comparison pipeline.
	r.Post("/process", h.Process)

	// Dataset read.
	r.Get("/dataset", h.Dataset)

	// Stored artifacts.
	r.Get("/artifacts", h.Artifacts)
	r.Get("/artifacts/{folder}/{name}", h.Artifact)

	// SSE endpoint (protected by same auth middleware).
	if broker != nil {
		r.Get("/events", http.HandlerFunc(broker.ServeHTTP))
	}

	return r
}
