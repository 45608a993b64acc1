// Package rest is the HTTP surface of the discovery service.
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ewilliams-labs/crescendo/internal/core/domain"
	"github.com/ewilliams-labs/crescendo/internal/core/ports"
)

// DiscoveryService runs the end-to-end discovery pipeline.
type DiscoveryService interface {
	Discover(ctx context.Context, playlistURL string) (domain.DiscoveryResult, error)
}

// Handler manages the HTTP interface for the discovery service.
type Handler struct {
	svc      DiscoveryService
	auth     ports.AuthFlow
	router   *http.ServeMux
	logger   *log.Logger
	deadline time.Duration // overall discovery deadline, 0 disables
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(svc DiscoveryService, auth ports.AuthFlow, logger *log.Logger, deadline time.Duration) *Handler {
	h := &Handler{
		svc:      svc,
		auth:     auth,
		router:   http.NewServeMux(),
		logger:   logger,
		deadline: deadline,
	}
	h.routes()
	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.HealthCheck)
	h.router.Handle("GET /metrics", promhttp.Handler())

	h.router.HandleFunc("GET /auth/status", h.AuthStatus)
	h.router.HandleFunc("POST /auth/login", h.StartLogin)
	h.router.HandleFunc("POST /auth/poll", h.PollLogin)
	h.router.HandleFunc("POST /auth/logout", h.Logout)

	h.router.HandleFunc("POST /discover", h.Discover)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeErrorCode(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}
