package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ewilliams-labs/crescendo/internal/core/ports"
	"github.com/ewilliams-labs/crescendo/internal/core/services"
)

type discoverRequest struct {
	PlaylistURL string `json:"playlistUrl"`
}

// Discover runs the discovery pipeline for a playlist URL. A missing session
// maps to 401 with code "not_authenticated" so the caller can trigger the
// login flow; everything else is a generic discovery failure.
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	var req discoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlaylistURL == "" {
		writeError(w, http.StatusBadRequest, "playlistUrl is required")
		return
	}

	ctx := r.Context()
	if h.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.deadline)
		defer cancel()
	}

	result, err := h.svc.Discover(ctx, req.PlaylistURL)
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrNotAuthenticated):
			writeErrorCode(w, http.StatusUnauthorized, "Tidal session required", "not_authenticated")
		case errors.Is(err, services.ErrInvalidPlaylistURL):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("discovery failed", "err", err)
			writeError(w, http.StatusBadGateway, "discovery failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}
