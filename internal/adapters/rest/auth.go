package rest

import (
	"encoding/json"
	"net/http"
)

// AuthStatus reports whether a usable catalog session is stored.
func (h *Handler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"authenticated": h.auth.IsAuthenticated(r.Context()),
	})
}

// StartLogin initiates a device-code grant and returns what the caller needs
// to complete it: verification URIs, the user code, and the poll interval.
func (h *Handler) StartLogin(w http.ResponseWriter, r *http.Request) {
	login, err := h.auth.StartDeviceLogin(r.Context())
	if err != nil {
		h.logger.Error("device login start failed", "err", err)
		writeError(w, http.StatusBadGateway, "could not start device login")
		return
	}
	writeJSON(w, http.StatusOK, login)
}

type pollRequest struct {
	DeviceCode string `json:"deviceCode"`
}

// PollLogin performs one device-login poll. Pending and expired come back as
// ordinary statuses; the caller schedules retries at the reported interval.
func (h *Handler) PollLogin(w http.ResponseWriter, r *http.Request) {
	var req pollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DeviceCode == "" {
		writeError(w, http.StatusBadRequest, "deviceCode is required")
		return
	}

	result, err := h.auth.PollDeviceLogin(r.Context(), req.DeviceCode)
	if err != nil {
		h.logger.Error("device login poll failed", "err", err)
		writeError(w, http.StatusBadGateway, "could not poll device login")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Logout clears the stored session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		h.logger.Error("logout failed", "err", err)
		writeError(w, http.StatusInternalServerError, "could not clear session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
