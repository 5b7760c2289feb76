package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"tap-redirect-engine/internal/engine"
	"tap-redirect-engine/internal/observability"
)

type TapHandler struct {
	Proc *engine.TapProcessor
}

func NewTapHandler(proc *engine.TapProcessor) *TapHandler {
	return &TapHandler{Proc: proc}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Tap handles GET /t/{card}: resolve and redirect. Outcome mapping:
// 302 redirect, 404 unknown card, 400 card not activated, 200 landing
// page when no profile is configured.
func (h *TapHandler) Tap(w http.ResponseWriter, r *http.Request) {
	req := engine.RawRequest{
		IP:        clientIP(r),
		Timestamp: time.Now(),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	}

	res, err := h.Proc.ProcessTap(r.Context(), chi.URLParam(r, "card"), req)
	switch {
	case err == nil:
		observability.TapsTotal.WithLabelValues("redirected").Inc()
		http.Redirect(w, r, res.Destination, http.StatusFound)
	case errors.Is(err, engine.ErrCardNotFound):
		observability.TapsTotal.WithLabelValues("card_not_found").Inc()
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "card_not_found"})
	case errors.Is(err, engine.ErrCardNotActivated):
		observability.TapsTotal.WithLabelValues("card_not_activated").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "card_not_activated"})
	case errors.Is(err, engine.ErrNoProfileConfigured):
		// legitimate terminal state: show the generic landing page
		observability.TapsTotal.WithLabelValues("no_profile").Inc()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><p>This card is not set up yet.</p></body></html>"))
	default:
		observability.TapsTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Msg("process tap")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
	}
}

// clientIP strips the port middleware.RealIP may have left on
// RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
