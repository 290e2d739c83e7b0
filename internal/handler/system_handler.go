package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go-auth-service/internal/model"
)

const healthCheckTimeout = 2 * time.Second

// SystemHandler serves the unauthenticated service endpoints.
type SystemHandler struct {
	title string
	ping  func(ctx context.Context) error
}

func NewSystemHandler(title string, ping func(ctx context.Context) error) *SystemHandler {
	return &SystemHandler{title: title, ping: ping}
}

func (h *SystemHandler) Info(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, model.AppInfo{Title: h.title})
}

func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := h.ping(ctx); err != nil {
			slog.WarnContext(r.Context(), "health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("unavailable"))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
