package webhook

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apexpay/payouter/internal/invoice"
)

type Handler struct {
	svc *invoice.Service
}

func NewHandler(svc *invoice.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/webhook/payouter", h.receive)
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid webhook payload")
		return
	}

	params, ok := extract(payload)
	if !ok {
		slog.Warn("webhook missing invoice id or status", "payload", payload)
		respondError(w, http.StatusBadRequest, "invalid webhook payload")

		return
	}

	inv, created, err := h.svc.Reconcile(r.Context(), params)
	if err != nil {
		if errors.Is(err, invoice.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, "invalid webhook payload")
			return
		}

		slog.Error("webhook reconciliation failed", "invoice", params.InvoiceID, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")

		return
	}

	if created {
		slog.Info("created invoice from webhook", "invoice", inv.ID, "status", inv.Status)
	} else {
		slog.Info("updated invoice from webhook", "invoice", inv.ID, "status", inv.Status)
	}

	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]any{"error": msg})
}
