package invoice

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/apexpay/payouter/internal/invoice"
	"github.com/apexpay/payouter/internal/payouter"
)

type invoiceResponse struct {
	ID         string         `json:"id"`
	ExternalID string         `json:"externalId,omitempty"`
	Type       invoice.Type   `json:"type"`
	Amount     float64        `json:"amount"`
	Currency   string         `json:"currency"`
	CreatedAt  string         `json:"createdAt"`
	Status     invoice.Status `json:"status"`
	Meta       invoice.Meta   `json:"meta,omitempty"`
}

type invoiceEnvelope struct {
	Invoice invoiceResponse `json:"invoice"`
}

type statusEnvelope struct {
	Invoice  invoiceResponse `json:"invoice"`
	External payouter.Result `json:"external,omitempty"`
}

type listEnvelope struct {
	Invoices []invoiceResponse `json:"invoices"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:         inv.ID,
		ExternalID: inv.ExternalID,
		Type:       inv.Type,
		Amount:     inv.Amount,
		Currency:   inv.Currency,
		CreatedAt:  inv.CreatedAt.Format(time.RFC3339),
		Status:     inv.Status,
		Meta:       inv.Meta,
	}
}

func toResponseList(invs []*invoice.Invoice) []invoiceResponse {
	resp := make([]invoiceResponse, len(invs))
	for i, inv := range invs {
		resp[i] = toResponse(inv)
	}

	return resp
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg, details string) {
	respondJSON(w, status, errorResponse{Error: msg, Details: details})
}
