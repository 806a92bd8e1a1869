package invoice

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/apexpay/payouter/internal/invoice"
)

type Handler struct {
	svc *invoice.Service
}

func NewHandler(svc *invoice.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/invoice", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/payin", h.createPayIn)
		r.Post("/payout", h.createPayout)
	})

	r.Get("/status/{id}", h.status)
	r.Get("/invoices", h.list)
}

type createInvoiceRequest struct {
	// Amount is a pointer so an absent field is distinguishable from zero.
	Amount   *float64 `json:"amount"`
	Currency string   `json:"currency"`
}

func (h *Handler) createPayIn(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, invoice.TypePayIn)
}

func (h *Handler) createPayout(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, invoice.TypePayout)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, typ invoice.Type) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "amount (number) and currency required", err.Error())
		return
	}

	if req.Amount == nil || req.Currency == "" {
		respondError(w, http.StatusBadRequest, "amount (number) and currency required", "")
		return
	}

	inv, err := h.svc.Create(r.Context(), typ, *req.Amount, req.Currency)
	if err != nil {
		if errors.Is(err, invoice.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, "amount (number) and currency required", err.Error())
			return
		}

		respondError(w, http.StatusInternalServerError, "failed to create "+string(typ)+" invoice", err.Error())

		return
	}

	respondJSON(w, http.StatusCreated, invoiceEnvelope{Invoice: toResponse(inv)})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "id")

	inv, external, err := h.svc.Status(r.Context(), key)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			respondError(w, http.StatusNotFound, "invoice not found", "")
			return
		}

		respondError(w, http.StatusInternalServerError, "internal", "")

		return
	}

	resp := statusEnvelope{Invoice: toResponse(inv)}
	if external != nil {
		resp.External = external
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	invs, err := h.svc.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal", "")
		return
	}

	respondJSON(w, http.StatusOK, listEnvelope{Invoices: toResponseList(invs)})
}
