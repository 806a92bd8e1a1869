package webhook_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexpay/payouter/internal/http/webhook"
	"github.com/apexpay/payouter/internal/invoice"
	"github.com/apexpay/payouter/internal/invoice/filestore"
	"github.com/apexpay/payouter/internal/payouter"
)

func newRouter(t *testing.T) (chi.Router, *filestore.Store) {
	t.Helper()

	store := filestore.New(filepath.Join(t.TempDir(), "invoices.json"))
	svc := invoice.NewService(store, payouter.New(payouter.Config{TestMode: true}))

	router := chi.NewRouter()
	webhook.NewHandler(svc).Routes(router)

	return router, store
}

func deliver(t *testing.T, router chi.Router, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhook/payouter", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestReceive_UpdatesKnownInvoice(t *testing.T) {
	router, store := newRouter(t)
	ctx := context.Background()

	require.NoError(t, store.SaveInvoice(ctx, &invoice.Invoice{
		ID:         "local-1",
		ExternalID: "ext-1",
		Type:       invoice.TypePayIn,
		Amount:     100,
		Currency:   "USD",
		Status:     invoice.StatusPending,
	}))

	rec := deliver(t, router, `{"invoiceId": "ext-1", "status": "SUCCESS"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok": true}`, rec.Body.String())

	inv, err := store.GetInvoice(ctx, "local-1")
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusSuccess, inv.Status)
	assert.Equal(t, 100.0, inv.Amount)
}

func TestReceive_IsIdempotent(t *testing.T) {
	router, store := newRouter(t)

	payload := `{"invoiceId": "X", "status": "SUCCESS"}`

	assert.Equal(t, http.StatusOK, deliver(t, router, payload).Code)
	assert.Equal(t, http.StatusOK, deliver(t, router, payload).Code)

	all, err := store.ListInvoices(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "X", all[0].ID)
	assert.Equal(t, invoice.StatusSuccess, all[0].Status)
}

func TestReceive_SynthesizesUnknownInvoice(t *testing.T) {
	router, store := newRouter(t)

	rec := deliver(t, router, `{"id": "ghost-1", "state": "FAILED"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	inv, err := store.GetInvoice(context.Background(), "ghost-1")
	require.NoError(t, err)
	assert.Equal(t, "ghost-1", inv.ID)
	assert.Equal(t, "ghost-1", inv.ExternalID)
	assert.Equal(t, invoice.TypePayIn, inv.Type)
	assert.Equal(t, invoice.StatusFailed, inv.Status)
	assert.Equal(t, 0.0, inv.Amount)
	assert.Equal(t, "USD", inv.Currency)
	assert.Equal(t, "ghost-1", inv.Meta["id"])
}

func TestReceive_FieldFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantID   string
		wantType invoice.Type
	}{
		{
			name:     "SnakeCaseIDAndKind",
			body:     `{"invoice_id": "a-1", "status": "SUCCESS", "kind": "payout"}`,
			wantID:   "a-1",
			wantType: invoice.TypePayout,
		},
		{
			name:     "PayoutFieldImpliesPayout",
			body:     `{"id": "a-2", "status": "SUCCESS", "payout": {"card": "4111"}}`,
			wantID:   "a-2",
			wantType: invoice.TypePayout,
		},
		{
			name:     "NoTypeDefaultsToPayIn",
			body:     `{"id": "a-3", "state": "PENDING"}`,
			wantID:   "a-3",
			wantType: invoice.TypePayIn,
		},
		{
			name:     "AmountAndCurrencyCarriedOver",
			body:     `{"invoiceId": "a-4", "status": "SUCCESS", "amount": 42.5, "currency": "EUR"}`,
			wantID:   "a-4",
			wantType: invoice.TypePayIn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, store := newRouter(t)

			rec := deliver(t, router, tt.body)
			require.Equal(t, http.StatusOK, rec.Code)

			inv, err := store.GetInvoice(context.Background(), tt.wantID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, inv.Type)
		})
	}

	t.Run("AmountAndCurrencyValues", func(t *testing.T) {
		router, store := newRouter(t)

		deliver(t, router, `{"invoiceId": "a-4", "status": "SUCCESS", "amount": 42.5, "currency": "EUR"}`)

		inv, err := store.GetInvoice(context.Background(), "a-4")
		require.NoError(t, err)
		assert.Equal(t, 42.5, inv.Amount)
		assert.Equal(t, "EUR", inv.Currency)
	})
}

func TestReceive_MalformedPayloadRejected(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "NotJSON", body: `not json`},
		{name: "MissingID", body: `{"status": "SUCCESS"}`},
		{name: "MissingStatus", body: `{"invoiceId": "X"}`},
		{name: "EmptyObject", body: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, store := newRouter(t)

			rec := deliver(t, router, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			all, err := store.ListInvoices(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all, "rejected webhook must not mutate the store")
		})
	}
}
