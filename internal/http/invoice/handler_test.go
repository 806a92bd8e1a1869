package invoice_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invoiceHandler "github.com/apexpay/payouter/internal/http/invoice"
	"github.com/apexpay/payouter/internal/invoice"
	"github.com/apexpay/payouter/internal/invoice/filestore"
	"github.com/apexpay/payouter/internal/payouter"
)

func newRouter(t *testing.T) (chi.Router, *filestore.Store) {
	t.Helper()

	store := filestore.New(filepath.Join(t.TempDir(), "invoices.json"))
	svc := invoice.NewService(store, payouter.New(payouter.Config{TestMode: true}))

	router := chi.NewRouter()
	invoiceHandler.NewHandler(svc).Routes(router)

	return router, store
}

func do(t *testing.T, router chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestCreate_RoundTrip(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(t, router, http.MethodPost, "/invoice/payin", `{"amount": 100, "currency": "USD"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Invoice struct {
			ID         string  `json:"id"`
			ExternalID string  `json:"externalId"`
			Type       string  `json:"type"`
			Amount     float64 `json:"amount"`
			Currency   string  `json:"currency"`
			Status     string  `json:"status"`
		} `json:"invoice"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	assert.NotEmpty(t, created.Invoice.ID)
	assert.Equal(t, "payin", created.Invoice.Type)
	assert.Equal(t, 100.0, created.Invoice.Amount)
	assert.Equal(t, "USD", created.Invoice.Currency)
	assert.Equal(t, "PENDING", created.Invoice.Status)

	rec = do(t, router, http.MethodGet, "/status/"+created.Invoice.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched struct {
		Invoice struct {
			ID       string  `json:"id"`
			Amount   float64 `json:"amount"`
			Currency string  `json:"currency"`
			Type     string  `json:"type"`
		} `json:"invoice"`
		External map[string]any `json:"external"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))

	assert.Equal(t, created.Invoice.ID, fetched.Invoice.ID)
	assert.Equal(t, 100.0, fetched.Invoice.Amount)
	assert.Equal(t, "USD", fetched.Invoice.Currency)
	assert.Equal(t, "payin", fetched.Invoice.Type)

	// Test-mode client reports SUCCESS for any status probe.
	require.NotNil(t, fetched.External)
	assert.Equal(t, "SUCCESS", fetched.External["status"])
}

func TestCreate_Payout(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(t, router, http.MethodPost, "/invoice/payout", `{"amount": 50, "currency": "EUR"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Invoice struct {
			ExternalID string `json:"externalId"`
			Type       string `json:"type"`
		} `json:"invoice"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	assert.Equal(t, "payout", created.Invoice.Type)
	assert.True(t, strings.HasPrefix(created.Invoice.ExternalID, "test_payout_"))
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "MissingAmount", body: `{"currency": "USD"}`},
		{name: "NonNumericAmount", body: `{"amount": "abc", "currency": "USD"}`},
		{name: "EmptyCurrency", body: `{"amount": 100, "currency": ""}`},
		{name: "MissingCurrency", body: `{"amount": 100}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, store := newRouter(t)

			rec := do(t, router, http.MethodPost, "/invoice/payin", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			all, err := store.ListInvoices(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all, "validation failure must not persist anything")
		})
	}
}

func TestStatus_UnknownID(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(t, router, http.MethodGet, "/status/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatus_DualKeyLookup(t *testing.T) {
	router, store := newRouter(t)

	require.NoError(t, store.SaveInvoice(context.Background(), &invoice.Invoice{
		ID:         "local-1",
		ExternalID: "ext-1",
		Type:       invoice.TypePayIn,
		Amount:     10,
		Currency:   "USD",
		Status:     invoice.StatusPending,
	}))

	for _, key := range []string{"local-1", "ext-1"} {
		rec := do(t, router, http.MethodGet, "/status/"+key, "")
		require.Equal(t, http.StatusOK, rec.Code, "lookup by %s", key)

		var resp struct {
			Invoice struct {
				ID string `json:"id"`
			} `json:"invoice"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "local-1", resp.Invoice.ID)
	}
}

func TestList(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(t, router, http.MethodGet, "/invoices", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"invoices": []}`, rec.Body.String())

	do(t, router, http.MethodPost, "/invoice/payin", `{"amount": 100, "currency": "USD"}`)

	rec = do(t, router, http.MethodGet, "/invoices", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Invoices []map[string]any `json:"invoices"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Invoices, 1)
}
