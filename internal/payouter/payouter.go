package payouter

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Kind selects which processor credentials and endpoints a call uses.
type Kind string

const (
	KindPayIn  Kind = "payin"
	KindPayout Kind = "payout"
)

const paymentMethodTag = "card"

// Config carries everything the client needs to talk to the processor.
// It is passed in explicitly so tests can inject a test-mode instance
// without touching the environment.
type Config struct {
	BaseURL       string
	MerchantID    string
	PaymentAPIKey string
	PayoutAPIKey  string

	// Callback endpoints advertised to the processor on invoice creation.
	// Each is independently overridable.
	CallbackURL string
	SuccessURL  string
	ErrorURL    string

	// PayoutCard is the recipient card for disbursements.
	PayoutCard string

	// Endpoint paths are processor configuration, not protocol.
	PayInPath        string
	PayoutPath       string
	PayInStatusPath  string
	PayoutStatusPath string

	// TestMode short-circuits every call to a deterministic local result
	// with no network access.
	TestMode bool

	Timeout time.Duration
}

func (c Config) payInPath() string {
	if c.PayInPath != "" {
		return c.PayInPath
	}

	return "/payments/invoices"
}

func (c Config) payoutPath() string {
	if c.PayoutPath != "" {
		return c.PayoutPath
	}

	return "/payouts/invoices"
}

func (c Config) statusPath(kind Kind) string {
	if kind == KindPayout {
		if c.PayoutStatusPath != "" {
			return c.PayoutStatusPath
		}

		return "/payouts/invoices/status"
	}

	if c.PayInStatusPath != "" {
		return c.PayInStatusPath
	}

	return "/payments/invoices/status"
}

func (c Config) apiKey(kind Kind) string {
	if kind == KindPayout {
		return c.PayoutAPIKey
	}

	return c.PaymentAPIKey
}

// Result is the processor's response, kept opaque because its shape is not
// contractually fixed. Consumers must tolerate unknown extra fields.
type Result map[string]any

// InvoiceID returns the invoice identifier the processor assigned, trying
// "id" first and falling back to "invoiceId". Empty string when absent.
func (r Result) InvoiceID() string {
	if v, ok := r["id"].(string); ok && v != "" {
		return v
	}

	if v, ok := r["invoiceId"].(string); ok {
		return v
	}

	return ""
}

// Status returns the reported status, trying "status" then "state".
func (r Result) Status() string {
	if v, ok := r["status"].(string); ok && v != "" {
		return v
	}

	if v, ok := r["state"].(string); ok {
		return v
	}

	return ""
}

// StatusError is a non-2xx processor response. The caller decides whether
// to retry; the client never does.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("processor returned status %d: %s", e.Code, e.Body)
}

// Client issues single-attempt requests against the payment processor.
type Client struct {
	cfg    Config
	client *http.Client
	now    func() time.Time
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

// CreatePayIn registers a collection invoice with the processor.
func (c *Client) CreatePayIn(ctx context.Context, amount float64, currency string) (Result, error) {
	if c.cfg.TestMode {
		return c.testCreate("test_payin_", amount, currency), nil
	}

	payload := map[string]any{
		"amount":        strconv.FormatFloat(amount, 'f', -1, 64),
		"currency":      currency,
		"orderId":       newOrderID(),
		"paymentMethod": paymentMethodTag,
		"callbackUrl":   c.cfg.CallbackURL,
		"successUrl":    c.cfg.SuccessURL,
		"errorUrl":      c.cfg.ErrorURL,
		"merchantId":    c.cfg.MerchantID,
	}

	return c.post(ctx, c.cfg.payInPath(), payload, c.cfg.PaymentAPIKey)
}

// CreatePayout registers a disbursement invoice with the processor.
func (c *Client) CreatePayout(ctx context.Context, amount float64, currency string) (Result, error) {
	if c.cfg.TestMode {
		return c.testCreate("test_payout_", amount, currency), nil
	}

	payload := map[string]any{
		"amount":      strconv.FormatFloat(amount, 'f', -1, 64),
		"currency":    currency,
		"orderId":     newOrderID(),
		"card":        c.cfg.PayoutCard,
		"payoutType":  paymentMethodTag,
		"callbackUrl": c.cfg.CallbackURL,
		"merchantId":  c.cfg.MerchantID,
	}

	return c.post(ctx, c.cfg.payoutPath(), payload, c.cfg.PayoutAPIKey)
}

// GetStatus asks the processor for the current state of an invoice.
func (c *Client) GetStatus(ctx context.Context, externalID string, kind Kind) (Result, error) {
	if c.cfg.TestMode {
		return Result{"id": externalID, "status": "SUCCESS", "type": string(kind)}, nil
	}

	payload := map[string]any{
		"orderId":    externalID,
		"merchantId": c.cfg.MerchantID,
	}

	return c.post(ctx, c.cfg.statusPath(kind), payload, c.cfg.apiKey(kind))
}

func (c *Client) testCreate(prefix string, amount float64, currency string) Result {
	id := fmt.Sprintf("%s%d", prefix, c.now().UnixMilli())

	return Result{
		"id":        id,
		"invoiceId": id,
		"status":    "pending",
		"amount":    amount,
		"currency":  currency,
	}
}

// newOrderID generates the fresh order identifier attached to create
// requests so the processor can tell retried submissions apart.
func newOrderID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}

	return hex.EncodeToString(b)
}

func (c *Client) post(ctx context.Context, path string, payload map[string]any, apiKey string) (Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Signature", Sign(payload, apiKey))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(raw)}
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return result, nil
}
