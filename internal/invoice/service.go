package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/apexpay/payouter/internal/payouter"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=invoice
type Repository interface {
	// SaveInvoice upserts an invoice by its id. It returns ErrKeyConflict
	// when the invoice's id or externalId collides with a different
	// invoice's key.
	SaveInvoice(ctx context.Context, inv *Invoice) error

	// GetInvoice looks an invoice up by local id or processor-assigned
	// external id. ErrNotFound when neither key matches.
	GetInvoice(ctx context.Context, key string) (*Invoice, error)

	// UpdateStatus sets the status of the invoice matching key, leaving
	// every other field untouched. The read-modify-write must be atomic
	// within the store. Returns false when no invoice matched.
	UpdateStatus(ctx context.Context, key string, status Status) (bool, error)

	ListInvoices(ctx context.Context) ([]*Invoice, error)
}

// Processor is the outbound client for the payment gateway.
type Processor interface {
	CreatePayIn(ctx context.Context, amount float64, currency string) (payouter.Result, error)
	CreatePayout(ctx context.Context, amount float64, currency string) (payouter.Result, error)
	GetStatus(ctx context.Context, externalID string, kind payouter.Kind) (payouter.Result, error)
}

type Service struct {
	repo      Repository
	processor Processor
}

func NewService(repo Repository, processor Processor) *Service {
	return &Service{repo: repo, processor: processor}
}

// Create registers an invoice with the processor and persists the local
// mirror. Nothing is persisted when the processor call fails.
func (s *Service) Create(ctx context.Context, typ Type, amount float64, currency string) (*Invoice, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be a positive number", ErrInvalidInput)
	}

	if currency == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrInvalidInput)
	}

	var (
		result payouter.Result
		err    error
	)

	switch typ {
	case TypePayout:
		result, err = s.processor.CreatePayout(ctx, amount, currency)
	case TypePayIn:
		result, err = s.processor.CreatePayIn(ctx, amount, currency)
	default:
		return nil, fmt.Errorf("%w: unknown invoice type %q", ErrInvalidInput, typ)
	}

	if err != nil {
		return nil, fmt.Errorf("creating %s invoice: %w", typ, err)
	}

	externalID := result.InvoiceID()

	id := externalID
	if id == "" {
		id = uuid.NewString()
	}

	inv := &Invoice{
		ID:         id,
		ExternalID: externalID,
		Type:       typ,
		Amount:     amount,
		Currency:   currency,
		CreatedAt:  time.Now().UTC(),
		Status:     StatusPending,
		Meta:       Meta(result),
	}

	if err := s.repo.SaveInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("saving invoice: %w", err)
	}

	return inv, nil
}

// Status returns the stored invoice for key and, when it carries an
// external id, a fresh processor-side status. A failed refresh degrades to
// the stored record alone; stale local state is an acceptable answer.
func (s *Service) Status(ctx context.Context, key string) (*Invoice, payouter.Result, error) {
	inv, err := s.repo.GetInvoice(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	if inv.ExternalID == "" {
		return inv, nil, nil
	}

	external, err := s.processor.GetStatus(ctx, inv.ExternalID, payouter.Kind(inv.Type))
	if err != nil {
		slog.Warn("failed to fetch external status", "invoice", inv.ID, "error", err)
		return inv, nil, nil
	}

	return inv, external, nil
}

func (s *Service) List(ctx context.Context) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx)
}

// ReconcileParams is a status notification already extracted from a
// processor webhook payload.
type ReconcileParams struct {
	InvoiceID string
	Status    Status
	Type      Type
	Amount    float64
	Currency  string
	Payload   Meta
}

// Reconcile applies a processor notification to the store. A known invoice
// gets its status updated in place; an unknown one is synthesized from the
// payload, which covers callbacks for invoices this instance never created
// (for example after a restart with lost local state). Applying the same
// notification twice leaves the store unchanged the second time.
func (s *Service) Reconcile(ctx context.Context, params ReconcileParams) (*Invoice, bool, error) {
	if params.InvoiceID == "" || params.Status == "" {
		return nil, false, fmt.Errorf("%w: invoice id and status are required", ErrInvalidInput)
	}

	updated, err := s.repo.UpdateStatus(ctx, params.InvoiceID, params.Status)
	if err != nil {
		return nil, false, fmt.Errorf("updating invoice status: %w", err)
	}

	if updated {
		inv, err := s.repo.GetInvoice(ctx, params.InvoiceID)
		if err != nil {
			return nil, false, fmt.Errorf("reloading invoice: %w", err)
		}

		return inv, false, nil
	}

	typ := params.Type
	if typ != TypePayout {
		typ = TypePayIn
	}

	currency := params.Currency
	if currency == "" {
		currency = "USD"
	}

	inv := &Invoice{
		ID:         params.InvoiceID,
		ExternalID: params.InvoiceID,
		Type:       typ,
		Amount:     params.Amount,
		Currency:   currency,
		CreatedAt:  time.Now().UTC(),
		Status:     params.Status,
		Meta:       params.Payload,
	}

	if err := s.repo.SaveInvoice(ctx, inv); err != nil {
		return nil, false, fmt.Errorf("saving invoice from webhook: %w", err)
	}

	return inv, true, nil
}
