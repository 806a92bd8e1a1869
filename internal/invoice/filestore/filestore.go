// Package filestore persists the invoice collection as a single JSON file.
// Every operation reads the whole file and rewrites it, which is fine for
// the low volumes a single merchant adapter sees. Corrupt content is
// discarded rather than crashing the process: the processor is the source
// of truth and lost local records are re-synthesized from webhooks.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/apexpay/payouter/internal/invoice"
)

type record struct {
	ID         string         `json:"id"`
	ExternalID string         `json:"externalId,omitempty"`
	Type       invoice.Type   `json:"type"`
	Amount     float64        `json:"amount"`
	Currency   string         `json:"currency"`
	CreatedAt  time.Time      `json:"createdAt"`
	Status     invoice.Status `json:"status"`
	Meta       invoice.Meta   `json:"meta,omitempty"`
}

type Store struct {
	path string

	// mu serializes every read-modify-write sequence so concurrent webhook
	// deliveries for the same invoice cannot lose updates.
	mu sync.Mutex
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) SaveInvoice(ctx context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return err
	}

	idx := -1

	for i, r := range all {
		if r.ID == inv.ID {
			idx = i
			continue
		}

		if conflicts(r, inv) {
			return fmt.Errorf("saving invoice %s: %w", inv.ID, invoice.ErrKeyConflict)
		}
	}

	rec := toRecord(inv)
	if idx == -1 {
		all = append(all, rec)
	} else {
		all[idx] = rec
	}

	return s.writeAll(all)
}

func (s *Store) GetInvoice(ctx context.Context, key string) (*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return nil, err
	}

	for _, r := range all {
		if r.ID == key || (r.ExternalID != "" && r.ExternalID == key) {
			return fromRecord(r), nil
		}
	}

	return nil, invoice.ErrNotFound
}

func (s *Store) UpdateStatus(ctx context.Context, key string, status invoice.Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return false, err
	}

	for i, r := range all {
		if r.ID != key && (r.ExternalID == "" || r.ExternalID != key) {
			continue
		}

		if r.Status == status {
			// Same notification delivered twice; nothing to rewrite.
			return true, nil
		}

		all[i].Status = status

		return true, s.writeAll(all)
	}

	return false, nil
}

func (s *Store) ListInvoices(ctx context.Context) ([]*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return nil, err
	}

	invs := make([]*invoice.Invoice, len(all))
	for i, r := range all {
		invs[i] = fromRecord(r)
	}

	return invs, nil
}

// conflicts reports whether inv's keys collide with a different invoice's
// identity. Ids and external ids share one lookup space, so an overlap
// would make lookups ambiguous.
func conflicts(r record, inv *invoice.Invoice) bool {
	if r.ExternalID != "" && r.ExternalID == inv.ID {
		return true
	}

	if inv.ExternalID == "" {
		return false
	}

	return r.ID == inv.ExternalID || (r.ExternalID != "" && r.ExternalID == inv.ExternalID)
}

func (s *Store) readAll() ([]record, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading invoice file: %w", err)
	}

	var all []record
	if err := json.Unmarshal(raw, &all); err != nil {
		slog.Warn("invoice file is corrupt, resetting to empty", "path", s.path, "error", err)

		if err := s.writeAll(nil); err != nil {
			return nil, err
		}

		return nil, nil
	}

	return all, nil
}

func (s *Store) writeAll(all []record) error {
	if all == nil {
		all = []record{}
	}

	raw, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling invoices: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "invoices-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("writing invoices: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing invoice file: %w", err)
	}

	return nil
}

func toRecord(inv *invoice.Invoice) record {
	return record{
		ID:         inv.ID,
		ExternalID: inv.ExternalID,
		Type:       inv.Type,
		Amount:     inv.Amount,
		Currency:   inv.Currency,
		CreatedAt:  inv.CreatedAt,
		Status:     inv.Status,
		Meta:       inv.Meta,
	}
}

func fromRecord(r record) *invoice.Invoice {
	return &invoice.Invoice{
		ID:         r.ID,
		ExternalID: r.ExternalID,
		Type:       r.Type,
		Amount:     r.Amount,
		Currency:   r.Currency,
		CreatedAt:  r.CreatedAt,
		Status:     r.Status,
		Meta:       r.Meta,
	}
}
