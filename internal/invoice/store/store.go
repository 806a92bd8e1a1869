// Package store is the Postgres-backed invoice repository, the durable
// alternative to the default flat-file store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/apexpay/payouter/internal/invoice"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectInvoiceColumns = `
	id, external_id, type, amount, currency, status, meta, created_at
`

func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var externalID sql.NullString

	var typeStr, statusStr string

	var meta []byte

	if err := s.Scan(
		&inv.ID, &externalID, &typeStr, &inv.Amount, &inv.Currency, &statusStr, &meta, &inv.CreatedAt,
	); err != nil {
		return nil, err
	}

	inv.ExternalID = externalID.String
	inv.Type = invoice.Type(typeStr)
	inv.Status = invoice.Status(statusStr)

	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &inv.Meta); err != nil {
			return nil, fmt.Errorf("decoding invoice meta: %w", err)
		}
	}

	return &inv, nil
}

func (s *Store) SaveInvoice(ctx context.Context, inv *invoice.Invoice) error {
	meta, err := json.Marshal(inv.Meta)
	if err != nil {
		return fmt.Errorf("encoding invoice meta: %w", err)
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	// Ids and external ids share one identity space; refuse to persist an
	// invoice whose keys would collide with a different invoice.
	conflictQuery := `
		SELECT EXISTS (
			SELECT 1 FROM invoices
			WHERE id <> $1
			  AND (external_id = $1
			    OR ($2 <> '' AND (id = $2 OR external_id = $2)))
		)
	`

	var conflict bool
	if err := dbTx.QueryRowContext(ctx, conflictQuery, inv.ID, inv.ExternalID).Scan(&conflict); err != nil {
		return fmt.Errorf("checking key conflict: %w", err)
	}

	if conflict {
		return fmt.Errorf("saving invoice %s: %w", inv.ID, invoice.ErrKeyConflict)
	}

	upsertQuery := `
		INSERT INTO invoices (id, external_id, type, amount, currency, status, meta, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status, meta = EXCLUDED.meta
	`

	if _, err := dbTx.ExecContext(ctx, upsertQuery,
		inv.ID,
		inv.ExternalID,
		inv.Type,
		inv.Amount,
		inv.Currency,
		inv.Status,
		meta,
		inv.CreatedAt,
	); err != nil {
		return fmt.Errorf("saving invoice: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing invoice save: %w", err)
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, key string) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices
		WHERE id = $1 OR external_id = $1`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return inv, nil
}

func (s *Store) UpdateStatus(ctx context.Context, key string, status invoice.Status) (bool, error) {
	query := `
		UPDATE invoices
		SET status = $1
		WHERE id = $2 OR external_id = $2
	`

	res, err := s.db.ExecContext(ctx, query, status, key)
	if err != nil {
		return false, fmt.Errorf("updating invoice status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}

	return affected > 0, nil
}

func (s *Store) ListInvoices(ctx context.Context) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices
		ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invs []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invs = append(invs, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	return invs, nil
}
