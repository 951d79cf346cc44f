package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tapterm/tapterm/internal/ports"
)

type Journal struct {
	db *pgxpool.Pool
}

func NewJournal(db *pgxpool.Pool) *Journal {
	return &Journal{db: db}
}

func (j *Journal) Record(ctx context.Context, entry *ports.JournalEntry) error {
	query := `
		INSERT INTO transaction_journal (
			id, transaction_type, gateway_transaction_id, order_id,
			merchant_transaction_id, merchant_order_id,
			amount_cents, currency, state, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := j.db.Exec(ctx, query,
		entry.ID,
		entry.TransactionType,
		entry.GatewayTransactionID,
		entry.OrderID,
		entry.MerchantTransactionID,
		entry.MerchantOrderID,
		entry.AmountCents,
		entry.Currency,
		entry.State,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record journal entry: %w", err)
	}
	return nil
}

func (j *Journal) FindByGatewayID(ctx context.Context, gatewayTransactionID string) (*ports.JournalEntry, error) {
	query := `
		SELECT id, transaction_type, gateway_transaction_id, order_id,
		       merchant_transaction_id, merchant_order_id,
		       amount_cents, currency, state, created_at
		FROM transaction_journal
		WHERE gateway_transaction_id = $1
	`

	row := j.db.QueryRow(ctx, query, gatewayTransactionID)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return entry, err
}

func (j *Journal) ListRecent(ctx context.Context, limit int) ([]*ports.JournalEntry, error) {
	query := `
		SELECT id, transaction_type, gateway_transaction_id, order_id,
		       merchant_transaction_id, merchant_order_id,
		       amount_cents, currency, state, created_at
		FROM transaction_journal
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := j.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []*ports.JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*ports.JournalEntry, error) {
	var e ports.JournalEntry
	err := row.Scan(
		&e.ID,
		&e.TransactionType,
		&e.GatewayTransactionID,
		&e.OrderID,
		&e.MerchantTransactionID,
		&e.MerchantOrderID,
		&e.AmountCents,
		&e.Currency,
		&e.State,
		&e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan journal entry: %w", err)
	}
	return &e, nil
}
