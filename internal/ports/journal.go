package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JournalEntry is the local record of a completed gateway transaction. The
// journal is observability, not a ledger: the gateway remains the source of
// truth and a failed journal write never fails the transaction.
type JournalEntry struct {
	ID                    uuid.UUID
	TransactionType       string
	GatewayTransactionID  string
	OrderID               string
	MerchantTransactionID string
	MerchantOrderID       string
	AmountCents           int64
	Currency              string
	State                 string
	CreatedAt             time.Time
}

// TransactionJournal records completed transactions for local listing.
type TransactionJournal interface {
	Record(ctx context.Context, entry *JournalEntry) error
	FindByGatewayID(ctx context.Context, gatewayTransactionID string) (*JournalEntry, error)
	ListRecent(ctx context.Context, limit int) ([]*JournalEntry, error)
}
