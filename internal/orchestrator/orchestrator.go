// Package orchestrator shapes gateway requests for each transaction family,
// applies the per-variant field rules, and keeps the identifier and
// payment-token bookkeeping needed to chain operations to prior ones.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tapterm/tapterm/internal/config"
	"github.com/tapterm/tapterm/internal/domain"
	"github.com/tapterm/tapterm/internal/gate"
	"github.com/tapterm/tapterm/internal/money"
	"github.com/tapterm/tapterm/internal/ports"
)

// Orchestrator builds gateway requests from caller parameters and in-memory
// state (prior transaction id, stored payment tokens) and records resulting
// identifiers for chaining. Operations are serialized by a single-slot gate;
// overlapping calls are rejected with a session-busy error. No operation is
// retried; every failure is surfaced to the caller as-is.
type Orchestrator struct {
	gateway  ports.GatewayClient
	journal  ports.TransactionJournal
	logger   *slog.Logger
	merchant domain.MerchantDetails
	currency string
	gate     gate.Gate

	mu                     sync.Mutex
	referenceTransactionID string
	authTransactionID      string
	paymentTokens          []domain.PaymentToken
	createToken            bool
}

func New(cfg config.GatewayConfig, gateway ports.GatewayClient, journal ports.TransactionJournal, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		gateway: gateway,
		journal: journal,
		logger:  logger,
		merchant: domain.MerchantDetails{
			MerchantID: cfg.MerchantID,
			TerminalID: cfg.TerminalID,
		},
		currency: cfg.CurrencyCode,
	}
}

// ReferenceTransactionID returns the last-known gateway transaction id, used
// to chain cancels, refunds and inquiries.
func (o *Orchestrator) ReferenceTransactionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.referenceTransactionID
}

// SetReferenceTransactionID overrides the chained reference, e.g. when the
// caller supplies a transaction id from an earlier run.
func (o *Orchestrator) SetReferenceTransactionID(id string) {
	o.mu.Lock()
	o.referenceTransactionID = id
	o.mu.Unlock()
}

// AuthTransactionID returns the id of an authorization awaiting capture.
func (o *Orchestrator) AuthTransactionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.authTransactionID
}

// PaymentTokens returns a copy of the stored payment tokens.
func (o *Orchestrator) PaymentTokens() []domain.PaymentToken {
	o.mu.Lock()
	defer o.mu.Unlock()
	tokens := make([]domain.PaymentToken, len(o.paymentTokens))
	copy(tokens, o.paymentTokens)
	return tokens
}

// ClearPaymentTokens drops the stored payment tokens.
func (o *Orchestrator) ClearPaymentTokens() {
	o.mu.Lock()
	o.paymentTokens = nil
	o.mu.Unlock()
}

// SetCreateToken arms the create-token flag for the next token-minting
// request. The flag is consumed by exactly one request and resets regardless
// of that request's outcome.
func (o *Orchestrator) SetCreateToken(v bool) {
	o.mu.Lock()
	o.createToken = v
	o.mu.Unlock()
}

// CreateToken reports whether the create-token flag is armed.
func (o *Orchestrator) CreateToken() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.createToken
}

func (o *Orchestrator) consumeCreateToken() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	v := o.createToken
	o.createToken = false
	return v
}

func (o *Orchestrator) firstStoredToken() *domain.PaymentToken {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.paymentTokens) == 0 {
		return nil
	}
	t := o.paymentTokens[0]
	return &t
}

func (o *Orchestrator) amount(total decimal.Decimal) domain.Amount {
	return domain.Amount{Total: money.Normalize(total), Currency: o.currency}
}

func tapSource() *domain.PaymentSource {
	return &domain.PaymentSource{SourceType: domain.SourceTapToPay}
}

// updateChainedState records the gateway transaction id for subsequent
// chained operations and extracts any issued payment tokens.
func (o *Orchestrator) updateChainedState(resp *domain.ChargeResponse) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch resp.State() {
	case domain.StateCaptured:
		o.referenceTransactionID = resp.TransactionID()
		o.storeTokensLocked(resp)
	case domain.StateAuthorized:
		o.referenceTransactionID = resp.TransactionID()
		o.authTransactionID = resp.TransactionID()
		o.storeTokensLocked(resp)
	}
}

// storeTokensLocked applies the shared token-extraction rule: each returned
// token becomes a stored payment token with decline-duplicates set and the
// expiration copied from the response's source card. The stored list is
// replaced wholesale, never appended to. Idempotent per response.
func (o *Orchestrator) storeTokensLocked(resp *domain.ChargeResponse) {
	if len(resp.PaymentTokens) == 0 {
		return
	}

	var month, year string
	if resp.Source != nil {
		month = resp.Source.ExpirationMonth
		year = resp.Source.ExpirationYear
	}

	tokens := make([]domain.PaymentToken, 0, len(resp.PaymentTokens))
	for _, issued := range resp.PaymentTokens {
		tokens = append(tokens, domain.PaymentToken{
			SourceType:        domain.SourcePaymentToken,
			TokenData:         issued.TokenData,
			TokenSource:       issued.TokenSource,
			DeclineDuplicates: true,
			ExpirationMonth:   month,
			ExpirationYear:    year,
		})
	}
	o.paymentTokens = tokens
}

// recordJournal writes the completed transaction to the local journal. The
// journal is best-effort: a write failure is logged, never returned.
func (o *Orchestrator) recordJournal(ctx context.Context, txType string, amount domain.Amount, merchantTransactionID, merchantOrderID string, resp *domain.ChargeResponse) {
	if o.journal == nil {
		return
	}

	entry := &ports.JournalEntry{
		ID:                    uuid.New(),
		TransactionType:       txType,
		GatewayTransactionID:  resp.TransactionID(),
		OrderID:               resp.OrderID(),
		MerchantTransactionID: merchantTransactionID,
		MerchantOrderID:       merchantOrderID,
		AmountCents:           amount.Total.Shift(2).IntPart(),
		Currency:              amount.Currency,
		State:                 string(resp.State()),
		CreatedAt:             time.Now().UTC(),
	}

	if err := o.journal.Record(ctx, entry); err != nil {
		o.logger.Warn("journal write failed",
			"transaction_id", entry.GatewayTransactionID,
			"error", err,
		)
	}
}
