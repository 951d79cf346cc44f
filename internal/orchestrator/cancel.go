package orchestrator

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tapterm/tapterm/internal/domain"
)

// CancelParams identify the prior transaction to void. Any combination of
// identifiers may be supplied; the gateway resolves them.
type CancelParams struct {
	Amount decimal.Decimal

	ReferenceTransactionID         string
	ReferenceOrderID               string
	ReferenceMerchantTransactionID string
	ReferenceMerchantOrderID       string
}

// Cancel voids a prior transaction by reference. Sessionless, no card read.
func (o *Orchestrator) Cancel(ctx context.Context, p CancelParams) (*domain.ChargeResponse, error) {
	if !o.gate.TryAcquire() {
		return nil, domain.NewSessionBusyError("cancel")
	}
	defer o.gate.Release()

	req := domain.CancelRequest{
		Amount: o.amount(p.Amount),
		ReferenceTransactionDetails: domain.ReferenceTransactionDetails{
			ReferenceTransactionID:         p.ReferenceTransactionID,
			ReferenceOrderID:               p.ReferenceOrderID,
			ReferenceMerchantTransactionID: p.ReferenceMerchantTransactionID,
			ReferenceMerchantOrderID:       p.ReferenceMerchantOrderID,
		},
		MerchantDetails: o.merchant,
	}

	resp, err := o.gateway.Cancel(ctx, req)
	if err != nil {
		return nil, err
	}

	o.recordJournal(ctx, "CANCEL", req.Amount, p.ReferenceMerchantTransactionID, p.ReferenceMerchantOrderID, resp)
	return resp, nil
}

// Void is the cancel operation under its gateway name.
func (o *Orchestrator) Void(ctx context.Context, p CancelParams) (*domain.ChargeResponse, error) {
	return o.Cancel(ctx, p)
}

// InquiryParams identify the prior transaction(s) to look up.
type InquiryParams struct {
	ReferenceTransactionID         string
	ReferenceMerchantTransactionID string
	ReferenceOrderID               string
	ReferenceMerchantOrderID       string
}

// Inquire returns zero or more transaction records matching the supplied
// identifiers. Read-only and sessionless; no state is chained.
func (o *Orchestrator) Inquire(ctx context.Context, p InquiryParams) ([]domain.ChargeResponse, error) {
	if !o.gate.TryAcquire() {
		return nil, domain.NewSessionBusyError("inquiry")
	}
	defer o.gate.Release()

	req := domain.InquiryRequest{
		ReferenceTransactionDetails: domain.ReferenceTransactionDetails{
			ReferenceTransactionID:         p.ReferenceTransactionID,
			ReferenceMerchantTransactionID: p.ReferenceMerchantTransactionID,
			ReferenceOrderID:               p.ReferenceOrderID,
			ReferenceMerchantOrderID:       p.ReferenceMerchantOrderID,
		},
		MerchantDetails: o.merchant,
	}

	return o.gateway.Inquire(ctx, req)
}
