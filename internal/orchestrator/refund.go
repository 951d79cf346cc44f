package orchestrator

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tapterm/tapterm/internal/domain"
)

// RefundParams are the caller-supplied parameters for the refund family.
type RefundParams struct {
	Amount decimal.Decimal
	Type   domain.RefundType

	MerchantTransactionID string
	MerchantOrderID       string
	MerchantInvoiceNumber string

	// ReferenceTransactionID is required for matched and unmatched refunds;
	// when empty the last chained transaction id is used.
	ReferenceTransactionID string
}

// Refund runs a matched, unmatched or open refund.
//
// Field rules per variant:
//
//	type       card read   captureFlag   txn details   reference details
//	matched    no          false         no            yes (required)
//	unmatched  yes         true          yes           yes (required)
//	open       yes         true          yes           no
func (o *Orchestrator) Refund(ctx context.Context, p RefundParams) (*domain.ChargeResponse, error) {
	if !o.gate.TryAcquire() {
		return nil, domain.NewSessionBusyError("refund")
	}
	defer o.gate.Release()

	req, err := o.buildRefundRequest(p)
	if err != nil {
		return nil, err
	}

	resp, err := o.gateway.Refund(ctx, req)
	if err != nil {
		return nil, err
	}

	o.recordJournal(ctx, "REFUND_"+string(p.Type), req.Amount, p.MerchantTransactionID, p.MerchantOrderID, resp)
	return resp, nil
}

func (o *Orchestrator) buildRefundRequest(p RefundParams) (domain.RefundRequest, error) {
	req := domain.RefundRequest{
		Amount:          o.amount(p.Amount),
		MerchantDetails: o.merchant,
	}

	details := &domain.TransactionDetails{
		CaptureFlag:           true,
		MerchantTransactionID: p.MerchantTransactionID,
		MerchantOrderID:       p.MerchantOrderID,
		MerchantInvoiceNumber: p.MerchantInvoiceNumber,
	}

	switch p.Type {
	case domain.RefundMatched:
		// No card read and no merchant ids attached, only the reference.
		ref, err := o.refundReference(p)
		if err != nil {
			return domain.RefundRequest{}, err
		}
		req.ReferenceTransactionDetails = ref

	case domain.RefundUnmatched:
		ref, err := o.refundReference(p)
		if err != nil {
			return domain.RefundRequest{}, err
		}
		req.ReferenceTransactionDetails = ref
		req.Source = tapSource()
		req.TransactionDetails = details

	case domain.RefundOpen:
		req.Source = tapSource()
		req.TransactionDetails = details

	default:
		return domain.RefundRequest{}, domain.NewInvalidRequestError("Refund",
			fmt.Sprintf("unknown refund type %q", p.Type))
	}

	return req, nil
}

func (o *Orchestrator) refundReference(p RefundParams) (*domain.ReferenceTransactionDetails, error) {
	ref := p.ReferenceTransactionID
	if ref == "" {
		ref = o.ReferenceTransactionID()
	}
	if ref == "" {
		return nil, domain.NewMissingReferenceError("Refund")
	}
	return &domain.ReferenceTransactionDetails{ReferenceTransactionID: ref}, nil
}
