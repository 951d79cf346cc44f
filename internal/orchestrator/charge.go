package orchestrator

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tapterm/tapterm/internal/domain"
)

// ChargeParams are the caller-supplied parameters for the charge family.
type ChargeParams struct {
	Amount decimal.Decimal
	Type   domain.TransactionType

	// CreateToken requests a payment token alongside the charge. The armed
	// SetCreateToken flag is honored as well and consumed either way.
	CreateToken bool

	// PaymentTokenSource charges a specific token instead of reading a card.
	// For the payment-token type, the first stored token is used when nil.
	PaymentTokenSource *domain.PaymentToken

	MerchantOrderID       string
	MerchantTransactionID string
	MerchantInvoiceNumber string

	// ReferenceTransactionID is required for captures; when empty the id of
	// the last authorization is used.
	ReferenceTransactionID string
}

// Charge runs a sale, auth, capture or payment-token charge.
//
// Field rules per variant:
//
//	type          source        captureFlag   txn details   reference details
//	sale          card read     true          yes           no
//	auth          card/token    false         yes           no
//	capture       none          true          yes           yes (required)
//	paymentToken  stored token  true          yes           no
func (o *Orchestrator) Charge(ctx context.Context, p ChargeParams) (*domain.ChargeResponse, error) {
	if !o.gate.TryAcquire() {
		return nil, domain.NewSessionBusyError("charge")
	}
	defer o.gate.Release()

	req, err := o.buildChargeRequest(p)
	if err != nil {
		return nil, err
	}

	resp, err := o.gateway.Charge(ctx, req)
	if err != nil {
		return nil, err
	}

	o.updateChainedState(resp)
	o.recordJournal(ctx, string(p.Type), req.Amount, p.MerchantTransactionID, p.MerchantOrderID, resp)
	return resp, nil
}

func (o *Orchestrator) buildChargeRequest(p ChargeParams) (domain.ChargeRequest, error) {
	createToken := p.CreateToken || o.consumeCreateToken()

	req := domain.ChargeRequest{
		Amount: o.amount(p.Amount),
		TransactionDetails: &domain.TransactionDetails{
			CaptureFlag:           p.Type != domain.TransactionAuth,
			CreateToken:           createToken,
			MerchantTransactionID: p.MerchantTransactionID,
			MerchantOrderID:       p.MerchantOrderID,
			MerchantInvoiceNumber: p.MerchantInvoiceNumber,
		},
		MerchantDetails: o.merchant,
	}

	switch p.Type {
	case domain.TransactionSale:
		req.Source = tapSource()

	case domain.TransactionAuth:
		if p.PaymentTokenSource != nil {
			req.Source = p.PaymentTokenSource.Source()
		} else {
			req.Source = tapSource()
		}

	case domain.TransactionCapture:
		ref := p.ReferenceTransactionID
		if ref == "" {
			ref = o.AuthTransactionID()
		}
		if ref == "" {
			return domain.ChargeRequest{}, domain.NewMissingReferenceError("Capture")
		}
		req.ReferenceTransactionDetails = &domain.ReferenceTransactionDetails{
			ReferenceTransactionID: ref,
		}

	case domain.TransactionPaymentToken:
		token := p.PaymentTokenSource
		if token == nil {
			token = o.firstStoredToken()
		}
		if token == nil {
			return domain.ChargeRequest{}, domain.NewMissingPaymentTokenError("Sale from Token")
		}
		req.Source = token.Source()

	default:
		return domain.ChargeRequest{}, domain.NewInvalidRequestError("Charge",
			fmt.Sprintf("unknown transaction type %q", p.Type))
	}

	return req, nil
}
