package orchestrator

import (
	"context"

	"github.com/tapterm/tapterm/internal/domain"
)

// VerificationParams are the caller-supplied parameters for account
// verification.
type VerificationParams struct {
	// BillingAddress opts in to address verification; when nil the billing
	// block is omitted entirely.
	BillingAddress *domain.BillingAddress

	CreateToken bool

	MerchantTransactionID string
	MerchantOrderID       string
	MerchantInvoiceNumber string
}

// VerifyAccount verifies a card without moving funds. The capture flag is
// always false. A stored payment token is used instead of a card read when
// one is present.
func (o *Orchestrator) VerifyAccount(ctx context.Context, p VerificationParams) (*domain.ChargeResponse, error) {
	if !o.gate.TryAcquire() {
		return nil, domain.NewSessionBusyError("account verification")
	}
	defer o.gate.Release()

	createToken := p.CreateToken || o.consumeCreateToken()

	source := tapSource()
	if token := o.firstStoredToken(); token != nil {
		source = token.Source()
	}

	req := domain.VerificationRequest{
		Source: source,
		TransactionDetails: &domain.TransactionDetails{
			CaptureFlag:           false,
			CreateToken:           createToken,
			MerchantTransactionID: p.MerchantTransactionID,
			MerchantOrderID:       p.MerchantOrderID,
			MerchantInvoiceNumber: p.MerchantInvoiceNumber,
		},
		BillingAddress:  p.BillingAddress,
		MerchantDetails: o.merchant,
	}

	resp, err := o.gateway.VerifyAccount(ctx, req)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.storeTokensLocked(resp)
	o.mu.Unlock()

	o.recordJournal(ctx, "VERIFICATION", domain.Amount{Currency: o.currency}, p.MerchantTransactionID, p.MerchantOrderID, resp)
	return resp, nil
}

// TokenizeParams are the caller-supplied parameters for card tokenization.
type TokenizeParams struct {
	MerchantTransactionID string
	MerchantOrderID       string
	MerchantInvoiceNumber string
}

// Tokenize reads a physical card and stores the returned payment token(s)
// when the gateway reports the transaction authorized.
func (o *Orchestrator) Tokenize(ctx context.Context, p TokenizeParams) (*domain.ChargeResponse, error) {
	if !o.gate.TryAcquire() {
		return nil, domain.NewSessionBusyError("tokenize")
	}
	defer o.gate.Release()

	req := domain.TokenizeRequest{
		Source: tapSource(),
		TransactionDetails: &domain.TransactionDetails{
			CaptureFlag:           false,
			CreateToken:           true,
			MerchantTransactionID: p.MerchantTransactionID,
			MerchantOrderID:       p.MerchantOrderID,
			MerchantInvoiceNumber: p.MerchantInvoiceNumber,
		},
		MerchantDetails: o.merchant,
	}

	resp, err := o.gateway.Tokenize(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.State() == domain.StateAuthorized {
		o.mu.Lock()
		o.storeTokensLocked(resp)
		o.mu.Unlock()
	}

	o.recordJournal(ctx, "TOKENIZE", domain.Amount{Currency: o.currency}, p.MerchantTransactionID, p.MerchantOrderID, resp)
	return resp, nil
}
