// Package ports declares the interfaces the orchestration core depends on.
package ports

import (
	"context"

	"github.com/tapterm/tapterm/internal/domain"
)

// GatewayClient is the vendor card-reader/payment SDK collaborator. It owns
// session establishment, physical tap capture and the signed gateway calls;
// the core treats it as a black box with one operation per transaction
// family. Operations that involve a physical tap block until the user taps
// or ctx is cancelled; a cancelled network leg surfaces as a gateway error.
type GatewayClient interface {
	// ReaderIsSupported reports hardware/software eligibility. No side effects.
	ReaderIsSupported() bool

	RequestSessionToken(ctx context.Context) error
	IsAccountLinked(ctx context.Context) (bool, error)
	LinkAccount(ctx context.Context) error
	InitializeSession(ctx context.Context) error
	ValidateCard(ctx context.Context) (*domain.ValidateCardResponse, error)

	Charge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResponse, error)
	Refund(ctx context.Context, req domain.RefundRequest) (*domain.ChargeResponse, error)
	Cancel(ctx context.Context, req domain.CancelRequest) (*domain.ChargeResponse, error)
	Inquire(ctx context.Context, req domain.InquiryRequest) ([]domain.ChargeResponse, error)
	VerifyAccount(ctx context.Context, req domain.VerificationRequest) (*domain.ChargeResponse, error)
	Tokenize(ctx context.Context, req domain.TokenizeRequest) (*domain.ChargeResponse, error)
}
