package gateway_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapterm/tapterm/internal/domain"
	"github.com/tapterm/tapterm/internal/infrastructure/gateway"
)

func newSimulator(t *testing.T, opts ...gateway.Option) *gateway.Simulator {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return gateway.NewSimulator(logger, opts...)
}

func activateSession(t *testing.T, sim *gateway.Simulator) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, sim.RequestSessionToken(ctx))
	require.NoError(t, sim.InitializeSession(ctx))
}

func usd(total string) domain.Amount {
	return domain.Amount{Total: decimal.RequireFromString(total), Currency: "USD"}
}

func tapChargeRequest(total string) domain.ChargeRequest {
	return domain.ChargeRequest{
		Amount:             usd(total),
		Source:             &domain.PaymentSource{SourceType: domain.SourceTapToPay},
		TransactionDetails: &domain.TransactionDetails{CaptureFlag: true},
	}
}

func TestReaderIsSupported(t *testing.T) {
	assert.True(t, newSimulator(t).ReaderIsSupported())
	assert.False(t, newSimulator(t, gateway.WithReaderUnsupported()).ReaderIsSupported())
}

func TestSessionTokenFailureMode(t *testing.T) {
	sim := newSimulator(t, gateway.WithSessionTokenFailure())

	err := sim.RequestSessionToken(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeGateway))
}

func TestSessionOperationsRequireToken(t *testing.T) {
	sim := newSimulator(t)
	ctx := context.Background()

	_, err := sim.IsAccountLinked(ctx)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeGateway))

	err = sim.LinkAccount(ctx)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeGateway))

	err = sim.InitializeSession(ctx)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeGateway))
}

func TestLinkAccountFlipsLinkStatus(t *testing.T) {
	sim := newSimulator(t)
	ctx := context.Background()
	require.NoError(t, sim.RequestSessionToken(ctx))

	linked, err := sim.IsAccountLinked(ctx)
	require.NoError(t, err)
	assert.False(t, linked)

	require.NoError(t, sim.LinkAccount(ctx))

	linked, err = sim.IsAccountLinked(ctx)
	require.NoError(t, err)
	assert.True(t, linked)
}

func TestValidateCardRequiresActiveSession(t *testing.T) {
	sim := newSimulator(t)
	ctx := context.Background()
	require.NoError(t, sim.RequestSessionToken(ctx))

	_, err := sim.ValidateCard(ctx)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeGateway))

	require.NoError(t, sim.InitializeSession(ctx))

	resp, err := sim.ValidateCard(ctx)
	require.NoError(t, err)
	assert.NotNil(t, resp.GeneralCardData)
	assert.NotNil(t, resp.PaymentCardData)
}

func TestChargeCardReadRequiresActiveSession(t *testing.T) {
	sim := newSimulator(t)
	ctx := context.Background()
	require.NoError(t, sim.RequestSessionToken(ctx))

	_, err := sim.Charge(ctx, tapChargeRequest("5.00"))
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeGateway))
}

func TestChargeAfterSessionDropFails(t *testing.T) {
	sim := newSimulator(t)
	activateSession(t, sim)
	ctx := context.Background()

	_, err := sim.Charge(ctx, tapChargeRequest("5.00"))
	require.NoError(t, err)

	sim.DropSession()
	_, err = sim.Charge(ctx, tapChargeRequest("5.00"))
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeGateway))
}

func TestChargeStateFollowsCaptureFlag(t *testing.T) {
	sim := newSimulator(t)
	activateSession(t, sim)
	ctx := context.Background()

	sale, err := sim.Charge(ctx, tapChargeRequest("5.00"))
	require.NoError(t, err)
	assert.Equal(t, domain.StateCaptured, sale.State())
	assert.NotEmpty(t, sale.TransactionID())
	assert.NotEmpty(t, sale.OrderID())

	auth, err := sim.Charge(ctx, domain.ChargeRequest{
		Amount:             usd("10.00"),
		Source:             &domain.PaymentSource{SourceType: domain.SourceTapToPay},
		TransactionDetails: &domain.TransactionDetails{CaptureFlag: false},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateAuthorized, auth.State())
}

func TestCaptureRequiresKnownReference(t *testing.T) {
	sim := newSimulator(t)
	activateSession(t, sim)
	ctx := context.Background()

	capture := func(ref *domain.ReferenceTransactionDetails) (*domain.ChargeResponse, error) {
		return sim.Charge(ctx, domain.ChargeRequest{
			Amount:                      usd("10.00"),
			TransactionDetails:          &domain.TransactionDetails{CaptureFlag: true},
			ReferenceTransactionDetails: ref,
		})
	}

	_, err := capture(nil)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeGateway))

	_, err = capture(&domain.ReferenceTransactionDetails{ReferenceTransactionID: "no-such-txn"})
	require.Error(t, err)

	auth, err := sim.Charge(ctx, domain.ChargeRequest{
		Amount:             usd("10.00"),
		Source:             &domain.PaymentSource{SourceType: domain.SourceTapToPay},
		TransactionDetails: &domain.TransactionDetails{CaptureFlag: false},
	})
	require.NoError(t, err)

	resp, err := capture(&domain.ReferenceTransactionDetails{ReferenceTransactionID: auth.TransactionID()})
	require.NoError(t, err)
	assert.Equal(t, domain.StateCaptured, resp.State())
}

func TestTokenSourcedChargeIsSessionless(t *testing.T) {
	sim := newSimulator(t)
	ctx := context.Background()

	// No token, no session: token-sourced charges bypass the reader entirely.
	resp, err := sim.Charge(ctx, domain.ChargeRequest{
		Amount: usd("7.50"),
		Source: &domain.PaymentSource{
			SourceType: domain.SourcePaymentToken,
			TokenData:  "tok-abc",
		},
		TransactionDetails: &domain.TransactionDetails{CaptureFlag: true},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateCaptured, resp.State())
}

func TestChargeMintsTokenOnRequest(t *testing.T) {
	sim := newSimulator(t)
	activateSession(t, sim)
	ctx := context.Background()

	resp, err := sim.Charge(ctx, domain.ChargeRequest{
		Amount:             usd("5.00"),
		Source:             &domain.PaymentSource{SourceType: domain.SourceTapToPay},
		TransactionDetails: &domain.TransactionDetails{CaptureFlag: true, CreateToken: true},
	})
	require.NoError(t, err)

	require.Len(t, resp.PaymentTokens, 1)
	assert.NotEmpty(t, resp.PaymentTokens[0].TokenData)
	require.NotNil(t, resp.Source)
	assert.Equal(t, "12", resp.Source.ExpirationMonth)
	assert.Equal(t, "2030", resp.Source.ExpirationYear)
}

func TestMatchedRefundRequiresReference(t *testing.T) {
	sim := newSimulator(t)
	ctx := context.Background()

	_, err := sim.Refund(ctx, domain.RefundRequest{Amount: usd("5.00")})
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeGateway))
}

func TestMatchedRefundResolvesKnownReference(t *testing.T) {
	sim := newSimulator(t)
	activateSession(t, sim)
	ctx := context.Background()

	sale, err := sim.Charge(ctx, tapChargeRequest("5.00"))
	require.NoError(t, err)

	resp, err := sim.Refund(ctx, domain.RefundRequest{
		Amount: usd("5.00"),
		ReferenceTransactionDetails: &domain.ReferenceTransactionDetails{
			ReferenceTransactionID: sale.TransactionID(),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateCaptured, resp.State())
}

func TestOpenRefundReadsCard(t *testing.T) {
	sim := newSimulator(t)
	activateSession(t, sim)
	ctx := context.Background()

	resp, err := sim.Refund(ctx, domain.RefundRequest{
		Amount:             usd("3.00"),
		Source:             &domain.PaymentSource{SourceType: domain.SourceTapToPay},
		TransactionDetails: &domain.TransactionDetails{CaptureFlag: true},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateCaptured, resp.State())
	assert.NotNil(t, resp.Source)
}

func TestCancelVoidsKnownTransaction(t *testing.T) {
	sim := newSimulator(t)
	activateSession(t, sim)
	ctx := context.Background()

	sale, err := sim.Charge(ctx, tapChargeRequest("5.00"))
	require.NoError(t, err)

	resp, err := sim.Cancel(ctx, domain.CancelRequest{
		Amount: usd("5.00"),
		ReferenceTransactionDetails: domain.ReferenceTransactionDetails{
			ReferenceTransactionID: sale.TransactionID(),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateVoided, resp.State())
}

func TestCancelWithoutReferenceFails(t *testing.T) {
	sim := newSimulator(t)
	ctx := context.Background()

	_, err := sim.Cancel(ctx, domain.CancelRequest{Amount: usd("5.00")})
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeGateway))
}

func TestInquireMatchesByAnyIdentifier(t *testing.T) {
	sim := newSimulator(t)
	activateSession(t, sim)
	ctx := context.Background()

	sale, err := sim.Charge(ctx, domain.ChargeRequest{
		Amount: usd("5.00"),
		Source: &domain.PaymentSource{SourceType: domain.SourceTapToPay},
		TransactionDetails: &domain.TransactionDetails{
			CaptureFlag:           true,
			MerchantTransactionID: "tid987",
			MerchantOrderID:       "oid123",
		},
	})
	require.NoError(t, err)

	refs := []domain.ReferenceTransactionDetails{
		{ReferenceTransactionID: sale.TransactionID()},
		{ReferenceOrderID: sale.OrderID()},
		{ReferenceMerchantTransactionID: "tid987"},
		{ReferenceMerchantOrderID: "oid123"},
	}
	for _, ref := range refs {
		matches, err := sim.Inquire(ctx, domain.InquiryRequest{ReferenceTransactionDetails: ref})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, sale.TransactionID(), matches[0].TransactionID())
	}

	matches, err := sim.Inquire(ctx, domain.InquiryRequest{
		ReferenceTransactionDetails: domain.ReferenceTransactionDetails{
			ReferenceTransactionID: "no-such-txn",
		},
	})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestVerifyAccountAuthorizesWithoutFunds(t *testing.T) {
	sim := newSimulator(t)
	activateSession(t, sim)
	ctx := context.Background()

	resp, err := sim.VerifyAccount(ctx, domain.VerificationRequest{
		Source:             &domain.PaymentSource{SourceType: domain.SourceTapToPay},
		TransactionDetails: &domain.TransactionDetails{CaptureFlag: false},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateAuthorized, resp.State())
}

func TestTokenizeAlwaysMintsToken(t *testing.T) {
	sim := newSimulator(t)
	activateSession(t, sim)
	ctx := context.Background()

	resp, err := sim.Tokenize(ctx, domain.TokenizeRequest{
		Source:             &domain.PaymentSource{SourceType: domain.SourceTapToPay},
		TransactionDetails: &domain.TransactionDetails{CreateToken: true},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateAuthorized, resp.State())
	require.Len(t, resp.PaymentTokens, 1)
	require.NotNil(t, resp.Source)
	assert.Equal(t, "1111", resp.Source.Last4)
}

func TestCancelledContextSurfacesGatewayError(t *testing.T) {
	sim := newSimulator(t)
	activateSession(t, sim)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Charge(ctx, tapChargeRequest("5.00"))
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeGateway))

	var gwErr *domain.CardReaderError
	require.ErrorAs(t, err, &gwErr)
	assert.ErrorIs(t, gwErr.Err, context.Canceled)
}
