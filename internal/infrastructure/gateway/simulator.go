// Package gateway provides a deterministic in-process stand-in for the
// vendor card-reader SDK and its payment gateway. It approves well-formed
// requests, assigns gateway identifiers, enforces the same session
// prerequisites the sandbox does, and rejects malformed requests the way the
// live gateway would.
package gateway

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tapterm/tapterm/internal/domain"
)

type Simulator struct {
	logger          *slog.Logger
	readerSupported bool
	tokenErr        error

	mu            sync.Mutex
	hasToken      bool
	accountLinked bool
	sessionActive bool
	transactions  map[string]domain.ChargeResponse
}

type Option func(*Simulator)

// WithReaderUnsupported simulates a device that cannot run tap to pay.
func WithReaderUnsupported() Option {
	return func(s *Simulator) {
		s.readerSupported = false
	}
}

// WithSessionTokenFailure makes every session-token request fail, e.g. to
// simulate revoked credentials.
func WithSessionTokenFailure() Option {
	return func(s *Simulator) {
		s.tokenErr = domain.NewGatewayError("Create Session Token",
			"not authorized", "credentials rejected", nil)
	}
}

func NewSimulator(logger *slog.Logger, opts ...Option) *Simulator {
	s := &Simulator{
		logger:          logger,
		readerSupported: true,
		transactions:    make(map[string]domain.ChargeResponse),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) ReaderIsSupported() bool {
	return s.readerSupported
}

func (s *Simulator) RequestSessionToken(ctx context.Context) error {
	if err := cancelled(ctx, "Create Session Token"); err != nil {
		return err
	}
	if s.tokenErr != nil {
		return s.tokenErr
	}

	s.mu.Lock()
	s.hasToken = true
	s.mu.Unlock()
	return nil
}

func (s *Simulator) IsAccountLinked(ctx context.Context) (bool, error) {
	if err := cancelled(ctx, "Account Link Status"); err != nil {
		return false, err
	}
	if err := s.requireToken("Account Link Status"); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountLinked, nil
}

func (s *Simulator) LinkAccount(ctx context.Context) error {
	if err := cancelled(ctx, "Link Apple Account"); err != nil {
		return err
	}
	if err := s.requireToken("Link Apple Account"); err != nil {
		return err
	}

	s.mu.Lock()
	s.accountLinked = true
	s.mu.Unlock()
	return nil
}

func (s *Simulator) InitializeSession(ctx context.Context) error {
	if err := cancelled(ctx, "Initialize Session"); err != nil {
		return err
	}
	if err := s.requireToken("Initialize Session"); err != nil {
		return err
	}

	s.mu.Lock()
	s.sessionActive = true
	s.mu.Unlock()
	return nil
}

// DropSession simulates loss of the reader session, e.g. the app being
// backgrounded.
func (s *Simulator) DropSession() {
	s.mu.Lock()
	s.sessionActive = false
	s.mu.Unlock()
}

func (s *Simulator) ValidateCard(ctx context.Context) (*domain.ValidateCardResponse, error) {
	if err := cancelled(ctx, "Validate Card"); err != nil {
		return nil, err
	}
	if err := s.requireSession("Validate Card"); err != nil {
		return nil, err
	}

	general := "9F6E...A0B1"
	payment := "4111xxxxxxxx1111"
	return &domain.ValidateCardResponse{
		GeneralCardData: &general,
		PaymentCardData: &payment,
		CardReaderID:    "SIM-READER-01",
		CardReaderModel: "Simulated Reader",
	}, nil
}

func (s *Simulator) Charge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResponse, error) {
	if err := cancelled(ctx, "Charge"); err != nil {
		return nil, err
	}
	if err := s.requireSessionForSource("Charge", req.Source); err != nil {
		return nil, err
	}

	captureFlag := req.TransactionDetails != nil && req.TransactionDetails.CaptureFlag

	// A capture finalizes a prior authorization; the reference must resolve.
	if req.Source == nil {
		if req.ReferenceTransactionDetails == nil || req.ReferenceTransactionDetails.Empty() {
			return nil, domain.NewGatewayError("Charge",
				"validation failed", "referenceTransactionDetails is required for captures", nil)
		}
		if err := s.requireKnownReference("Charge", *req.ReferenceTransactionDetails); err != nil {
			return nil, err
		}
	}

	state := domain.StateCaptured
	txType := "CHARGE"
	if !captureFlag {
		state = domain.StateAuthorized
	}

	resp := s.buildResponse(txType, state, req.TransactionDetails)
	s.attachCardData(&resp, req.Source, req.TransactionDetails)
	s.store(resp)
	return &resp, nil
}

func (s *Simulator) Refund(ctx context.Context, req domain.RefundRequest) (*domain.ChargeResponse, error) {
	if err := cancelled(ctx, "Refund"); err != nil {
		return nil, err
	}
	if err := s.requireSessionForSource("Refund", req.Source); err != nil {
		return nil, err
	}

	if ref := req.ReferenceTransactionDetails; ref != nil && !ref.Empty() {
		if err := s.requireKnownReference("Refund", *ref); err != nil {
			return nil, err
		}
	} else if req.Source == nil {
		// Matched refunds carry no card read, so the reference is the only
		// way to resolve the original transaction.
		return nil, domain.NewGatewayError("Refund",
			"validation failed", "referenceTransactionDetails is required for tagged refunds", nil)
	}

	resp := s.buildResponse("REFUND", domain.StateCaptured, req.TransactionDetails)
	s.attachCardData(&resp, req.Source, req.TransactionDetails)
	s.store(resp)
	return &resp, nil
}

func (s *Simulator) Cancel(ctx context.Context, req domain.CancelRequest) (*domain.ChargeResponse, error) {
	if err := cancelled(ctx, "Cancel"); err != nil {
		return nil, err
	}

	if req.ReferenceTransactionDetails.Empty() {
		return nil, domain.NewGatewayError("Cancel",
			"validation failed", "no reference transaction identifiers supplied", nil)
	}
	if err := s.requireKnownReference("Cancel", req.ReferenceTransactionDetails); err != nil {
		return nil, err
	}

	resp := s.buildResponse("CANCEL", domain.StateVoided, nil)
	s.store(resp)
	return &resp, nil
}

func (s *Simulator) Inquire(ctx context.Context, req domain.InquiryRequest) ([]domain.ChargeResponse, error) {
	if err := cancelled(ctx, "Inquiry"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []domain.ChargeResponse
	for _, tx := range s.transactions {
		if s.matches(tx, req.ReferenceTransactionDetails) {
			matches = append(matches, tx)
		}
	}
	return matches, nil
}

func (s *Simulator) VerifyAccount(ctx context.Context, req domain.VerificationRequest) (*domain.ChargeResponse, error) {
	if err := cancelled(ctx, "Account Verification"); err != nil {
		return nil, err
	}
	if err := s.requireSessionForSource("Account Verification", req.Source); err != nil {
		return nil, err
	}

	resp := s.buildResponse("VERIFICATION", domain.StateAuthorized, req.TransactionDetails)
	s.attachCardData(&resp, req.Source, req.TransactionDetails)
	return &resp, nil
}

func (s *Simulator) Tokenize(ctx context.Context, req domain.TokenizeRequest) (*domain.ChargeResponse, error) {
	if err := cancelled(ctx, "Tokenize"); err != nil {
		return nil, err
	}
	if err := s.requireSessionForSource("Tokenize", req.Source); err != nil {
		return nil, err
	}

	resp := s.buildResponse("TOKENIZE", domain.StateAuthorized, req.TransactionDetails)
	resp.Source = simulatedCard()
	resp.PaymentTokens = []domain.IssuedToken{mintToken()}
	return &resp, nil
}

func (s *Simulator) buildResponse(txType string, state domain.TransactionState, details *domain.TransactionDetails) domain.ChargeResponse {
	id := uuid.NewString()
	return domain.ChargeResponse{
		GatewayResponse: domain.GatewayResult{
			TransactionType:  txType,
			TransactionState: state,
			TransactionProcessingDetails: domain.TransactionProcessingDetails{
				TransactionID:        id,
				OrderID:              "ORD-" + strings.ToUpper(id[:8]),
				ClientRequestID:      uuid.NewString(),
				TransactionTimestamp: time.Now().UTC(),
			},
		},
		TransactionDetails: details,
	}
}

// attachCardData echoes source card data for card reads and mints a payment
// token when the request asks for one.
func (s *Simulator) attachCardData(resp *domain.ChargeResponse, source *domain.PaymentSource, details *domain.TransactionDetails) {
	if source != nil {
		resp.Source = simulatedCard()
	}
	if details != nil && details.CreateToken {
		resp.PaymentTokens = []domain.IssuedToken{mintToken()}
	}
}

func (s *Simulator) store(resp domain.ChargeResponse) {
	s.mu.Lock()
	s.transactions[resp.TransactionID()] = resp
	s.mu.Unlock()
	s.logger.Debug("transaction recorded",
		"transaction_id", resp.TransactionID(),
		"state", resp.State(),
	)
}

func (s *Simulator) matches(tx domain.ChargeResponse, ref domain.ReferenceTransactionDetails) bool {
	if ref.Empty() {
		return false
	}
	if ref.ReferenceTransactionID != "" && ref.ReferenceTransactionID == tx.TransactionID() {
		return true
	}
	if ref.ReferenceOrderID != "" && ref.ReferenceOrderID == tx.OrderID() {
		return true
	}
	if tx.TransactionDetails != nil {
		if ref.ReferenceMerchantTransactionID != "" &&
			ref.ReferenceMerchantTransactionID == tx.TransactionDetails.MerchantTransactionID {
			return true
		}
		if ref.ReferenceMerchantOrderID != "" &&
			ref.ReferenceMerchantOrderID == tx.TransactionDetails.MerchantOrderID {
			return true
		}
	}
	return false
}

func (s *Simulator) requireToken(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasToken {
		return domain.NewGatewayError(op, "not authorized", "no session token, did you obtain one?", nil)
	}
	return nil
}

func (s *Simulator) requireSession(op string) error {
	if err := s.requireToken(op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sessionActive {
		return domain.NewGatewayError(op, "reader session not active", "did you initialize the reader?", nil)
	}
	return nil
}

// requireSessionForSource enforces that physical card reads only happen on
// an active reader session. Token-sourced and sourceless (capture, matched
// refund) operations are sessionless.
func (s *Simulator) requireSessionForSource(op string, source *domain.PaymentSource) error {
	if source == nil || source.SourceType != domain.SourceTapToPay {
		return nil
	}
	return s.requireSession(op)
}

func (s *Simulator) requireKnownReference(op string, ref domain.ReferenceTransactionDetails) error {
	if ref.ReferenceTransactionID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[ref.ReferenceTransactionID]; !ok {
		return domain.NewGatewayError(op, "referenced transaction not found", ref.ReferenceTransactionID, nil)
	}
	return nil
}

func cancelled(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return domain.NewGatewayError(op, "request cancelled", err.Error(), err)
	}
	return nil
}

func simulatedCard() *domain.SourceCard {
	return &domain.SourceCard{
		Last4:           "1111",
		Scheme:          "VISA",
		ExpirationMonth: "12",
		ExpirationYear:  "2030",
	}
}

func mintToken() domain.IssuedToken {
	return domain.IssuedToken{
		TokenData:   strings.ReplaceAll(uuid.NewString(), "-", ""),
		TokenSource: "TRANSARMOR",
	}
}
