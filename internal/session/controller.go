// Package session manages the tap-to-pay reader session lifecycle: device
// eligibility, session token, optional account linking, reader
// initialization, card validation and session-loss recovery.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tapterm/tapterm/internal/domain"
	"github.com/tapterm/tapterm/internal/gate"
	"github.com/tapterm/tapterm/internal/ports"
)

// ReaderState is the reader lifecycle. Modeling it as one enum (rather than
// independent booleans) keeps illegal combinations unrepresentable.
type ReaderState string

const (
	// ReaderUninitialized: no session has ever been established.
	ReaderUninitialized ReaderState = "UNINITIALIZED"
	// ReaderReady: a session is active and payments can be taken.
	ReaderReady ReaderState = "READY"
	// ReaderLost: a previously established session dropped (e.g. the app was
	// backgrounded) and may be reinitialized automatically.
	ReaderLost ReaderState = "LOST"
)

// State is a snapshot of the controller's session state.
type State struct {
	HasToken         bool
	AccountLinked    bool
	CardValid        bool
	Reader           ReaderState
	ReadyForPayments bool
}

// CardReaderActive reports whether the reader session is currently usable.
func (s State) CardReaderActive() bool {
	return s.Reader == ReaderReady
}

// Controller brings a reader session from uninitialized to ready and
// recovers from session loss. Operations are serialized by a single-slot
// gate; an overlapping call fails with a session-busy error instead of
// interleaving.
type Controller struct {
	gateway ports.GatewayClient
	logger  *slog.Logger
	gate    gate.Gate

	mu               sync.Mutex
	hasToken         bool
	accountLinked    bool
	cardValid        bool
	reader           ReaderState
	readyForPayments bool
}

func NewController(gateway ports.GatewayClient, logger *slog.Logger) *Controller {
	return &Controller{
		gateway: gateway,
		logger:  logger,
		reader:  ReaderUninitialized,
	}
}

// State returns a snapshot of the session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		HasToken:         c.hasToken,
		AccountLinked:    c.accountLinked,
		CardValid:        c.cardValid,
		Reader:           c.reader,
		ReadyForPayments: c.readyForPayments,
	}
}

// ReaderIsSupported queries device eligibility. No side effects.
func (c *Controller) ReaderIsSupported() bool {
	return c.gateway.ReaderIsSupported()
}

// RequestSessionToken obtains an auth token from the gateway. Must be called
// before any other session operation. Failure leaves state unchanged.
func (c *Controller) RequestSessionToken(ctx context.Context) error {
	if !c.gate.TryAcquire() {
		return domain.NewSessionBusyError("request session token")
	}
	defer c.gate.Release()

	if err := c.gateway.RequestSessionToken(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.hasToken = true
	c.mu.Unlock()
	c.logger.Info("session token acquired")
	return nil
}

// IsAccountLinked queries whether the configured Apple-program merchant id is
// linked and records the queried value, which may flip accountLinked back to
// false.
func (c *Controller) IsAccountLinked(ctx context.Context) (bool, error) {
	if !c.gate.TryAcquire() {
		return false, domain.NewSessionBusyError("account link query")
	}
	defer c.gate.Release()

	linked, err := c.gateway.IsAccountLinked(ctx)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	c.accountLinked = linked
	c.mu.Unlock()
	return linked, nil
}

// LinkAccount performs the linking step. On success accountLinked is set
// optimistically, without re-querying link status.
func (c *Controller) LinkAccount(ctx context.Context) error {
	if !c.gate.TryAcquire() {
		return domain.NewSessionBusyError("account link")
	}
	defer c.gate.Release()

	if err := c.gateway.LinkAccount(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.accountLinked = true
	c.mu.Unlock()
	c.logger.Info("apple account linked")
	return nil
}

// InitializeSession starts the physical reader session. Success marks the
// controller ready for payments; that flag is sticky across session loss so
// the session can be reinitialized automatically.
func (c *Controller) InitializeSession(ctx context.Context) error {
	if !c.gate.TryAcquire() {
		return domain.NewSessionBusyError("initialize session")
	}
	defer c.gate.Release()

	return c.initializeSession(ctx)
}

func (c *Controller) initializeSession(ctx context.Context) error {
	if err := c.gateway.InitializeSession(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.reader = ReaderReady
	c.readyForPayments = true
	c.mu.Unlock()
	c.logger.Info("reader session initialized")
	return nil
}

// ReinitializeSession recovers a lost session. It is a no-op unless a session
// has been successfully initialized before and the reader is currently lost.
// Intended to be invoked on app-foreground transitions.
func (c *Controller) ReinitializeSession(ctx context.Context) error {
	if !c.gate.TryAcquire() {
		return domain.NewSessionBusyError("reinitialize session")
	}
	defer c.gate.Release()

	c.mu.Lock()
	shouldInit := c.readyForPayments && c.reader != ReaderReady
	c.mu.Unlock()

	if !shouldInit {
		return nil
	}
	return c.initializeSession(ctx)
}

// SessionLost records loss of the reader session (reader availability is
// signaled by the platform, not polled). Ready-for-payments stickiness is
// preserved.
func (c *Controller) SessionLost() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reader == ReaderReady {
		c.reader = ReaderLost
		c.logger.Warn("reader session lost")
	}
}

// ValidateCard triggers a physical tap without charging. The card is marked
// valid only when the response carries both general and payment card data.
func (c *Controller) ValidateCard(ctx context.Context) (*domain.ValidateCardResponse, error) {
	if !c.gate.TryAcquire() {
		return nil, domain.NewSessionBusyError("validate card")
	}
	defer c.gate.Release()

	resp, err := c.gateway.ValidateCard(ctx)
	if err != nil {
		return nil, err
	}

	if resp.GeneralCardData != nil && resp.PaymentCardData != nil {
		c.mu.Lock()
		c.cardValid = true
		c.mu.Unlock()
	}
	return resp, nil
}
