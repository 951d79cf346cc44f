// Package domain defines the transaction shapes exchanged with the payment gateway.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType selects the charge variant.
type TransactionType string

const (
	TransactionSale         TransactionType = "SALE"
	TransactionAuth         TransactionType = "AUTH"
	TransactionCapture      TransactionType = "CAPTURE"
	TransactionPaymentToken TransactionType = "PAYMENT_TOKEN"
)

// RefundType selects the refund variant.
type RefundType string

const (
	RefundMatched   RefundType = "MATCHED"
	RefundUnmatched RefundType = "UNMATCHED"
	RefundOpen      RefundType = "OPEN"
)

// TransactionState is the gateway-reported state of a transaction.
type TransactionState string

const (
	StateAuthorized TransactionState = "AUTHORIZED"
	StateCaptured   TransactionState = "CAPTURED"
	StateVoided     TransactionState = "VOIDED"
	StateDeclined   TransactionState = "DECLINED"
)

// SourceType identifies how payment credentials enter a request.
type SourceType string

const (
	SourceTapToPay     SourceType = "TapToPay"
	SourcePaymentToken SourceType = "PaymentToken"
)

// Amount is a monetary amount in a single currency. Total must be normalized
// (two fractional digits, banker's rounding) before a request is sent.
type Amount struct {
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

// PaymentSource describes the payment credentials for a request: a physical
// tap or a previously issued payment token.
type PaymentSource struct {
	SourceType        SourceType `json:"sourceType"`
	TokenData         string     `json:"tokenData,omitempty"`
	TokenSource       string     `json:"tokenSource,omitempty"`
	DeclineDuplicates bool       `json:"declineDuplicates,omitempty"`
	ExpirationMonth   string     `json:"expirationMonth,omitempty"`
	ExpirationYear    string     `json:"expirationYear,omitempty"`
}

// PaymentToken is a stored card-present tokenization result, held in memory
// until cleared or overwritten and consumed by token-sourced operations.
type PaymentToken struct {
	SourceType        SourceType `json:"sourceType"`
	TokenData         string     `json:"tokenData"`
	TokenSource       string     `json:"tokenSource"`
	DeclineDuplicates bool       `json:"declineDuplicates"`
	ExpirationMonth   string     `json:"expirationMonth"`
	ExpirationYear    string     `json:"expirationYear"`
}

// Source converts a stored token into a request payment source.
func (t PaymentToken) Source() *PaymentSource {
	return &PaymentSource{
		SourceType:        SourcePaymentToken,
		TokenData:         t.TokenData,
		TokenSource:       t.TokenSource,
		DeclineDuplicates: t.DeclineDuplicates,
		ExpirationMonth:   t.ExpirationMonth,
		ExpirationYear:    t.ExpirationYear,
	}
}

// TransactionDetails carries the merchant-assigned identifiers and flags for
// a new transaction. CaptureFlag is derived from the operation variant, never
// supplied by the caller.
type TransactionDetails struct {
	CaptureFlag           bool   `json:"captureFlag"`
	CreateToken           bool   `json:"createToken,omitempty"`
	MerchantTransactionID string `json:"merchantTransactionId,omitempty"`
	MerchantOrderID       string `json:"merchantOrderId,omitempty"`
	MerchantInvoiceNumber string `json:"merchantInvoiceNumber,omitempty"`
}

// ReferenceTransactionDetails ties an operation to a prior transaction. Any
// combination of identifiers may be supplied.
type ReferenceTransactionDetails struct {
	ReferenceTransactionID         string `json:"referenceTransactionId,omitempty"`
	ReferenceMerchantTransactionID string `json:"referenceMerchantTransactionId,omitempty"`
	ReferenceOrderID               string `json:"referenceOrderId,omitempty"`
	ReferenceMerchantOrderID       string `json:"referenceMerchantOrderId,omitempty"`
	ReferenceClientRequestID       string `json:"referenceClientRequestId,omitempty"`
}

// Empty reports whether no reference identifier is set.
func (r ReferenceTransactionDetails) Empty() bool {
	return r == ReferenceTransactionDetails{}
}

// MerchantDetails identifies the merchant and terminal issuing a request.
type MerchantDetails struct {
	MerchantID string `json:"merchantId"`
	TerminalID string `json:"terminalId"`
}

// BillingAddress is the optional address block for account verification.
type BillingAddress struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Street      string `json:"street,omitempty"`
	HouseNumber string `json:"houseNumber,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	PostalCode  string `json:"postalCode,omitempty"`
	Country     string `json:"country,omitempty"`
}

// ChargeRequest is the shaped request for the charge family
// (sale, auth, capture, payment-token charge).
type ChargeRequest struct {
	Amount                      Amount                       `json:"amount"`
	Source                      *PaymentSource               `json:"source,omitempty"`
	TransactionDetails          *TransactionDetails          `json:"transactionDetails,omitempty"`
	ReferenceTransactionDetails *ReferenceTransactionDetails `json:"referenceTransactionDetails,omitempty"`
	MerchantDetails             MerchantDetails              `json:"merchantDetails"`
}

// RefundRequest is the shaped request for the refund family.
type RefundRequest struct {
	Amount                      Amount                       `json:"amount"`
	Source                      *PaymentSource               `json:"source,omitempty"`
	TransactionDetails          *TransactionDetails          `json:"transactionDetails,omitempty"`
	ReferenceTransactionDetails *ReferenceTransactionDetails `json:"referenceTransactionDetails,omitempty"`
	MerchantDetails             MerchantDetails              `json:"merchantDetails"`
}

// CancelRequest voids a prior transaction by reference. Sessionless.
type CancelRequest struct {
	Amount                      Amount                      `json:"amount"`
	ReferenceTransactionDetails ReferenceTransactionDetails `json:"referenceTransactionDetails"`
	MerchantDetails             MerchantDetails             `json:"merchantDetails"`
}

// InquiryRequest looks up prior transactions by reference. Sessionless.
type InquiryRequest struct {
	ReferenceTransactionDetails ReferenceTransactionDetails `json:"referenceTransactionDetails"`
	MerchantDetails             MerchantDetails             `json:"merchantDetails"`
}

// VerificationRequest verifies an account without moving funds.
type VerificationRequest struct {
	Source             *PaymentSource      `json:"source,omitempty"`
	TransactionDetails *TransactionDetails `json:"transactionDetails,omitempty"`
	BillingAddress     *BillingAddress     `json:"billingAddress,omitempty"`
	MerchantDetails    MerchantDetails     `json:"merchantDetails"`
}

// TokenizeRequest tokenizes a physically read card.
type TokenizeRequest struct {
	Source             *PaymentSource      `json:"source"`
	TransactionDetails *TransactionDetails `json:"transactionDetails,omitempty"`
	MerchantDetails    MerchantDetails     `json:"merchantDetails"`
}

// TransactionProcessingDetails carries the gateway-assigned identifiers.
type TransactionProcessingDetails struct {
	TransactionID        string    `json:"transactionId"`
	OrderID              string    `json:"orderId"`
	ClientRequestID      string    `json:"clientRequestId,omitempty"`
	TransactionTimestamp time.Time `json:"transactionTimestamp"`
}

// SourceCard is the card data echoed back by the gateway alongside issued
// payment tokens.
type SourceCard struct {
	Last4           string `json:"last4,omitempty"`
	Scheme          string `json:"scheme,omitempty"`
	ExpirationMonth string `json:"expirationMonth,omitempty"`
	ExpirationYear  string `json:"expirationYear,omitempty"`
}

// IssuedToken is a payment token returned by the gateway.
type IssuedToken struct {
	TokenData   string `json:"tokenData,omitempty"`
	TokenSource string `json:"tokenSource,omitempty"`
}

// GatewayResult is the processing summary common to all transaction
// responses.
type GatewayResult struct {
	TransactionType              string                       `json:"transactionType,omitempty"`
	TransactionState             TransactionState             `json:"transactionState"`
	TransactionProcessingDetails TransactionProcessingDetails `json:"transactionProcessingDetails"`
}

// ChargeResponse is the gateway response shape shared by charges, refunds,
// cancels, verifications and tokenizations.
type ChargeResponse struct {
	GatewayResponse    GatewayResult       `json:"gatewayResponse"`
	TransactionDetails *TransactionDetails `json:"transactionDetails,omitempty"`
	Source             *SourceCard         `json:"source,omitempty"`
	PaymentTokens      []IssuedToken       `json:"paymentTokens,omitempty"`
	ApprovedAmount     *Amount             `json:"approvedAmount,omitempty"`
}

// TransactionID returns the gateway-assigned transaction id.
func (r *ChargeResponse) TransactionID() string {
	return r.GatewayResponse.TransactionProcessingDetails.TransactionID
}

// OrderID returns the gateway-assigned order id.
func (r *ChargeResponse) OrderID() string {
	return r.GatewayResponse.TransactionProcessingDetails.OrderID
}

// State returns the gateway-reported transaction state.
func (r *ChargeResponse) State() TransactionState {
	return r.GatewayResponse.TransactionState
}

// ValidateCardResponse is the result of a validation tap. Both card data
// blocks must be present for the card to be considered valid.
type ValidateCardResponse struct {
	GeneralCardData *string `json:"generalCardData,omitempty"`
	PaymentCardData *string `json:"paymentCardData,omitempty"`
	CardReaderID    string  `json:"cardReaderId,omitempty"`
	CardReaderModel string  `json:"cardReaderModel,omitempty"`
}
