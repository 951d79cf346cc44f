// Package mocks provides a testify mock of the gateway client for unit tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tapterm/tapterm/internal/domain"
)

type MockGatewayClient struct {
	mock.Mock
}

// NewMockGatewayClient creates the mock and registers an expectation check
// on test cleanup.
func NewMockGatewayClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGatewayClient {
	m := &MockGatewayClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockGatewayClient) ReaderIsSupported() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockGatewayClient) RequestSessionToken(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockGatewayClient) IsAccountLinked(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockGatewayClient) LinkAccount(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockGatewayClient) InitializeSession(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockGatewayClient) ValidateCard(ctx context.Context) (*domain.ValidateCardResponse, error) {
	args := m.Called(ctx)
	var resp *domain.ValidateCardResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*domain.ValidateCardResponse)
	}
	return resp, args.Error(1)
}

func (m *MockGatewayClient) Charge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResponse, error) {
	args := m.Called(ctx, req)
	var resp *domain.ChargeResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*domain.ChargeResponse)
	}
	return resp, args.Error(1)
}

func (m *MockGatewayClient) Refund(ctx context.Context, req domain.RefundRequest) (*domain.ChargeResponse, error) {
	args := m.Called(ctx, req)
	var resp *domain.ChargeResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*domain.ChargeResponse)
	}
	return resp, args.Error(1)
}

func (m *MockGatewayClient) Cancel(ctx context.Context, req domain.CancelRequest) (*domain.ChargeResponse, error) {
	args := m.Called(ctx, req)
	var resp *domain.ChargeResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*domain.ChargeResponse)
	}
	return resp, args.Error(1)
}

func (m *MockGatewayClient) Inquire(ctx context.Context, req domain.InquiryRequest) ([]domain.ChargeResponse, error) {
	args := m.Called(ctx, req)
	var resp []domain.ChargeResponse
	if args.Get(0) != nil {
		resp = args.Get(0).([]domain.ChargeResponse)
	}
	return resp, args.Error(1)
}

func (m *MockGatewayClient) VerifyAccount(ctx context.Context, req domain.VerificationRequest) (*domain.ChargeResponse, error) {
	args := m.Called(ctx, req)
	var resp *domain.ChargeResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*domain.ChargeResponse)
	}
	return resp, args.Error(1)
}

func (m *MockGatewayClient) Tokenize(ctx context.Context, req domain.TokenizeRequest) (*domain.ChargeResponse, error) {
	args := m.Called(ctx, req)
	var resp *domain.ChargeResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*domain.ChargeResponse)
	}
	return resp, args.Error(1)
}
