package mocks

import (
	"context"

	"intakeapi/internal/model"
	"intakeapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockApplicationService struct {
	mock.Mock
}

func (m *MockApplicationService) Save(ctx context.Context, actor model.Actor, clientID, appID string, payload map[string]any) (*model.MerchantApplication, error) {
	args := m.Called(ctx, actor, clientID, appID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MerchantApplication), args.Error(1)
}

func (m *MockApplicationService) Get(ctx context.Context, id string) (*model.MerchantApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MerchantApplication), args.Error(1)
}

func (m *MockApplicationService) GetByClient(ctx context.Context, clientID string) (*model.MerchantApplication, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MerchantApplication), args.Error(1)
}

func (m *MockApplicationService) Submit(ctx context.Context, actor model.Actor, id string) (*model.MerchantApplication, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MerchantApplication), args.Error(1)
}

func (m *MockApplicationService) SetStatus(ctx context.Context, actor model.Actor, id string, status model.ApplicationStatus, reason string) (*model.MerchantApplication, error) {
	args := m.Called(ctx, actor, id, status, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MerchantApplication), args.Error(1)
}

func (m *MockApplicationService) ListForReview(ctx context.Context, limit, offset int) (*service.ApplicationListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ApplicationListResult), args.Error(1)
}
