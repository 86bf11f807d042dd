package mocks

import (
	"context"
	"time"

	"intakeapi/internal/model"
	"intakeapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *model.MerchantApplication) (*model.MerchantApplication, error) {
	args := m.Called(ctx, app)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MerchantApplication), args.Error(1)
}

func (m *MockApplicationRepository) FindByID(ctx context.Context, id string) (*model.MerchantApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MerchantApplication), args.Error(1)
}

func (m *MockApplicationRepository) FindByClient(ctx context.Context, clientID string) (*model.MerchantApplication, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MerchantApplication), args.Error(1)
}

func (m *MockApplicationRepository) MergeRecord(ctx context.Context, id string, fields model.Record, savedAt time.Time) (*model.MerchantApplication, error) {
	args := m.Called(ctx, id, fields, savedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MerchantApplication), args.Error(1)
}

func (m *MockApplicationRepository) MarkSubmitted(ctx context.Context, id string, submittedAt time.Time) (*model.MerchantApplication, error) {
	args := m.Called(ctx, id, submittedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MerchantApplication), args.Error(1)
}

func (m *MockApplicationRepository) UpdateStatus(ctx context.Context, id string, status model.ApplicationStatus, reason string, reviewedAt *time.Time) (*model.MerchantApplication, error) {
	args := m.Called(ctx, id, status, reason, reviewedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MerchantApplication), args.Error(1)
}

func (m *MockApplicationRepository) ListForReview(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.MerchantApplication], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.MerchantApplication]), args.Error(1)
}
