package mocks

import (
	"context"

	"intakeapi/internal/model"
	"intakeapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, entry *model.AuditLogEntry) (*model.AuditLogEntry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuditLogEntry), args.Error(1)
}

func (m *MockAuditRepository) ListByResource(ctx context.Context, resourceType, resourceID string, pq repository.PageQuery) ([]model.AuditLogEntry, error) {
	args := m.Called(ctx, resourceType, resourceID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditLogEntry), args.Error(1)
}

func (m *MockAuditRepository) ListByActor(ctx context.Context, actorID string, limit int) ([]model.AuditLogEntry, error) {
	args := m.Called(ctx, actorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditLogEntry), args.Error(1)
}
