package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Notify(ctx context.Context, templateID, recipient string, tmplCtx map[string]any) error {
	args := m.Called(ctx, templateID, recipient, tmplCtx)
	return args.Error(0)
}
