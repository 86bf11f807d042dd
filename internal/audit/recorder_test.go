package audit

import (
	"context"
	"errors"
	"testing"

	"intakeapi/internal/model"
	"intakeapi/internal/repository"
	repoMocks "intakeapi/internal/repository/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRecorder_Record(t *testing.T) {
	ctx := context.Background()
	actor := model.Actor{ID: "admin-1", IP: "10.0.0.9"}

	t.Run("appends one entry with actor and metadata", func(t *testing.T) {
		mRepo := new(repoMocks.MockAuditRepository)
		mRepo.On("Append", ctx, mock.MatchedBy(func(e *model.AuditLogEntry) bool {
			return e.ID != "" &&
				e.ActorID == "admin-1" &&
				e.Action == model.ActionDocumentReject &&
				e.ResourceType == model.ResourceDocument &&
				e.ResourceID == "doc-1" &&
				e.IPAddress == "10.0.0.9" &&
				e.Metadata["reason"] == "blurry scan"
		})).Return(&model.AuditLogEntry{ID: "entry-1"}, nil)

		rec := NewRecorder(mRepo, zerolog.Nop())
		rec.Record(ctx, actor, model.ActionDocumentReject, model.ResourceDocument, "doc-1", map[string]any{"reason": "blurry scan"})

		mRepo.AssertExpectations(t)
		mRepo.AssertNumberOfCalls(t, "Append", 1)
	})

	t.Run("append failure is swallowed", func(t *testing.T) {
		mRepo := new(repoMocks.MockAuditRepository)
		mRepo.On("Append", ctx, mock.Anything).Return(nil, errors.New("db down"))

		rec := NewRecorder(mRepo, zerolog.Nop())
		// Must not panic and has no error to return.
		rec.Record(ctx, actor, model.ActionApplicationSave, model.ResourceApplication, "app-1", nil)

		mRepo.AssertExpectations(t)
	})
}

func TestRecorder_Trail(t *testing.T) {
	ctx := context.Background()

	mRepo := new(repoMocks.MockAuditRepository)
	mRepo.On("ListByResource", ctx, model.ResourceDocument, "doc-1", repository.PageQuery{Limit: 50}).
		Return([]model.AuditLogEntry{{ID: "b"}, {ID: "a"}}, nil)

	rec := NewRecorder(mRepo, zerolog.Nop())
	entries, err := rec.Trail(ctx, model.ResourceDocument, "doc-1", repository.PageQuery{})

	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	mRepo.AssertExpectations(t)
}

func TestRecorder_TrailForActor(t *testing.T) {
	ctx := context.Background()

	mRepo := new(repoMocks.MockAuditRepository)
	mRepo.On("ListByActor", ctx, "admin-1", 10).
		Return([]model.AuditLogEntry{{ID: "newest"}}, nil)

	rec := NewRecorder(mRepo, zerolog.Nop())
	entries, err := rec.TrailForActor(ctx, "admin-1", 10)

	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	mRepo.AssertExpectations(t)
}
