package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"intakeapi/internal/audit"
	"intakeapi/internal/event"
	"intakeapi/internal/model"
	"intakeapi/internal/repository"
	repoMocks "intakeapi/internal/repository/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type appFixture struct {
	repo   *repoMocks.MockApplicationRepository
	auditR *repoMocks.MockAuditRepository
	events []any
	svc    ApplicationService
}

func newAppFixture(complete CompletenessCheck) *appFixture {
	f := &appFixture{
		repo:   new(repoMocks.MockApplicationRepository),
		auditR: new(repoMocks.MockAuditRepository),
	}
	bus := event.NewBus()
	bus.Subscribe(func(_ context.Context, evt any) {
		f.events = append(f.events, evt)
	})
	recorder := audit.NewRecorder(f.auditR, zerolog.Nop())
	f.svc = NewApplicationService(f.repo, recorder, bus, nil, complete, zerolog.Nop())
	return f
}

func (f *appFixture) expectAudit(action model.AuditAction) {
	f.auditR.On("Append", mock.Anything, mock.MatchedBy(func(e *model.AuditLogEntry) bool {
		return e.Action == action && e.ResourceType == model.ResourceApplication
	})).Return(&model.AuditLogEntry{ID: "entry"}, nil)
}

func allComplete(*model.MerchantApplication) error { return nil }

func draftApp() *model.MerchantApplication {
	return &model.MerchantApplication{
		ID:       "app-1",
		ClientID: "client-1",
		Status:   model.ApplicationDraft,
		Record:   model.Record{},
	}
}

func TestApplicationService_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("first save creates a draft with the cleaned payload", func(t *testing.T) {
		f := newAppFixture(nil)
		f.repo.On("FindByClient", ctx, "client-1").Return(nil, sql.ErrNoRows)
		f.repo.On("Create", ctx, mock.MatchedBy(func(app *model.MerchantApplication) bool {
			if app.ClientID != "client-1" || app.Status != model.ApplicationDraft {
				return false
			}
			// Unknown keys and empty values never reach the stored record.
			if _, ok := app.Record["favorite_color"]; ok {
				return false
			}
			if _, ok := app.Record["dba_name"]; ok {
				return false
			}
			_, hasName := app.Record["legal_business_name"]
			return hasName && app.LastSavedAt != nil
		})).Return(&model.MerchantApplication{ID: "app-1", ClientID: "client-1", Status: model.ApplicationDraft}, nil)
		f.expectAudit(model.ActionApplicationSave)

		app, err := f.svc.Save(ctx, testActor, "client-1", "", map[string]any{
			"legal_business_name": "Acme LLC",
			"dba_name":            "   ",
			"favorite_color":      "green",
		})

		require.NoError(t, err)
		assert.Equal(t, "app-1", app.ID)
		f.auditR.AssertNumberOfCalls(t, "Append", 1)
	})

	t.Run("subsequent save merges into the existing record", func(t *testing.T) {
		f := newAppFixture(nil)
		f.repo.On("FindByClient", ctx, "client-1").Return(draftApp(), nil)
		f.repo.On("MergeRecord", ctx, "app-1", mock.MatchedBy(func(fields model.Record) bool {
			v, ok := fields["incorporation_date"]
			if !ok {
				return false
			}
			ts, ok := v.(time.Time)
			return ok && ts.Year() == 2019
		}), mock.AnythingOfType("time.Time")).Return(draftApp(), nil)
		f.expectAudit(model.ActionApplicationSave)

		_, err := f.svc.Save(ctx, testActor, "client-1", "", map[string]any{
			"incorporation_date": "2019-03-07",
		})
		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("save never changes status", func(t *testing.T) {
		f := newAppFixture(nil)
		submitted := draftApp()
		submitted.Status = model.ApplicationSubmitted
		f.repo.On("FindByClient", ctx, "client-1").Return(submitted, nil)
		f.repo.On("MergeRecord", ctx, "app-1", mock.Anything, mock.AnythingOfType("time.Time")).
			Return(submitted, nil)
		f.expectAudit(model.ActionApplicationSave)

		app, err := f.svc.Save(ctx, testActor, "client-1", "", map[string]any{"website": "https://acme.example"})
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationSubmitted, app.Status)
	})

	t.Run("terminal application is frozen", func(t *testing.T) {
		f := newAppFixture(nil)
		approved := draftApp()
		approved.Status = model.ApplicationApproved
		f.repo.On("FindByClient", ctx, "client-1").Return(approved, nil)

		_, err := f.svc.Save(ctx, testActor, "client-1", "", map[string]any{"website": "https://acme.example"})
		assert.ErrorIs(t, err, ErrAlreadyTerminal)
		f.repo.AssertNotCalled(t, "MergeRecord", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("save by id checks ownership", func(t *testing.T) {
		f := newAppFixture(nil)
		f.repo.On("FindByID", ctx, "app-1").Return(draftApp(), nil)

		_, err := f.svc.Save(ctx, testActor, "client-2", "app-1", map[string]any{"website": "https://acme.example"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing client id", func(t *testing.T) {
		f := newAppFixture(nil)
		_, err := f.svc.Save(ctx, testActor, "", "", map[string]any{})
		assert.ErrorIs(t, err, ErrClientRequired)
	})
}

func TestApplicationService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("draft submits and stamps SubmittedAt", func(t *testing.T) {
		f := newAppFixture(allComplete)
		f.repo.On("FindByID", ctx, "app-1").Return(draftApp(), nil)

		now := time.Now().UTC()
		submitted := draftApp()
		submitted.Status = model.ApplicationSubmitted
		submitted.SubmittedAt = &now
		f.repo.On("MarkSubmitted", ctx, "app-1", mock.AnythingOfType("time.Time")).Return(submitted, nil)
		f.expectAudit(model.ActionApplicationSubmit)

		app, err := f.svc.Submit(ctx, testActor, "app-1")

		require.NoError(t, err)
		assert.Equal(t, model.ApplicationSubmitted, app.Status)
		require.NotNil(t, app.SubmittedAt)

		require.Len(t, f.events, 1)
		_, ok := f.events[0].(event.ApplicationSubmitted)
		assert.True(t, ok)
	})

	t.Run("duplicate submit is a no-op success", func(t *testing.T) {
		f := newAppFixture(allComplete)
		first := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
		submitted := draftApp()
		submitted.Status = model.ApplicationSubmitted
		submitted.SubmittedAt = &first
		f.repo.On("FindByID", ctx, "app-1").Return(submitted, nil)

		app, err := f.svc.Submit(ctx, testActor, "app-1")

		require.NoError(t, err)
		assert.Equal(t, first, *app.SubmittedAt)
		f.repo.AssertNotCalled(t, "MarkSubmitted", mock.Anything, mock.Anything, mock.Anything)
		f.auditR.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		assert.Empty(t, f.events)
	})

	t.Run("incomplete application is rejected by the gate", func(t *testing.T) {
		f := newAppFixture(nil)
		f.repo.On("FindByID", ctx, "app-1").Return(draftApp(), nil)

		_, err := f.svc.Submit(ctx, testActor, "app-1")

		assert.ErrorIs(t, err, ErrNotReady)
		assert.ErrorContains(t, err, "legal_business_name")
		f.repo.AssertNotCalled(t, "MarkSubmitted", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("terminal application cannot submit", func(t *testing.T) {
		f := newAppFixture(allComplete)
		rejected := draftApp()
		rejected.Status = model.ApplicationRejected
		f.repo.On("FindByID", ctx, "app-1").Return(rejected, nil)

		_, err := f.svc.Submit(ctx, testActor, "app-1")
		assert.ErrorIs(t, err, ErrAlreadyTerminal)
	})

	t.Run("lost submit race falls back to the stored state", func(t *testing.T) {
		f := newAppFixture(allComplete)
		won := time.Now().UTC()
		winner := draftApp()
		winner.Status = model.ApplicationSubmitted
		winner.SubmittedAt = &won

		f.repo.On("FindByID", ctx, "app-1").Return(draftApp(), nil).Once()
		f.repo.On("MarkSubmitted", ctx, "app-1", mock.AnythingOfType("time.Time")).Return(nil, sql.ErrNoRows)
		f.repo.On("FindByID", ctx, "app-1").Return(winner, nil).Once()

		app, err := f.svc.Submit(ctx, testActor, "app-1")

		require.NoError(t, err)
		assert.Equal(t, won, *app.SubmittedAt)
		assert.Empty(t, f.events)
	})
}

func TestApplicationService_SetStatus(t *testing.T) {
	ctx := context.Background()
	submittedApp := func() *model.MerchantApplication {
		app := draftApp()
		app.Status = model.ApplicationSubmitted
		return app
	}

	t.Run("reject requires a reason", func(t *testing.T) {
		f := newAppFixture(nil)
		_, err := f.svc.SetStatus(ctx, testActor, "app-1", model.ApplicationRejected, "")
		assert.ErrorIs(t, err, ErrMissingReason)
	})

	t.Run("DRAFT and SUBMITTED are not decision targets", func(t *testing.T) {
		f := newAppFixture(nil)
		for _, status := range []model.ApplicationStatus{model.ApplicationDraft, model.ApplicationSubmitted, "UNKNOWN"} {
			_, err := f.svc.SetStatus(ctx, testActor, "app-1", status, "")
			assert.ErrorIs(t, err, ErrInvalidStatus, string(status))
		}
	})

	t.Run("submitted to under review", func(t *testing.T) {
		f := newAppFixture(nil)
		f.repo.On("FindByID", ctx, "app-1").Return(submittedApp(), nil)

		reviewed := submittedApp()
		reviewed.Status = model.ApplicationUnderReview
		f.repo.On("UpdateStatus", ctx, "app-1", model.ApplicationUnderReview, "", (*time.Time)(nil)).
			Return(reviewed, nil)
		f.expectAudit(model.ActionApplicationStatus)

		app, err := f.svc.SetStatus(ctx, testActor, "app-1", model.ApplicationUnderReview, "")

		require.NoError(t, err)
		assert.Equal(t, model.ApplicationUnderReview, app.Status)
		require.Len(t, f.events, 1)
		changed, ok := f.events[0].(event.ApplicationStatusChanged)
		require.True(t, ok)
		assert.Equal(t, model.ApplicationSubmitted, changed.OldStatus)
	})

	t.Run("terminal decision stamps ReviewedAt", func(t *testing.T) {
		f := newAppFixture(nil)
		inReview := submittedApp()
		inReview.Status = model.ApplicationUnderReview
		f.repo.On("FindByID", ctx, "app-1").Return(inReview, nil)

		f.repo.On("UpdateStatus", ctx, "app-1", model.ApplicationApproved, "", mock.MatchedBy(func(ts *time.Time) bool {
			return ts != nil
		})).Return(&model.MerchantApplication{ID: "app-1", Status: model.ApplicationApproved}, nil)
		f.expectAudit(model.ActionApplicationStatus)

		_, err := f.svc.SetStatus(ctx, testActor, "app-1", model.ApplicationApproved, "")
		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("reject carries the reason", func(t *testing.T) {
		f := newAppFixture(nil)
		inReview := submittedApp()
		inReview.Status = model.ApplicationUnderReview
		f.repo.On("FindByID", ctx, "app-1").Return(inReview, nil)

		f.repo.On("UpdateStatus", ctx, "app-1", model.ApplicationRejected, "sanctions hit", mock.Anything).
			Return(&model.MerchantApplication{ID: "app-1", Status: model.ApplicationRejected, RejectionReason: "sanctions hit"}, nil)

		f.auditR.On("Append", mock.Anything, mock.MatchedBy(func(e *model.AuditLogEntry) bool {
			return e.Action == model.ActionApplicationStatus && e.Metadata["reason"] == "sanctions hit"
		})).Return(&model.AuditLogEntry{ID: "entry"}, nil)

		app, err := f.svc.SetStatus(ctx, testActor, "app-1", model.ApplicationRejected, "  sanctions hit  ")
		require.NoError(t, err)
		assert.Equal(t, "sanctions hit", app.RejectionReason)
	})

	t.Run("no transition out of terminal", func(t *testing.T) {
		f := newAppFixture(nil)
		approved := submittedApp()
		approved.Status = model.ApplicationApproved
		f.repo.On("FindByID", ctx, "app-1").Return(approved, nil)

		_, err := f.svc.SetStatus(ctx, testActor, "app-1", model.ApplicationRejected, "oops")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("no skipping backwards", func(t *testing.T) {
		f := newAppFixture(nil)
		inReview := submittedApp()
		inReview.Status = model.ApplicationUnderReview
		f.repo.On("FindByID", ctx, "app-1").Return(inReview, nil)

		_, err := f.svc.SetStatus(ctx, testActor, "app-1", model.ApplicationUnderReview, "")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestRequiredSections(t *testing.T) {
	base := func() model.Record {
		rec := model.Record{"principal_officers": []any{map[string]any{"first_name": "Ana"}}}
		for _, name := range requiredApplicationFields {
			rec[name] = "filled"
		}
		return rec
	}

	t.Run("complete record passes", func(t *testing.T) {
		err := RequiredSections(&model.MerchantApplication{Record: base()})
		assert.NoError(t, err)
	})

	t.Run("missing scalar is reported by name", func(t *testing.T) {
		rec := base()
		delete(rec, "bank_routing_number")
		err := RequiredSections(&model.MerchantApplication{Record: rec})
		assert.ErrorContains(t, err, "bank_routing_number")
	})

	t.Run("at least one principal officer", func(t *testing.T) {
		rec := base()
		rec["principal_officers"] = []any{}
		err := RequiredSections(&model.MerchantApplication{Record: rec})
		assert.ErrorContains(t, err, "principal_officers")
	})
}

func TestApplicationService_ListForReview(t *testing.T) {
	ctx := context.Background()
	f := newAppFixture(nil)
	f.repo.On("ListForReview", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
		Return(&repository.PageResult[model.MerchantApplication]{
			Items: []model.MerchantApplication{{ID: "a"}, {ID: "b"}},
			Total: 2,
		}, nil)

	res, err := f.svc.ListForReview(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
}
