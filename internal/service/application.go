package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"intakeapi/internal/audit"
	"intakeapi/internal/event"
	"intakeapi/internal/model"
	"intakeapi/internal/repository"
	"intakeapi/internal/sanitize"
)

// ApplicationListResult is the service-level DTO for paginated applications.
type ApplicationListResult struct {
	Items []model.MerchantApplication `json:"data"`
	Total int                         `json:"total"`
}

// CompletenessCheck validates that the required sections of an application
// are filled before submission. The service enforces only the status
// precondition; field-level completeness is delegated to this check.
type CompletenessCheck func(app *model.MerchantApplication) error

// ApplicationService defines the use cases for the merchant application
// lifecycle: DRAFT → SUBMITTED → UNDER_REVIEW → {APPROVED, REJECTED}.
type ApplicationService interface {
	// Save sanitizes and merges a partial payload into the client's
	// application, creating it as DRAFT on first save. It always stamps
	// UpdatedAt and LastSavedAt, and never changes status. Terminal
	// applications are frozen.
	Save(ctx context.Context, actor model.Actor, clientID, appID string, payload map[string]any) (*model.MerchantApplication, error)

	// Get returns a single application by its ID.
	Get(ctx context.Context, id string) (*model.MerchantApplication, error)

	// GetByClient returns the client's application.
	GetByClient(ctx context.Context, clientID string) (*model.MerchantApplication, error)

	// Submit moves a DRAFT application to SUBMITTED, stamping SubmittedAt
	// exactly once. A duplicate submit is a no-op success. The completeness
	// check gates the first submit.
	Submit(ctx context.Context, actor model.Actor, id string) (*model.MerchantApplication, error)

	// SetStatus is the administrator decision: UNDER_REVIEW, APPROVED, or
	// REJECTED. Terminal decisions stamp ReviewedAt; REJECTED requires a
	// non-empty reason.
	SetStatus(ctx context.Context, actor model.Actor, id string, status model.ApplicationStatus, reason string) (*model.MerchantApplication, error)

	// ListForReview returns the admin review queue, oldest submission first.
	ListForReview(ctx context.Context, limit, offset int) (*ApplicationListResult, error)
}

type applicationService struct {
	repo     repository.ApplicationRepository
	auditor  *audit.Recorder
	bus      *event.Bus
	metrics  *Metrics
	complete CompletenessCheck
	log      zerolog.Logger
}

// NewApplicationService constructs an ApplicationService. A nil complete
// falls back to RequiredSections; metrics may be nil.
func NewApplicationService(repo repository.ApplicationRepository, auditor *audit.Recorder, bus *event.Bus, metrics *Metrics, complete CompletenessCheck, log zerolog.Logger) ApplicationService {
	if complete == nil {
		complete = RequiredSections
	}
	return &applicationService{
		repo:     repo,
		auditor:  auditor,
		bus:      bus,
		metrics:  metrics,
		complete: complete,
		log:      log,
	}
}

func (s *applicationService) Save(ctx context.Context, actor model.Actor, clientID, appID string, payload map[string]any) (*model.MerchantApplication, error) {
	if clientID == "" {
		return nil, ErrClientRequired
	}

	// Unknown keys go first, empty states second; what remains is safe to
	// merge without erasing previously saved sections.
	fields := sanitize.Sanitize(
		model.FilterApplicationFields(payload),
		model.TemporalApplicationFields(),
	)

	now := time.Now().UTC()

	app, err := s.resolveForSave(ctx, clientID, appID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		created, err := s.repo.Create(ctx, &model.MerchantApplication{
			ID:          uuid.New().String(),
			ClientID:    clientID,
			Status:      model.ApplicationDraft,
			Record:      model.Record(fields),
			UpdatedAt:   now,
			LastSavedAt: &now,
			CreatedAt:   now,
		})
		if err != nil {
			return nil, fmt.Errorf("create application: %w", err)
		}
		s.auditor.Record(ctx, actor, model.ActionApplicationSave, model.ResourceApplication, created.ID, map[string]any{
			"client_id":    created.ClientID,
			"fields_saved": len(fields),
			"created":      true,
		})
		return created, nil
	}

	if app.ClientID != clientID {
		return nil, ErrNotFound
	}
	if app.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyTerminal, app.Status)
	}

	merged, err := s.repo.MergeRecord(ctx, app.ID, model.Record(fields), now)
	if err != nil {
		return nil, fmt.Errorf("merge record: %w", err)
	}

	s.auditor.Record(ctx, actor, model.ActionApplicationSave, model.ResourceApplication, merged.ID, map[string]any{
		"client_id":    merged.ClientID,
		"fields_saved": len(fields),
	})
	return merged, nil
}

// resolveForSave finds the target of a save: by ID when given, by client
// otherwise. A nil application with nil error means "create one".
func (s *applicationService) resolveForSave(ctx context.Context, clientID, appID string) (*model.MerchantApplication, error) {
	if appID != "" {
		app, err := s.repo.FindByID(ctx, appID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return app, nil
	}
	app, err := s.repo.FindByClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return app, nil
}

func (s *applicationService) Get(ctx context.Context, id string) (*model.MerchantApplication, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

func (s *applicationService) GetByClient(ctx context.Context, clientID string) (*model.MerchantApplication, error) {
	if clientID == "" {
		return nil, ErrClientRequired
	}
	app, err := s.repo.FindByClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

func (s *applicationService) Submit(ctx context.Context, actor model.Actor, id string) (*model.MerchantApplication, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// The original submit timestamp is never overwritten.
	if app.SubmittedAt != nil {
		return app, nil
	}
	if app.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyTerminal, app.Status)
	}
	if app.Status != model.ApplicationDraft {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, app.Status, model.ApplicationSubmitted)
	}

	if err := s.complete(app); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotReady, err)
	}

	submitted, err := s.repo.MarkSubmitted(ctx, id, time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// A concurrent submit won the race; the stored timestamp stands.
			return s.Get(ctx, id)
		}
		return nil, fmt.Errorf("mark submitted: %w", err)
	}

	s.auditor.Record(ctx, actor, model.ActionApplicationSubmit, model.ResourceApplication, submitted.ID, map[string]any{
		"client_id":  submitted.ClientID,
		"old_status": string(model.ApplicationDraft),
		"new_status": string(model.ApplicationSubmitted),
	})
	s.publish(ctx, event.ApplicationSubmitted{Application: submitted, Actor: actor})
	return submitted, nil
}

func (s *applicationService) SetStatus(ctx context.Context, actor model.Actor, id string, status model.ApplicationStatus, reason string) (*model.MerchantApplication, error) {
	switch status {
	case model.ApplicationUnderReview, model.ApplicationApproved, model.ApplicationRejected:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	reason = strings.TrimSpace(reason)
	if status == model.ApplicationRejected && reason == "" {
		return nil, ErrMissingReason
	}

	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !app.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, app.Status, status)
	}

	if status != model.ApplicationRejected {
		reason = ""
	}
	var reviewedAt *time.Time
	if status.Terminal() {
		now := time.Now().UTC()
		reviewedAt = &now
	}

	oldStatus := app.Status
	updated, err := s.repo.UpdateStatus(ctx, id, status, reason, reviewedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update status: %w", err)
	}

	meta := map[string]any{
		"client_id":  updated.ClientID,
		"old_status": string(oldStatus),
		"new_status": string(status),
	}
	if reason != "" {
		meta["reason"] = reason
	}
	s.auditor.Record(ctx, actor, model.ActionApplicationStatus, model.ResourceApplication, updated.ID, meta)

	switch status {
	case model.ApplicationApproved:
		s.metrics.recordDecision(model.ResourceApplication, "approved")
	case model.ApplicationRejected:
		s.metrics.recordDecision(model.ResourceApplication, "rejected")
	}

	s.publish(ctx, event.ApplicationStatusChanged{
		Application: updated,
		OldStatus:   oldStatus,
		NewStatus:   status,
		Reason:      reason,
		Actor:       actor,
	})
	return updated, nil
}

func (s *applicationService) ListForReview(ctx context.Context, limit, offset int) (*ApplicationListResult, error) {
	res, err := s.repo.ListForReview(ctx, clampPage(limit, offset))
	if err != nil {
		return nil, err
	}
	return &ApplicationListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *applicationService) publish(ctx context.Context, evt any) {
	if s.bus != nil {
		s.bus.Publish(ctx, evt)
	}
}

// requiredApplicationFields gate submission under the default completeness
// check.
var requiredApplicationFields = []string{
	"legal_business_name",
	"business_entity_type",
	"ein",
	"business_address1",
	"business_city",
	"business_state",
	"business_zip",
	"bank_name",
	"bank_routing_number",
	"bank_account_number",
}

// RequiredSections is the default CompletenessCheck: every required scalar
// present and at least one principal officer listed.
func RequiredSections(app *model.MerchantApplication) error {
	var missing []string
	for _, name := range requiredApplicationFields {
		if _, ok := app.Record[name]; !ok {
			missing = append(missing, name)
		}
	}
	if officers, ok := app.Record["principal_officers"].([]any); !ok || len(officers) == 0 {
		missing = append(missing, "principal_officers")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
