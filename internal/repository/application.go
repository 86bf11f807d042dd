package repository

import (
	"context"
	"time"

	"intakeapi/internal/model"
)

// ApplicationRepository defines data access for merchant applications.
type ApplicationRepository interface {
	// Create inserts a new application in DRAFT with its initial record.
	Create(ctx context.Context, app *model.MerchantApplication) (*model.MerchantApplication, error)

	// FindByID returns an application by its ID.
	FindByID(ctx context.Context, id string) (*model.MerchantApplication, error)

	// FindByClient returns the client's application, or sql.ErrNoRows if the
	// client has not started one.
	FindByClient(ctx context.Context, clientID string) (*model.MerchantApplication, error)

	// MergeRecord applies sanitized fields over the stored record at the
	// top-field level and stamps updated_at and last_saved_at. Returns the
	// merged row. Fields absent from the partial are left untouched.
	MergeRecord(ctx context.Context, id string, fields model.Record, savedAt time.Time) (*model.MerchantApplication, error)

	// MarkSubmitted sets status SUBMITTED and submitted_at. The caller
	// guarantees submitted_at was not previously set.
	MarkSubmitted(ctx context.Context, id string, submittedAt time.Time) (*model.MerchantApplication, error)

	// UpdateStatus writes an administrator decision. reviewedAt is nil for
	// non-terminal statuses.
	UpdateStatus(ctx context.Context, id string, status model.ApplicationStatus, reason string, reviewedAt *time.Time) (*model.MerchantApplication, error)

	// ListForReview returns a page of SUBMITTED and UNDER_REVIEW applications,
	// oldest submission first.
	ListForReview(ctx context.Context, pq PageQuery) (*PageResult[model.MerchantApplication], error)
}
