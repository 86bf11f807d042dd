package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"intakeapi/internal/model"
	"intakeapi/internal/repository"
)

// ApplicationPostgres is a PostgreSQL implementation of repository.ApplicationRepository.
// The business record is a single JSONB column; partial saves merge into it
// with the || operator so previously saved fields are never lost.
type ApplicationPostgres struct {
	db *sql.DB
}

// NewApplicationPostgres creates a new ApplicationPostgres repository.
func NewApplicationPostgres(db *sql.DB) *ApplicationPostgres {
	return &ApplicationPostgres{db: db}
}

var _ repository.ApplicationRepository = (*ApplicationPostgres)(nil)

const applicationColumns = `id, client_id, status, record, rejection_reason, submitted_at, reviewed_at, updated_at, last_saved_at, created_at`

// Create inserts a new application row and returns the stored record.
func (r *ApplicationPostgres) Create(ctx context.Context, app *model.MerchantApplication) (*model.MerchantApplication, error) {
	recordJSON, err := json.Marshal(app.Record)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	const q = `
		INSERT INTO merchant_applications (id, client_id, status, record, updated_at, last_saved_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + applicationColumns
	row := r.db.QueryRowContext(ctx, q,
		app.ID,
		app.ClientID,
		app.Status,
		recordJSON,
		app.UpdatedAt,
		app.LastSavedAt,
		app.CreatedAt,
	)
	return scanApplication(row)
}

// FindByID fetches a single application by its ID.
func (r *ApplicationPostgres) FindByID(ctx context.Context, id string) (*model.MerchantApplication, error) {
	const q = `SELECT ` + applicationColumns + ` FROM merchant_applications WHERE id = $1`
	return scanApplication(r.db.QueryRowContext(ctx, q, id))
}

// FindByClient fetches the client's application.
func (r *ApplicationPostgres) FindByClient(ctx context.Context, clientID string) (*model.MerchantApplication, error) {
	const q = `SELECT ` + applicationColumns + ` FROM merchant_applications WHERE client_id = $1`
	return scanApplication(r.db.QueryRowContext(ctx, q, clientID))
}

// MergeRecord applies sanitized fields over the stored record. The JSONB ||
// merge is top-field level: present keys are replaced whole, absent keys are
// untouched, and the sanitizer guarantees no key carries null.
func (r *ApplicationPostgres) MergeRecord(ctx context.Context, id string, fields model.Record, savedAt time.Time) (*model.MerchantApplication, error) {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}

	const q = `
		UPDATE merchant_applications
		SET record = record || $2::jsonb, updated_at = $3, last_saved_at = $3
		WHERE id = $1
		RETURNING ` + applicationColumns
	return scanApplication(r.db.QueryRowContext(ctx, q, id, fieldsJSON, savedAt))
}

// MarkSubmitted sets status SUBMITTED and stamps submitted_at once.
func (r *ApplicationPostgres) MarkSubmitted(ctx context.Context, id string, submittedAt time.Time) (*model.MerchantApplication, error) {
	const q = `
		UPDATE merchant_applications
		SET status = $2, submitted_at = $3, updated_at = $3
		WHERE id = $1 AND submitted_at IS NULL
		RETURNING ` + applicationColumns
	return scanApplication(r.db.QueryRowContext(ctx, q, id, model.ApplicationSubmitted, submittedAt))
}

// UpdateStatus writes an administrator decision and returns the updated row.
func (r *ApplicationPostgres) UpdateStatus(ctx context.Context, id string, status model.ApplicationStatus, reason string, reviewedAt *time.Time) (*model.MerchantApplication, error) {
	const q = `
		UPDATE merchant_applications
		SET status = $2, rejection_reason = $3, reviewed_at = COALESCE($4, reviewed_at), updated_at = now()
		WHERE id = $1
		RETURNING ` + applicationColumns
	return scanApplication(r.db.QueryRowContext(ctx, q, id, status, reason, reviewedAt))
}

// ListForReview returns SUBMITTED and UNDER_REVIEW applications oldest
// submission first, with a total count.
func (r *ApplicationPostgres) ListForReview(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.MerchantApplication], error) {
	const qCount = `SELECT COUNT(*) FROM merchant_applications WHERE status IN ($1, $2)`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, model.ApplicationSubmitted, model.ApplicationUnderReview).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + applicationColumns + `
		FROM merchant_applications
		WHERE status IN ($1, $2)
		ORDER BY submitted_at ASC, id ASC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, qList, model.ApplicationSubmitted, model.ApplicationUnderReview, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.MerchantApplication, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.MerchantApplication]{Items: items, Total: total}, nil
}

func scanApplication(row rowScanner) (*model.MerchantApplication, error) {
	var (
		app         model.MerchantApplication
		recordJSON  []byte
		submittedAt sql.NullTime
		reviewedAt  sql.NullTime
		lastSavedAt sql.NullTime
	)
	if err := row.Scan(
		&app.ID,
		&app.ClientID,
		&app.Status,
		&recordJSON,
		&app.RejectionReason,
		&submittedAt,
		&reviewedAt,
		&app.UpdatedAt,
		&lastSavedAt,
		&app.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(recordJSON) > 0 {
		if err := json.Unmarshal(recordJSON, &app.Record); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
	}
	if app.Record == nil {
		app.Record = model.Record{}
	}
	if submittedAt.Valid {
		t := submittedAt.Time
		app.SubmittedAt = &t
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		app.ReviewedAt = &t
	}
	if lastSavedAt.Valid {
		t := lastSavedAt.Time
		app.LastSavedAt = &t
	}
	return &app, nil
}
