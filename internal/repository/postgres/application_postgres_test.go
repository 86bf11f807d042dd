package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intakeapi/internal/model"
	"intakeapi/internal/repository"
)

var appCols = []string{"id", "client_id", "status", "record", "rejection_reason", "submitted_at", "reviewed_at", "updated_at", "last_saved_at", "created_at"}

func appRow(id string, status model.ApplicationStatus, record string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(appCols).
		AddRow(id, "client-1", status, []byte(record), "", nil, nil, now, now, now)
}

func TestApplicationPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewApplicationPostgres(db)
	now := time.Now().UTC()

	app := &model.MerchantApplication{
		ID:          "app-1",
		ClientID:    "client-1",
		Status:      model.ApplicationDraft,
		Record:      model.Record{"legal_business_name": "Acme LLC"},
		UpdatedAt:   now,
		LastSavedAt: &now,
		CreatedAt:   now,
	}

	mock.ExpectQuery("INSERT INTO merchant_applications").
		WithArgs(app.ID, app.ClientID, app.Status, sqlmock.AnyArg(), app.UpdatedAt, app.LastSavedAt, app.CreatedAt).
		WillReturnRows(appRow("app-1", model.ApplicationDraft, `{"legal_business_name":"Acme LLC"}`))

	stored, err := repo.Create(context.Background(), app)

	assert.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Acme LLC", stored.Record["legal_business_name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationPostgres_MergeRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewApplicationPostgres(db)
	savedAt := time.Now().UTC()

	// The merged row comes back with both the old and the new field.
	mock.ExpectQuery("UPDATE merchant_applications").
		WithArgs("app-1", []byte(`{"website":"https://acme.example"}`), savedAt).
		WillReturnRows(appRow("app-1", model.ApplicationDraft, `{"legal_business_name":"Acme LLC","website":"https://acme.example"}`))

	app, err := repo.MergeRecord(context.Background(), "app-1", model.Record{"website": "https://acme.example"}, savedAt)

	assert.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, "Acme LLC", app.Record["legal_business_name"])
	assert.Equal(t, "https://acme.example", app.Record["website"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationPostgres_MarkSubmitted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewApplicationPostgres(db)
	submittedAt := time.Now().UTC()

	t.Run("first submit", func(t *testing.T) {
		rows := sqlmock.NewRows(appCols).
			AddRow("app-1", "client-1", model.ApplicationSubmitted, []byte(`{}`), "", submittedAt, nil, submittedAt, submittedAt, submittedAt)
		mock.ExpectQuery("UPDATE merchant_applications").
			WithArgs("app-1", model.ApplicationSubmitted, submittedAt).
			WillReturnRows(rows)

		app, err := repo.MarkSubmitted(context.Background(), "app-1", submittedAt)

		assert.NoError(t, err)
		require.NotNil(t, app)
		require.NotNil(t, app.SubmittedAt)
	})

	t.Run("already submitted matches no row", func(t *testing.T) {
		mock.ExpectQuery("UPDATE merchant_applications").
			WithArgs("app-1", model.ApplicationSubmitted, submittedAt).
			WillReturnError(sql.ErrNoRows)

		app, err := repo.MarkSubmitted(context.Background(), "app-1", submittedAt)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, app)
	})
}

func TestApplicationPostgres_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewApplicationPostgres(db)
	reviewedAt := time.Now().UTC()

	rows := sqlmock.NewRows(appCols).
		AddRow("app-1", "client-1", model.ApplicationRejected, []byte(`{}`), "sanctions hit", reviewedAt, reviewedAt, reviewedAt, reviewedAt, reviewedAt)
	mock.ExpectQuery("UPDATE merchant_applications").
		WithArgs("app-1", model.ApplicationRejected, "sanctions hit", &reviewedAt).
		WillReturnRows(rows)

	app, err := repo.UpdateStatus(context.Background(), "app-1", model.ApplicationRejected, "sanctions hit", &reviewedAt)

	assert.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, model.ApplicationRejected, app.Status)
	assert.Equal(t, "sanctions hit", app.RejectionReason)
}

func TestApplicationPostgres_ListForReview(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewApplicationPostgres(db)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(model.ApplicationSubmitted, model.ApplicationUnderReview).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM merchant_applications").
		WithArgs(model.ApplicationSubmitted, model.ApplicationUnderReview, 10, 0).
		WillReturnRows(appRow("app-1", model.ApplicationSubmitted, `{}`))

	res, err := repo.ListForReview(context.Background(), repository.PageQuery{Limit: 10, Offset: 0})

	assert.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Items, 1)
	assert.NotNil(t, res.Items[0].Record)
}
