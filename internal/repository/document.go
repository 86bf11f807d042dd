package repository

import (
	"context"
	"time"

	"intakeapi/internal/model"
)

// DocumentRepository defines data access for compliance documents.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// ListByClient returns a page of one client's documents, newest-first.
	ListByClient(ctx context.Context, clientID string, pq PageQuery) (*PageResult[model.Document], error)

	// ListForReview returns a page of PENDING documents across all clients,
	// oldest-first so reviewers drain the queue in upload order.
	ListForReview(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// UpdateStatus writes the review decision: status, reason (empty clears a
	// stale one), and reviewedAt. Returns the updated row.
	UpdateStatus(ctx context.Context, id string, status model.DocumentStatus, reason string, reviewedAt time.Time) (*model.Document, error)

	// CountUnapproved returns how many of the client's documents are not yet
	// APPROVED.
	CountUnapproved(ctx context.Context, clientID string) (int, error)

	// Delete removes a document by ID. It returns nil if the row was deleted
	// or did not exist.
	Delete(ctx context.Context, id string) error
}
