package repository

import (
	"context"

	"intakeapi/internal/model"
)

// AuditRepository appends and reads immutable audit log entries. Append is
// the only mutation exposed; rows are never updated or deleted.
type AuditRepository interface {
	// Append inserts one audit entry and returns it with ID and CreatedAt set.
	Append(ctx context.Context, entry *model.AuditLogEntry) (*model.AuditLogEntry, error)

	// ListByResource returns a resource's trail, newest-first.
	ListByResource(ctx context.Context, resourceType, resourceID string, pq PageQuery) ([]model.AuditLogEntry, error)

	// ListByActor returns an actor's most recent entries, newest-first,
	// capped at limit.
	ListByActor(ctx context.Context, actorID string, limit int) ([]model.AuditLogEntry, error)
}
