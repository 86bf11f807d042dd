package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"intakeapi/internal/model"
	"intakeapi/internal/repository"
)

// AuditPostgres is a PostgreSQL implementation of repository.AuditRepository.
// Append is the only write path; the table carries no UPDATE or DELETE query.
type AuditPostgres struct {
	db *sql.DB
}

// NewAuditPostgres creates a new AuditPostgres repository.
func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

const auditColumns = `id, actor_id, action, resource_type, resource_id, metadata, ip_address, created_at`

// Append inserts one audit entry and returns the stored row.
func (r *AuditPostgres) Append(ctx context.Context, entry *model.AuditLogEntry) (*model.AuditLogEntry, error) {
	var metadataJSON []byte
	if entry.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(entry.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata: %w", err)
		}
	}

	const q = `
		INSERT INTO audit_log (id, actor_id, action, resource_type, resource_id, metadata, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + auditColumns
	row := r.db.QueryRowContext(ctx, q,
		entry.ID,
		entry.ActorID,
		entry.Action,
		entry.ResourceType,
		entry.ResourceID,
		metadataJSON,
		entry.IPAddress,
		entry.CreatedAt,
	)
	return scanAuditEntry(row)
}

// ListByResource returns a resource's trail newest-first.
func (r *AuditPostgres) ListByResource(ctx context.Context, resourceType, resourceID string, pq repository.PageQuery) ([]model.AuditLogEntry, error) {
	const q = `
		SELECT ` + auditColumns + `
		FROM audit_log
		WHERE resource_type = $1 AND resource_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, q, resourceType, resourceID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAuditEntries(rows)
}

// ListByActor returns an actor's most recent entries newest-first.
func (r *AuditPostgres) ListByActor(ctx context.Context, actorID string, limit int) ([]model.AuditLogEntry, error) {
	const q = `
		SELECT ` + auditColumns + `
		FROM audit_log
		WHERE actor_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, q, actorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAuditEntries(rows)
}

func scanAuditEntry(row rowScanner) (*model.AuditLogEntry, error) {
	var (
		e            model.AuditLogEntry
		metadataJSON []byte
	)
	if err := row.Scan(
		&e.ID,
		&e.ActorID,
		&e.Action,
		&e.ResourceType,
		&e.ResourceID,
		&metadataJSON,
		&e.IPAddress,
		&e.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &e.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &e, nil
}

func collectAuditEntries(rows *sql.Rows) ([]model.AuditLogEntry, error) {
	entries := make([]model.AuditLogEntry, 0)
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
