// Package audit records every state-changing action in the immutable trail.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"intakeapi/internal/model"
	"intakeapi/internal/repository"
)

// Recorder appends audit entries and reads trails. A failed append is logged
// and swallowed: the business action that triggered it already succeeded, and
// an audit outage must never fail it retroactively.
type Recorder struct {
	repo repository.AuditRepository
	log  zerolog.Logger
}

// NewRecorder constructs a Recorder.
func NewRecorder(repo repository.AuditRepository, log zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, log: log}
}

// Record appends exactly one entry for a completed mutation. It never returns
// an error; append failures are logged with enough context to backfill.
func (r *Recorder) Record(ctx context.Context, actor model.Actor, action model.AuditAction, resourceType, resourceID string, metadata map[string]any) {
	entry := &model.AuditLogEntry{
		ID:           uuid.NewString(),
		ActorID:      actor.ID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     metadata,
		IPAddress:    actor.IP,
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := r.repo.Append(ctx, entry); err != nil {
		r.log.Error().Err(err).
			Str("actor_id", actor.ID).
			Str("action", string(action)).
			Str("resource_type", resourceType).
			Str("resource_id", resourceID).
			Msg("audit: failed to append entry")
	}
}

// Trail returns a resource's entries newest-first.
func (r *Recorder) Trail(ctx context.Context, resourceType, resourceID string, pq repository.PageQuery) ([]model.AuditLogEntry, error) {
	if pq.Limit <= 0 {
		pq.Limit = 50
	}
	if pq.Offset < 0 {
		pq.Offset = 0
	}
	return r.repo.ListByResource(ctx, resourceType, resourceID, pq)
}

// TrailForActor returns an actor's most recent entries newest-first.
func (r *Recorder) TrailForActor(ctx context.Context, actorID string, limit int) ([]model.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.repo.ListByActor(ctx, actorID, limit)
}
