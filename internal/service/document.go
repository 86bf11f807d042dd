package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"intakeapi/internal/audit"
	"intakeapi/internal/event"
	"intakeapi/internal/model"
	"intakeapi/internal/repository"
	"intakeapi/internal/storage"
)

// presignExpiry bounds how long a download link stays usable.
const presignExpiry = 15 * time.Minute

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DocumentService defines the use cases for compliance documents: upload,
// review lifecycle (PENDING → APPROVED | REJECTED), and deletion.
type DocumentService interface {
	// Upload stores the file in object storage when available, persists the
	// metadata row in PENDING, and records one audit entry. A blob-write
	// failure degrades to metadata-only persistence.
	Upload(ctx context.Context, actor model.Actor, clientID, documentType string, r io.Reader, originalFilename, contentType string, size int64) (*model.Document, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// PresignDownload returns a time-limited download URL and records a
	// sensitive-access audit entry.
	PresignDownload(ctx context.Context, actor model.Actor, id string) (string, error)

	// ListByClient returns one client's documents, newest-first.
	ListByClient(ctx context.Context, clientID string, limit, offset int) (*DocumentListResult, error)

	// ListForReview returns the PENDING review queue, oldest-first.
	ListForReview(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	// Review transitions a PENDING document to APPROVED or REJECTED. REJECTED
	// requires a non-empty reason. The transition stamps ReviewedAt, clears a
	// stale rejection reason unless the new status is REJECTED, records one
	// audit entry, and emits one DocumentStatusChanged event. Approving the
	// client's last unapproved document additionally emits
	// ClientDocumentsApproved, exactly once.
	Review(ctx context.Context, actor model.Actor, id string, status model.DocumentStatus, reason string) (*model.Document, error)

	// Delete removes the document row from any status. Blob removal is
	// best-effort: a failure is logged as an orphan warning and never blocks
	// the row deletion.
	Delete(ctx context.Context, actor model.Actor, id string) error
}

type documentService struct {
	store   storage.Storage
	repo    repository.DocumentRepository
	auditor *audit.Recorder
	bus     *event.Bus
	metrics *Metrics
	log     zerolog.Logger
}

// NewDocumentService constructs a DocumentService. store may be nil, in which
// case uploads persist metadata only. metrics may be nil.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, auditor *audit.Recorder, bus *event.Bus, metrics *Metrics, log zerolog.Logger) DocumentService {
	return &documentService{
		store:   store,
		repo:    repo,
		auditor: auditor,
		bus:     bus,
		metrics: metrics,
		log:     log,
	}
}

func (s *documentService) Upload(ctx context.Context, actor model.Actor, clientID, documentType string, r io.Reader, originalFilename, contentType string, size int64) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if clientID == "" {
		return nil, ErrClientRequired
	}
	if documentType == "" {
		return nil, fmt.Errorf("%w: document type is required", ErrValidationFailed)
	}

	// Stored filename is UUID + original extension; the original name goes to
	// object metadata only.
	ext := filepath.Ext(originalFilename)
	genName := uuid.New().String() + ext

	storagePath := ""
	if s.store != nil {
		key := filepath.ToSlash(filepath.Join("documents", clientID, genName))
		objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
			Size:        size,
			ContentType: contentType,
			Metadata: map[string]string{
				"original-filename": originalFilename,
			},
		})
		if err != nil {
			// Degraded storage is non-fatal; the metadata row still lands.
			s.log.Warn().Err(err).Str("key", key).Msg("document: blob write failed, persisting metadata only")
		} else {
			storagePath = objInfo.Key
		}
	}

	doc := &model.Document{
		ID:           uuid.New().String(),
		ClientID:     clientID,
		DocumentType: documentType,
		Filename:     genName,
		StoragePath:  storagePath,
		Size:         size,
		ContentType:  contentType,
		Status:       model.DocumentPending,
		UploadedAt:   time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		if storagePath != "" {
			if delErr := s.store.Delete(ctx, storagePath); delErr != nil {
				return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
			}
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.auditor.Record(ctx, actor, model.ActionDocumentUpload, model.ResourceDocument, stored.ID, map[string]any{
		"client_id":     stored.ClientID,
		"document_type": stored.DocumentType,
		"filename":      stored.Filename,
		"size":          stored.Size,
	})
	return stored, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) PresignDownload(ctx context.Context, actor model.Actor, id string) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if s.store == nil || doc.StoragePath == "" {
		return "", fmt.Errorf("%w: document has no stored file", ErrNotFound)
	}
	url, err := s.store.PresignGet(ctx, doc.StoragePath, presignExpiry)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}

	s.auditor.Record(ctx, actor, model.ActionDocumentDownload, model.ResourceDocument, doc.ID, map[string]any{
		"client_id": doc.ClientID,
		"filename":  doc.Filename,
	})
	return url, nil
}

// ListByClient returns paginated documents without exposing repository types.
func (s *documentService) ListByClient(ctx context.Context, clientID string, limit, offset int) (*DocumentListResult, error) {
	if clientID == "" {
		return nil, ErrClientRequired
	}
	res, err := s.repo.ListByClient(ctx, clientID, clampPage(limit, offset))
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) ListForReview(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	res, err := s.repo.ListForReview(ctx, clampPage(limit, offset))
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) Review(ctx context.Context, actor model.Actor, id string, status model.DocumentStatus, reason string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	reason = strings.TrimSpace(reason)
	if status == model.DocumentRejected && reason == "" {
		return nil, ErrMissingReason
	}

	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Status.Terminal() || !status.Terminal() {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, doc.Status, status)
	}

	// Stale reason never survives a non-rejection.
	if status != model.DocumentRejected {
		reason = ""
	}

	oldStatus := doc.Status
	updated, err := s.repo.UpdateStatus(ctx, id, status, reason, time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	action := model.ActionDocumentApprove
	decision := "approved"
	if status == model.DocumentRejected {
		action = model.ActionDocumentReject
		decision = "rejected"
	}
	meta := map[string]any{
		"client_id":  updated.ClientID,
		"old_status": string(oldStatus),
		"new_status": string(status),
	}
	if reason != "" {
		meta["reason"] = reason
	}
	s.auditor.Record(ctx, actor, action, model.ResourceDocument, updated.ID, meta)
	s.metrics.recordDecision(model.ResourceDocument, decision)

	s.publish(ctx, event.DocumentStatusChanged{
		Document:  updated,
		OldStatus: oldStatus,
		NewStatus: status,
		Reason:    reason,
		Actor:     actor,
	})

	// The review that turned the last unapproved document APPROVED signals
	// the fully-approved condition. Later approvals cannot re-trigger it:
	// terminal documents are never reviewed again.
	if status == model.DocumentApproved {
		remaining, err := s.repo.CountUnapproved(ctx, updated.ClientID)
		if err != nil {
			s.log.Warn().Err(err).Str("client_id", updated.ClientID).Msg("document: unapproved count failed")
		} else if remaining == 0 {
			s.publish(ctx, event.ClientDocumentsApproved{ClientID: updated.ClientID, Actor: actor})
		}
	}

	return updated, nil
}

// Delete removes the document row and frees the blob best-effort.
func (s *documentService) Delete(ctx context.Context, actor model.Actor, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if s.store != nil && doc.StoragePath != "" {
		if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
			// The row still goes; the blob is reconciled later.
			s.log.Warn().Err(err).
				Str("document_id", doc.ID).
				Str("storage_path", doc.StoragePath).
				Msg("document: blob delete failed, orphaned object left behind")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditor.Record(ctx, actor, model.ActionDocumentDelete, model.ResourceDocument, doc.ID, map[string]any{
		"client_id":    doc.ClientID,
		"filename":     doc.Filename,
		"storage_path": doc.StoragePath,
		"status":       string(doc.Status),
	})
	return nil
}

func (s *documentService) publish(ctx context.Context, evt any) {
	if s.bus != nil {
		s.bus.Publish(ctx, evt)
	}
}

func clampPage(limit, offset int) repository.PageQuery {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return repository.PageQuery{Limit: limit, Offset: offset}
}
