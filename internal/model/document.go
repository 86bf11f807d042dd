package model

import "time"

// DocumentStatus is the review state of an uploaded compliance document.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "PENDING"
	DocumentApproved DocumentStatus = "APPROVED"
	DocumentRejected DocumentStatus = "REJECTED"
)

// Valid reports whether s is one of the three recognized document statuses.
func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentPending, DocumentApproved, DocumentRejected:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transition.
func (s DocumentStatus) Terminal() bool {
	return s == DocumentApproved || s == DocumentRejected
}

// Document represents a client-uploaded compliance file under review.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	ID              string         `json:"id"`
	ClientID        string         `json:"client_id"`
	DocumentType    string         `json:"document_type"`
	Filename        string         `json:"filename"`
	StoragePath     string         `json:"storage_path"`
	Size            int64          `json:"size"`
	ContentType     string         `json:"content_type"`
	Status          DocumentStatus `json:"status"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	UploadedAt      time.Time      `json:"uploaded_at"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty"`
}
