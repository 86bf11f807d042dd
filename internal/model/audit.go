package model

import "time"

// AuditAction identifies what a trail entry records.
type AuditAction string

const (
	ActionDocumentUpload     AuditAction = "DOCUMENT_UPLOAD"
	ActionDocumentApprove    AuditAction = "DOCUMENT_APPROVE"
	ActionDocumentReject     AuditAction = "DOCUMENT_REJECT"
	ActionDocumentDelete     AuditAction = "DOCUMENT_DELETE"
	ActionDocumentDownload   AuditAction = "DOCUMENT_DOWNLOAD"
	ActionApplicationSave    AuditAction = "APPLICATION_SAVE"
	ActionApplicationSubmit  AuditAction = "APPLICATION_SUBMIT"
	ActionApplicationStatus  AuditAction = "APPLICATION_STATUS_CHANGE"
	ActionSensitiveAccess    AuditAction = "SENSITIVE_FIELD_ACCESS"
	ActionImpersonationStart AuditAction = "IMPERSONATION_START"
	ActionImpersonationEnd   AuditAction = "IMPERSONATION_END"
)

// Resource types referenced by audit entries.
const (
	ResourceDocument    = "document"
	ResourceApplication = "merchant_application"
	ResourceUser        = "user"
)

// AuditLogEntry is one immutable row of the audit trail. Entries are appended
// once and never updated or deleted; a resource's full history must be
// reconstructable from its entries alone.
type AuditLogEntry struct {
	ID           string         `json:"id"`
	ActorID      string         `json:"actor_id"`
	Action       AuditAction    `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	IPAddress    string         `json:"ip_address,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Actor identifies who performed a mutation, as resolved by the routing layer.
type Actor struct {
	ID string
	IP string
}
