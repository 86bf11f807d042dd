// Package notify turns domain events into outbound notifications. Dispatch is
// fire-and-forget: a notification that cannot be delivered is logged and
// dropped, never retried synchronously and never surfaced to the caller.
package notify

import "context"

// Template IDs understood by the downstream notification service.
const (
	TemplateDocumentApproved    = "document_approved"
	TemplateDocumentRejected    = "document_rejected"
	TemplateAllDocsApproved     = "all_documents_approved"
	TemplateApplicationReceived = "application_received"
	TemplateApplicationApproved = "application_approved"
	TemplateApplicationRejected = "application_rejected"
	TemplateApplicationInReview = "application_in_review"
)

// Dispatcher delivers one templated notification to one recipient.
type Dispatcher interface {
	Notify(ctx context.Context, templateID, recipient string, tmplCtx map[string]any) error
}
