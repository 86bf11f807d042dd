package event

import "intakeapi/internal/model"

// Domain events emitted by the state machines after a mutation is durably
// persisted. The notification subscriber maps these onto templates; nothing
// in the transition logic knows about notification plumbing.

// DocumentStatusChanged is emitted once per document review decision.
type DocumentStatusChanged struct {
	Document  *model.Document
	OldStatus model.DocumentStatus
	NewStatus model.DocumentStatus
	Reason    string
	Actor     model.Actor
}

// ClientDocumentsApproved is emitted once, when the review that just ran left
// the client with no unapproved documents.
type ClientDocumentsApproved struct {
	ClientID string
	Actor    model.Actor
}

// ApplicationSubmitted is emitted on the first successful submit.
type ApplicationSubmitted struct {
	Application *model.MerchantApplication
	Actor       model.Actor
}

// ApplicationStatusChanged is emitted once per administrator status decision.
type ApplicationStatusChanged struct {
	Application *model.MerchantApplication
	OldStatus   model.ApplicationStatus
	NewStatus   model.ApplicationStatus
	Reason      string
	Actor       model.Actor
}
