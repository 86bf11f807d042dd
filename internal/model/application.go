package model

import "time"

// ApplicationStatus is the lifecycle state of a merchant application.
type ApplicationStatus string

const (
	ApplicationDraft       ApplicationStatus = "DRAFT"
	ApplicationSubmitted   ApplicationStatus = "SUBMITTED"
	ApplicationUnderReview ApplicationStatus = "UNDER_REVIEW"
	ApplicationApproved    ApplicationStatus = "APPROVED"
	ApplicationRejected    ApplicationStatus = "REJECTED"
)

// Valid reports whether s is a recognized application status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationDraft, ApplicationSubmitted, ApplicationUnderReview,
		ApplicationApproved, ApplicationRejected:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transition.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationApproved || s == ApplicationRejected
}

// rank orders the forward lifecycle. Terminal statuses share the highest rank.
func (s ApplicationStatus) rank() int {
	switch s {
	case ApplicationDraft:
		return 0
	case ApplicationSubmitted:
		return 1
	case ApplicationUnderReview:
		return 2
	case ApplicationApproved, ApplicationRejected:
		return 3
	}
	return -1
}

// CanTransitionTo reports whether moving from s to next is a forward move or a
// jump to a terminal status. Backward moves and moves out of a terminal status
// are never allowed.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	if !next.Valid() || s.Terminal() {
		return false
	}
	return next.Terminal() || next.rank() > s.rank()
}

// Record holds the semi-structured business portion of a merchant application.
// Keys are constrained by the ApplicationFields registry; values have already
// passed through the sanitizer by the time they are merged into a Record.
type Record map[string]any

// Merge returns a new Record with src applied over r at the top-field level.
// Nested objects and lists are replaced whole, matching last-write-wins at the
// merged-field level. Neither input is modified.
func (r Record) Merge(src Record) Record {
	out := make(Record, len(r)+len(src))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}

// MerchantApplication is a client's business application. The lifecycle
// columns live beside the business record; the record itself is built up over
// many partial saves.
type MerchantApplication struct {
	ID              string            `json:"id"`
	ClientID        string            `json:"client_id"`
	Status          ApplicationStatus `json:"status"`
	Record          Record            `json:"record"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	SubmittedAt     *time.Time        `json:"submitted_at,omitempty"`
	ReviewedAt      *time.Time        `json:"reviewed_at,omitempty"`
	UpdatedAt       time.Time         `json:"updated_at"`
	LastSavedAt     *time.Time        `json:"last_saved_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// PrincipalOfficer is an entry of the application's principal officers list.
type PrincipalOfficer struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Title            string `json:"title"`
	OwnershipPercent string `json:"ownership_percent,omitempty"`
	SSN              string `json:"ssn,omitempty"`
	DateOfBirth      string `json:"date_of_birth,omitempty"`
	HomeAddress      string `json:"home_address,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Email            string `json:"email,omitempty"`
}

// BeneficialOwner is an individual with 25% or more ownership, subject to
// enhanced disclosure.
type BeneficialOwner struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	OwnershipPercent string `json:"ownership_percent"`
	SSN              string `json:"ssn,omitempty"`
	DateOfBirth      string `json:"date_of_birth,omitempty"`
	HomeAddress      string `json:"home_address,omitempty"`
	IDNumber         string `json:"id_number,omitempty"`
	IDType           string `json:"id_type,omitempty"`
}

// AuthorizedContact may speak for the business but holds no ownership.
type AuthorizedContact struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Title     string `json:"title,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
}

// FinancialRepresentative is the single financial contact on the application.
type FinancialRepresentative struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Title     string `json:"title,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	SSN       string `json:"ssn,omitempty"`
}
