package notify

import (
	"context"

	"github.com/rs/zerolog"

	"intakeapi/internal/event"
	"intakeapi/internal/model"
)

// Subscriber maps domain events onto notification templates. It is the single
// consumer of status-transition events; the state machines know nothing about
// templates or recipients.
type Subscriber struct {
	dispatcher Dispatcher
	log        zerolog.Logger
}

// NewSubscriber constructs a Subscriber. dispatcher may be nil, in which case
// every event is dropped silently (notifications unconfigured).
func NewSubscriber(dispatcher Dispatcher, log zerolog.Logger) *Subscriber {
	return &Subscriber{dispatcher: dispatcher, log: log}
}

// HandleEvent is the event.Handler entry point. Dispatch failures are logged,
// never propagated: the triggering transition already persisted.
func (s *Subscriber) HandleEvent(ctx context.Context, evt any) {
	if s.dispatcher == nil {
		return
	}

	switch e := evt.(type) {
	case event.DocumentStatusChanged:
		s.documentStatusChanged(ctx, e)
	case event.ClientDocumentsApproved:
		s.send(ctx, TemplateAllDocsApproved, e.ClientID, map[string]any{
			"client_id": e.ClientID,
		})
	case event.ApplicationSubmitted:
		s.send(ctx, TemplateApplicationReceived, e.Application.ClientID, map[string]any{
			"application_id": e.Application.ID,
		})
	case event.ApplicationStatusChanged:
		s.applicationStatusChanged(ctx, e)
	}
}

func (s *Subscriber) documentStatusChanged(ctx context.Context, e event.DocumentStatusChanged) {
	tmplCtx := map[string]any{
		"document_id":   e.Document.ID,
		"document_type": e.Document.DocumentType,
		"filename":      e.Document.Filename,
	}
	switch e.NewStatus {
	case model.DocumentApproved:
		s.send(ctx, TemplateDocumentApproved, e.Document.ClientID, tmplCtx)
	case model.DocumentRejected:
		tmplCtx["reason"] = e.Reason
		s.send(ctx, TemplateDocumentRejected, e.Document.ClientID, tmplCtx)
	}
}

func (s *Subscriber) applicationStatusChanged(ctx context.Context, e event.ApplicationStatusChanged) {
	tmplCtx := map[string]any{"application_id": e.Application.ID}
	switch e.NewStatus {
	case model.ApplicationUnderReview:
		s.send(ctx, TemplateApplicationInReview, e.Application.ClientID, tmplCtx)
	case model.ApplicationApproved:
		s.send(ctx, TemplateApplicationApproved, e.Application.ClientID, tmplCtx)
	case model.ApplicationRejected:
		tmplCtx["reason"] = e.Reason
		s.send(ctx, TemplateApplicationRejected, e.Application.ClientID, tmplCtx)
	}
}

func (s *Subscriber) send(ctx context.Context, templateID, recipient string, tmplCtx map[string]any) {
	if err := s.dispatcher.Notify(ctx, templateID, recipient, tmplCtx); err != nil {
		s.log.Warn().Err(err).
			Str("template_id", templateID).
			Str("recipient", recipient).
			Msg("notify: dispatch failed")
	}
}
