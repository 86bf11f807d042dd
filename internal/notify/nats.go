package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// natsMessage is the JSON schema published for the notification service.
type natsMessage struct {
	TemplateID string         `json:"template_id"`
	Recipient  string         `json:"recipient"`
	Context    map[string]any `json:"context,omitempty"`
}

// NATSDispatcher publishes notification requests to NATS for the downstream
// notification service to render and deliver.
//
// Subject convention: notifications.intake.<template_id>
type NATSDispatcher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSDispatcher connects to the given NATS URL. subjectPrefix defaults to
// "notifications.intake" when empty.
func NewNATSDispatcher(url, subjectPrefix string) (*NATSDispatcher, error) {
	if url == "" {
		return nil, fmt.Errorf("nats url is required")
	}
	if subjectPrefix == "" {
		subjectPrefix = "notifications.intake"
	}
	conn, err := nats.Connect(url, nats.Name("intakeapi"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSDispatcher{conn: conn, subject: subjectPrefix}, nil
}

// Notify publishes one notification request. The context deadline is not
// consulted; NATS publishes are buffered and non-blocking.
func (d *NATSDispatcher) Notify(_ context.Context, templateID, recipient string, tmplCtx map[string]any) error {
	data, err := json.Marshal(natsMessage{
		TemplateID: templateID,
		Recipient:  recipient,
		Context:    tmplCtx,
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	subject := d.subject + "." + templateID
	if err := d.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close drains the connection.
func (d *NATSDispatcher) Close() {
	if d.conn != nil {
		d.conn.Close()
	}
}
