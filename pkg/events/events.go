// Package events publishes operator-facing progress notifications for
// coursework workflows. Publishing is best effort: a broker outage never
// fails the originating operation.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Subjects emitted by the ledger, relative to the configured prefix.
const (
	SubjectAssignmentCreated = "assignment.created"
	SubjectAssignmentClosed  = "assignment.closed"
	SubjectSubmissionCreated = "submission.created"
	SubjectSubmissionGraded  = "submission.graded"
)

// Notifier publishes a progress event. Implementations must not block the
// caller on broker errors.
type Notifier interface {
	Notify(ctx context.Context, subject string, payload interface{})
}

type envelope struct {
	Subject    string      `json:"subject"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Connect establishes the NATS connection used by the notifier.
func Connect(url string) (*nats.Conn, error) {
	if url == "" {
		return nil, fmt.Errorf("nats url must not be empty")
	}

	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to nats: %w", err)
	}

	return conn, nil
}

// NATSNotifier publishes events to a NATS subject tree.
type NATSNotifier struct {
	conn   *nats.Conn
	prefix string
	logger zerolog.Logger
}

// NewNATSNotifier constructs a notifier publishing under the given subject
// prefix (defaults to "coursework").
func NewNATSNotifier(conn *nats.Conn, prefix string, logger zerolog.Logger) *NATSNotifier {
	if prefix == "" {
		prefix = "coursework"
	}

	return &NATSNotifier{
		conn:   conn,
		prefix: prefix,
		logger: logger.With().Str("component", "nats_notifier").Logger(),
	}
}

// Notify publishes the event, logging failures instead of returning them.
func (n *NATSNotifier) Notify(_ context.Context, subject string, payload interface{}) {
	event := envelope{
		Subject:    subject,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}

	data, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn().Err(err).Str("subject", subject).Msg("failed to encode event")
		return
	}

	if err := n.conn.Publish(n.prefix+"."+subject, data); err != nil {
		n.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}

// NopNotifier discards all events. Used when no broker is configured.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, string, interface{}) {}
