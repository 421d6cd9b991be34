// Package events publishes push events to a NATS subject.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/fivetwenty-io/gia/internal/constants"
	"github.com/fivetwenty-io/gia/pkg/iga"
)

var _ iga.EventPublisher = (*NATSPublisher)(nil)

// Conn is the subset of *nats.Conn used by NATSPublisher.
type Conn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// NATSConfig configures a NATSPublisher.
type NATSConfig struct {
	// URL of the NATS server, e.g. "nats://127.0.0.1:4222".
	URL string
	// Subject events are published on. Defaults to "gia.push".
	Subject string
	// Name identifies the connection to the server.
	Name string
}

// NATSPublisher implements iga.EventPublisher on a NATS connection.
type NATSPublisher struct {
	conn    Conn
	subject string
	logger  iga.Logger
}

// Connect dials the NATS server and returns a publisher owning the connection.
func Connect(config NATSConfig, logger iga.Logger) (*NATSPublisher, error) {
	name := config.Name
	if name == "" {
		name = "gia"
	}

	conn, err := nats.Connect(config.URL,
		nats.Name(name),
		nats.Timeout(constants.ShortHTTPTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", config.URL, err)
	}

	return NewNATSPublisher(conn, config.Subject, logger), nil
}

// NewNATSPublisher wraps an existing connection.
func NewNATSPublisher(conn Conn, subject string, logger iga.Logger) *NATSPublisher {
	if subject == "" {
		subject = constants.DefaultEventSubject
	}

	return &NATSPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger,
	}
}

// Subject returns the subject events are published on.
func (p *NATSPublisher) Subject() string {
	return p.subject
}

// Publish sends the event as JSON. Events without an ID get a random one.
func (p *NATSPublisher) Publish(ctx context.Context, event iga.PushEvent) error {
	if p.conn == nil {
		return constants.ErrNoEventConnection
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publishing %s event: %w", event.Type, err)
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", event.Type, err)
	}

	err = p.conn.Publish(p.subject, data)
	if err != nil {
		return fmt.Errorf("publishing %s event: %w", event.Type, err)
	}

	if p.logger != nil {
		p.logger.Debug("Published push event", map[string]interface{}{
			"subject":  p.subject,
			"type":     string(event.Type),
			"event_id": event.ID,
		})
	}

	return nil
}

// Close flushes pending events and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}

	defer p.conn.Close()

	err := p.conn.FlushTimeout(constants.EventFlushTimeout)
	if err != nil {
		return fmt.Errorf("flushing events: %w", err)
	}

	return nil
}
