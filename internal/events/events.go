// Package events publishes operation outcomes to NATS so other tooling
// (dashboards, notifiers) can react to plugin changes. Publishing is
// optional; the store runs without a publisher.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const publishTimeout = 5 * time.Second

// Event is the wire form of an operation outcome.
type Event struct {
	ID        string    `json:"id"`
	Operation string    `json:"operation"`
	Plugin    string    `json:"plugin,omitempty"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Version   string    `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher sends events to a NATS subject.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to NATS. An empty URL means event publishing is
// disabled and constructing a publisher is an error.
func NewPublisher(url, subject string) (*Publisher, error) {
	if url == "" {
		return nil, fmt.Errorf("event publishing is disabled (no nats_url configured)")
	}
	if subject == "" {
		return nil, fmt.Errorf("event subject is required")
	}

	conn, err := nats.Connect(url, nats.Name("hangar"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("NATS publisher initialized",
		"url", url,
		"subject", subject)

	return &Publisher{conn: conn, subject: subject}, nil
}

// Publish sends one event. The timestamp is stamped here.
func (p *Publisher) Publish(event *Event) error {
	event.Timestamp = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if err := p.conn.FlushTimeout(publishTimeout); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}

	slog.Debug("Published operation event",
		"operation", event.Operation,
		"plugin", event.Plugin,
		"success", event.Success)

	return nil
}

// Close closes the NATS connection.
func (p *Publisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
