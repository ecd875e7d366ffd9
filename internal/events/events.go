// Package events publishes catalog and profile change notifications so other
// open views of the same owner can refresh.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Event types.
const (
	ProductCreated = "product.created"
	ProductDeleted = "product.deleted"
	ProfileUpdated = "profile.updated"
)

// Event is the JSON payload published for a confirmed mutation.
type Event struct {
	Type       string     `json:"type"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	ProductID  *uuid.UUID `json:"product_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// NewProductEvent builds a product event stamped with the current time.
func NewProductEvent(eventType string, ownerID, productID uuid.UUID) Event {
	return Event{
		Type:       eventType,
		OwnerID:    ownerID,
		ProductID:  &productID,
		OccurredAt: time.Now().UTC(),
	}
}

// NewProfileEvent builds a profile-updated event.
func NewProfileEvent(userID uuid.UUID) Event {
	return Event{
		Type:       ProfileUpdated,
		OwnerID:    userID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events. Callers treat publish failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Subject returns the subject an event is published on:
// <prefix>.<type>.<owner_id>.
func Subject(prefix string, e Event) string {
	return fmt.Sprintf("%s.%s.%s", prefix, e.Type, e.OwnerID)
}

// NATSPublisher publishes events to a NATS server.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSPublisher connects to url. The connection reconnects indefinitely.
func NewNATSPublisher(url, prefix string, logger *slog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("shelf"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, prefix: prefix}, nil
}

// Publish encodes e as JSON and publishes it.
func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := p.conn.Publish(Subject(p.prefix, e), data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", e.Type, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// NoopPublisher discards events.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, e Event) error { return nil }
func (NoopPublisher) Close() error                               { return nil }
