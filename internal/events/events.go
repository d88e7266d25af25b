package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/nats-io/nats.go"
)

// Subjects published after successful mutations.
const (
	UserSignedUp    = "users.signed_up"
	UserRoleUpdated = "users.role_updated"
	BlogCreated     = "blogs.created"
	BlogUpdated     = "blogs.updated"
	BlogDeleted     = "blogs.deleted"
	ImageUploaded   = "images.uploaded"
	ImageDeleted    = "images.deleted"
)

// Event is the JSON payload of a domain event. Type doubles as the NATS subject.
type Event struct {
	Type    string    `json:"type"`
	ID      string    `json:"id"`
	ActorID string    `json:"actorId,omitempty"`
	At      time.Time `json:"at"`
	Data    any       `json:"data,omitempty"`
}

// New builds an event stamped with the current time.
func New(eventType, id, actorID string, data any) Event {
	return Event{Type: eventType, ID: id, ActorID: actorID, At: time.Now().UTC(), Data: data}
}

// Publisher emits domain events. Publishing is fire and forget.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Noop drops every event. It is used when no bus is configured.
type Noop struct{}

// Publish does nothing.
func (Noop) Publish(context.Context, Event) {}

// NATSPublisher publishes events on a NATS connection.
type NATSPublisher struct {
	conn   *nats.Conn
	logger echo.Logger
}

// NewNATS connects to url. Reconnects are handled by the client.
func NewNATS(url string, logger echo.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("blogdesk"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warnj(log.JSON{"action": "nats_disconnected", "error": err.Error()})
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Infoj(log.JSON{"action": "nats_reconnected", "url": c.ConnectedUrl()})
		}),
	)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{conn: conn, logger: logger}, nil
}

// Publish sends event on the subject named by its type. Failures are logged.
func (p *NATSPublisher) Publish(_ context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Errorj(log.JSON{"action": "event_encode_failed", "type": event.Type, "error": err.Error()})
		return
	}
	if err := p.conn.Publish(event.Type, payload); err != nil {
		p.logger.Warnj(log.JSON{"action": "event_publish_failed", "type": event.Type, "id": event.ID, "error": err.Error()})
		return
	}
	p.logger.Debugj(log.JSON{"action": "event_published", "type": event.Type, "id": event.ID})
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
