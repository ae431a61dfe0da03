// Package messaging wraps the NATS connection used by the moderation
// service. The listing workflow sends requests on moderation.check and
// risk.assess and receives the reply inline; verdicts are also broadcast on
// moderation.result.<listing_id> for asynchronous consumers.
package messaging

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subjects used by the moderation service.
const (
	SubjectModerationCheck  = "moderation.check"
	SubjectModerationResult = "moderation.result" // + .<listing_id>
	SubjectRiskAssess       = "risk.assess"

	// QueueModerators load-balances requests across moderator instances.
	QueueModerators = "moderators"
)

// Responder handles a request payload and returns the reply payload.
type Responder func(data []byte) []byte

// NATSClient wraps the NATS connection with helper methods for pub/sub.
type NATSClient struct {
	conn *nats.Conn
	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL           string        // nats://localhost:4222
	Name          string        // client name for identification
	ReconnectWait time.Duration // time between reconnect attempts
	MaxReconnects int           // max reconnect attempts (-1 for infinite)
}

// DefaultNATSConfig returns sensible defaults.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		Name:          "moderator",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1,
	}
}

// NewNATSClient connects to NATS with the given config and returns a ready client.
func NewNATSClient(config NATSConfig) (*NATSClient, error) {
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[nats] disconnected: %v", err)
			} else {
				log.Printf("[nats] disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[nats] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("[nats] connection closed")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	log.Printf("[nats] connected to %s", nc.ConnectedUrl())

	return &NATSClient{
		conn: nc,
		subs: make(map[string]*nats.Subscription),
	}, nil
}

// Publish sends data to the given NATS subject.
func (c *NATSClient) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

// HandleRequests joins queue on subject and answers each message that
// carries a reply subject with fn's result. Messages without a reply
// subject are still handled; their result is dropped.
func (c *NATSClient) HandleRequests(subject, queue string, fn Responder) error {
	sub, err := c.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		reply := fn(msg.Data)
		if msg.Reply == "" || reply == nil {
			return
		}
		if err := msg.Respond(reply); err != nil {
			log.Printf("[nats] respond on %s: %v", subject, err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subs[subject] = sub
	c.mu.Unlock()
	return nil
}

// ServeModerationCheck answers moderation.check requests.
func (c *NATSClient) ServeModerationCheck(fn Responder) error {
	return c.HandleRequests(SubjectModerationCheck, QueueModerators, fn)
}

// ServeRiskAssess answers risk.assess requests.
func (c *NATSClient) ServeRiskAssess(fn Responder) error {
	return c.HandleRequests(SubjectRiskAssess, QueueModerators, fn)
}

// PublishModerationResult broadcasts a verdict for a listing.
func (c *NATSClient) PublishModerationResult(listingID string, data []byte) error {
	return c.Publish(SubjectModerationResult+"."+listingID, data)
}

// Close drains all active subscriptions and closes the NATS connection.
func (c *NATSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for subject, sub := range c.subs {
		if err := sub.Drain(); err != nil {
			log.Printf("[nats] drain %s: %v", subject, err)
		}
	}
	c.subs = make(map[string]*nats.Subscription)

	if err := c.conn.Drain(); err != nil {
		log.Printf("[nats] connection drain: %v", err)
	}

	log.Printf("[nats] client closed")
}
