package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// writeWait is time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// pongWait is time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// pingPeriod must stay below pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound command frames
	maxMessageSize = 512

	defaultSendBuffer = 256
)

// ErrUnknownTopic is returned when a client asks to follow an entity the server does not expose
var ErrUnknownTopic = errors.New("unknown entity")

// ActionSubscribe switches the entity a client follows
const ActionSubscribe = "subscribe"

// Command is an inbound control frame, e.g. {"action":"subscribe","entity":"Bank"}.
// An empty entity follows every topic.
type Command struct {
	Action string `json:"action"`
	Entity string `json:"entity"`
}

// reply acknowledges a Command
type reply struct {
	Type    string `json:"type"` // "subscribed" or "error"
	Entity  string `json:"entity,omitempty"`
	Message string `json:"message,omitempty"`
}

// ClientConfig describes a new connection
type ClientConfig struct {
	// Topic is the initial entity; empty follows every entity
	Topic string
	// Subject is the authenticated token subject, if any
	Subject string
	// Accepts reports whether a topic may be followed. Nil accepts any topic.
	Accepts    func(topic string) bool
	SendBuffer int
}

// Client is one change-feed connection
type Client struct {
	id        string
	subject   string
	conn      *websocket.Conn
	hub       *Hub
	accepts   func(topic string) bool
	send      chan []byte
	logger    zerolog.Logger
	topic     string
	closed    bool
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewClient creates a client for conn. It is not registered with hub until Register is called.
func NewClient(conn *websocket.Conn, hub *Hub, cfg ClientConfig) *Client {
	if cfg.Topic == "" {
		cfg.Topic = AllTopics
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}
	id := uuid.NewString()
	return &Client{
		id:      id,
		subject: cfg.Subject,
		conn:    conn,
		hub:     hub,
		accepts: cfg.Accepts,
		send:    make(chan []byte, cfg.SendBuffer),
		topic:   cfg.Topic,
		logger: log.With().
			Str("component", "websocket_client").
			Str("client_id", id).
			Str("subject", cfg.Subject).
			Logger(),
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() string {
	return c.id
}

// Topic returns the entity name the client follows
func (c *Client) Topic() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.topic
}

// Send queues data for the write pump. A full buffer means the client is too slow and is treated as gone.
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrClientClosed
	}
}

// Close closes the client connection. Safe to call more than once.
func (c *Client) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		if c.conn != nil {
			closeErr = c.conn.Close()
		}
	})
	return closeErr
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Subscribe moves the client to topic
func (c *Client) Subscribe(topic string) error {
	if topic == "" {
		topic = AllTopics
	}
	if c.accepts != nil && !c.accepts(topic) {
		return ErrUnknownTopic
	}

	c.mu.Lock()
	from := c.topic
	c.topic = topic
	c.mu.Unlock()

	if from != topic && c.hub != nil {
		c.hub.Move(c, from)
	}
	return nil
}

// handleMessage applies one inbound command frame and queues the reply
func (c *Client) handleMessage(data []byte) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		c.reply(reply{Type: "error", Message: "malformed command"})
		return
	}

	switch cmd.Action {
	case ActionSubscribe:
		if err := c.Subscribe(cmd.Entity); err != nil {
			c.reply(reply{Type: "error", Entity: cmd.Entity, Message: err.Error()})
			return
		}
		c.logger.Debug().Str("topic", c.Topic()).Msg("WebSocket client switched topic")
		c.reply(reply{Type: "subscribed", Entity: c.Topic()})
	default:
		c.reply(reply{Type: "error", Message: "unknown action"})
	}
}

func (c *Client) reply(r reply) {
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := c.Send(data); err != nil {
		c.logger.Debug().Err(err).Msg("Dropped command reply")
	}
}

// ReadPump reads command frames until the connection drops, then unregisters the client.
// Run it in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Str("topic", c.Topic()).Msg("WebSocket unexpected close")
			}
			return
		}
		if messageType == websocket.TextMessage {
			c.handleMessage(data)
		}
	}
}

// WritePump drains queued events to the connection and keeps it alive with pings.
// Run it in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Closed by the hub or ReadPump
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn().Err(err).Str("topic", c.Topic()).Msg("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
