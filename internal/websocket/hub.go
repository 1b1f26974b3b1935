package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// AllTopics subscribes a client to events of every entity
const AllTopics = "*"

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	// Topic is the entity name the client follows, or AllTopics
	Topic() string
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket connections organized by topic
// It is safe for concurrent use
type Hub struct {
	// topics maps topic to a map of client ID to client
	topics map[string]map[string]ClientInterface
	mu     sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its topic
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	topic := client.Topic()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[string]ClientInterface)
	}
	h.topics[topic][client.ID()] = client

	log.Debug().
		Str("topic", topic).
		Str("client_id", client.ID()).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	topic := client.Topic()
	clients, ok := h.topics[topic]
	if !ok {
		return
	}
	if _, exists := clients[client.ID()]; !exists {
		return
	}
	delete(clients, client.ID())
	if len(clients) == 0 {
		delete(h.topics, topic)
	}

	log.Debug().
		Str("topic", topic).
		Str("client_id", client.ID()).
		Msg("WebSocket client unregistered")
}

// Move re-files a registered client under its current topic after it left from.
// A client that is no longer registered under from is left alone.
func (h *Hub) Move(client ClientInterface, from string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.topics[from]
	if !ok {
		return
	}
	if _, exists := clients[client.ID()]; !exists {
		return
	}
	delete(clients, client.ID())
	if len(clients) == 0 {
		delete(h.topics, from)
	}

	to := client.Topic()
	if h.topics[to] == nil {
		h.topics[to] = make(map[string]ClientInterface)
	}
	h.topics[to][client.ID()] = client
}

// Broadcast sends an event to the clients following its entity and to those following every topic
func (h *Hub) Broadcast(event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	recipients := make([]ClientInterface, 0, len(h.topics[string(event.Entity)])+len(h.topics[AllTopics]))
	for _, client := range h.topics[string(event.Entity)] {
		recipients = append(recipients, client)
	}
	if event.Entity != AllTopics {
		for _, client := range h.topics[AllTopics] {
			recipients = append(recipients, client)
		}
	}
	h.mu.RUnlock()

	if len(recipients) == 0 {
		return
	}

	for _, client := range recipients {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Str("event_type", event.Type).
		Int("client_count", len(recipients)).
		Msg("Broadcast event")
}

// ClientCount returns the number of clients following a topic
func (h *Hub) ClientCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// TotalClientCount returns the total number of connected clients across all topics
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.topics {
		total += len(clients)
	}
	return total
}
