package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to the entity
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
	EventTypeSynced  EventType = "synced"
)

// EntityType is the resource name the event is about, e.g. "Bank"
type EntityType string

// EntityTypeStats is the pseudo-entity of the row-count snapshots
const EntityTypeStats EntityType = "stats"

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string     `json:"type"`      // Combined type e.g. "Bank.created"
	Entity    EntityType `json:"entity"`    // Entity name e.g. "Bank"
	Payload   any        `json:"payload"`   // DTO, id, or snapshot
	Timestamp time.Time  `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entity EntityType, payload any) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entity, eventType),
		Entity:    entity,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Created creates an {entity}.created event carrying the stored DTO
func Created(entity string, payload any) Event {
	return NewEvent(EventTypeCreated, EntityType(entity), payload)
}

// Updated creates an {entity}.updated event carrying the stored DTO
func Updated(entity string, payload any) Event {
	return NewEvent(EventTypeUpdated, EntityType(entity), payload)
}

// Deleted creates an {entity}.deleted event carrying the removed id
func Deleted(entity string, id int32) Event {
	return NewEvent(EventTypeDeleted, EntityType(entity), map[string]int32{"id": id})
}

// StatsSynced creates a stats.synced event
func StatsSynced(payload any) Event {
	return NewEvent(EventTypeSynced, EntityTypeStats, payload)
}
