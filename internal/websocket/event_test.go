package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"id":   1,
		"name": "Acme",
	}

	before := time.Now()
	evt := NewEvent(EventTypeCreated, "Bank", payload)
	after := time.Now()

	assert.Equal(t, "Bank.created", evt.Type)
	assert.Equal(t, EntityType("Bank"), evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
}

func TestEventHelpers(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected string
	}{
		{"created", Created("TransactionCategory", nil), "TransactionCategory.created"},
		{"updated", Updated("Budget", nil), "Budget.updated"},
		{"deleted", Deleted("BudgetType", 3), "BudgetType.deleted"},
		{"stats", StatsSynced(nil), "stats.synced"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.Type)
		})
	}
}

func TestEvent_ToJSON(t *testing.T) {
	evt := Deleted("Bank", 7)

	data, err := evt.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "Bank.deleted", decoded["type"])
	assert.Equal(t, "Bank", decoded["entity"])
	assert.Equal(t, map[string]interface{}{"id": float64(7)}, decoded["payload"])
	assert.Contains(t, decoded, "timestamp")
}
