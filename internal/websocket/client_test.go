package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acceptOnly(topics ...string) func(string) bool {
	set := map[string]bool{AllTopics: true}
	for _, t := range topics {
		set[t] = true
	}
	return func(t string) bool { return set[t] }
}

// nextReply pops the next queued frame without a connection
func nextReply(t *testing.T, c *Client) reply {
	t.Helper()
	select {
	case data := <-c.send:
		var r reply
		require.NoError(t, json.Unmarshal(data, &r))
		return r
	case <-time.After(time.Second):
		t.Fatal("no reply queued")
		return reply{}
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(nil, NewHub(), ClientConfig{})

	assert.NotEmpty(t, c.ID())
	assert.Equal(t, AllTopics, c.Topic())
	assert.Equal(t, defaultSendBuffer, cap(c.send))
}

func TestClient_SubscribeMovesBetweenTopics(t *testing.T) {
	hub := NewHub()
	c := NewClient(nil, hub, ClientConfig{Topic: "Bank", Accepts: acceptOnly("Bank", "Budget")})
	hub.Register(c)

	c.handleMessage([]byte(`{"action":"subscribe","entity":"Budget"}`))

	assert.Equal(t, reply{Type: "subscribed", Entity: "Budget"}, nextReply(t, c))
	assert.Equal(t, "Budget", c.Topic())
	assert.Equal(t, 0, hub.ClientCount("Bank"))
	assert.Equal(t, 1, hub.ClientCount("Budget"))

	hub.Broadcast(Deleted("Budget", 4))
	select {
	case data := <-c.send:
		assert.Contains(t, string(data), "Budget.deleted")
	case <-time.After(time.Second):
		t.Fatal("event not delivered after topic switch")
	}
}

func TestClient_SubscribeEmptyFollowsEverything(t *testing.T) {
	hub := NewHub()
	c := NewClient(nil, hub, ClientConfig{Topic: "Bank"})
	hub.Register(c)

	c.handleMessage([]byte(`{"action":"subscribe"}`))

	assert.Equal(t, reply{Type: "subscribed", Entity: AllTopics}, nextReply(t, c))
	assert.Equal(t, 1, hub.ClientCount(AllTopics))
}

func TestClient_RejectedCommands(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		message string
	}{
		{"malformed", `{"action":`, "malformed command"},
		{"unknown action", `{"action":"publish","entity":"Bank"}`, "unknown action"},
		{"unknown entity", `{"action":"subscribe","entity":"Loan"}`, ErrUnknownTopic.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub()
			c := NewClient(nil, hub, ClientConfig{Topic: "Bank", Accepts: acceptOnly("Bank")})
			hub.Register(c)

			c.handleMessage([]byte(tt.frame))

			r := nextReply(t, c)
			assert.Equal(t, "error", r.Type)
			assert.Equal(t, tt.message, r.Message)
			assert.Equal(t, "Bank", c.Topic())
			assert.Equal(t, 1, hub.ClientCount("Bank"))
		})
	}
}

func TestClient_SendAfterClose(t *testing.T) {
	c := NewClient(nil, NewHub(), ClientConfig{})

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.True(t, c.IsClosed())
	assert.ErrorIs(t, c.Send([]byte("x")), ErrClientClosed)
}

func TestClient_SendBufferFull(t *testing.T) {
	c := NewClient(nil, NewHub(), ClientConfig{SendBuffer: 1})

	require.NoError(t, c.Send([]byte("a")))
	assert.ErrorIs(t, c.Send([]byte("b")), ErrClientClosed)
}

func TestHub_MoveUnregisteredClient(t *testing.T) {
	hub := NewHub()
	c := NewClient(nil, hub, ClientConfig{Topic: "Bank"})

	require.NoError(t, c.Subscribe("Budget"))

	assert.Equal(t, 0, hub.TotalClientCount())
}
