package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHub_Publish(t *testing.T) {
	hub := NewHub()

	client := newMockClient("client-1", "Bank")
	hub.Register(client)

	var publisher EventPublisher = hub
	publisher.Publish(Created("Bank", map[string]interface{}{"id": float64(42)}))

	// Allow async broadcast to complete
	time.Sleep(10 * time.Millisecond)

	assert.Len(t, client.GetMessages(), 1)
}

func TestNoOpPublisher_Publish(t *testing.T) {
	publisher := &NoOpPublisher{}

	assert.NotPanics(t, func() {
		publisher.Publish(Created("Bank", map[string]interface{}{"id": float64(1)}))
	})
}

func TestNoOpPublisher_Implements_EventPublisher(t *testing.T) {
	var _ EventPublisher = (*NoOpPublisher)(nil)
}

type recordingPublisher struct {
	events []Event
}

func (r *recordingPublisher) Publish(event Event) {
	r.events = append(r.events, event)
}

func TestMultiPublisher_Publish(t *testing.T) {
	first := &recordingPublisher{}
	second := &recordingPublisher{}

	var publisher EventPublisher = MultiPublisher{first, &NoOpPublisher{}, second}
	publisher.Publish(Deleted("Bank", 7))

	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)
	assert.Equal(t, "Bank.deleted", second.events[0].Type)
}
