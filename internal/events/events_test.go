package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	t.Run("subscribe and publish", func(t *testing.T) {
		bus := NewEventBus()

		var received []*Event
		bus.Subscribe(EventLockAcquired, func(e *Event) error {
			received = append(received, e)
			return nil
		})

		bus.Publish(&Event{Type: EventLockAcquired, Payload: []byte(`{}`)})
		bus.Publish(&Event{Type: EventLockReleased, Payload: []byte(`{}`)})

		require.Len(t, received, 1)
		assert.Equal(t, EventLockAcquired, received[0].Type)
		assert.False(t, received[0].CreatedAt.IsZero())
	})

	t.Run("multiple handlers", func(t *testing.T) {
		bus := NewEventBus()

		count := 0
		for i := 0; i < 3; i++ {
			bus.Subscribe(EventLocksSwept, func(e *Event) error {
				count++
				return nil
			})
		}

		bus.Publish(&Event{Type: EventLocksSwept})
		assert.Equal(t, 3, count)
	})

	t.Run("handler error does not stop others", func(t *testing.T) {
		bus := NewEventBus()

		called := false
		bus.Subscribe(EventLockConverted, func(e *Event) error {
			return errors.New("handler failed")
		})
		bus.Subscribe(EventLockConverted, func(e *Event) error {
			called = true
			return nil
		})

		bus.Publish(&Event{Type: EventLockConverted})
		assert.True(t, called)
	})
}

func TestPublishJSON(t *testing.T) {
	bus := NewEventBus()

	var got LockEventPayload
	bus.Subscribe(EventLockAcquired, func(e *Event) error {
		return json.Unmarshal(e.Payload, &got)
	})

	payload := LockEventPayload{
		Token:    "tok-1",
		RoomID:   42,
		Checkin:  time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		Checkout: time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, bus.PublishJSON(EventLockAcquired, payload))

	assert.Equal(t, "tok-1", got.Token)
	assert.Equal(t, int64(42), got.RoomID)

	t.Run("nil bus is a no-op", func(t *testing.T) {
		var nilBus *EventBus
		assert.NoError(t, nilBus.PublishJSON(EventLockAcquired, payload))
	})
}
