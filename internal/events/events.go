package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventLockAcquired  = "lock_acquired"
	EventLockReleased  = "lock_released"
	EventLockConverted = "lock_converted"
	EventLocksSwept    = "locks_swept"

	EventPricingActivated = "pricing_event_activated"
	EventPricingCompleted = "pricing_event_completed"
	EventPricingCancelled = "pricing_event_cancelled"
)

// LockEventPayload is the minimal lock snapshot for event consumers.
type LockEventPayload struct {
	Token     string    `json:"token"`
	RoomID    int64     `json:"room_id"`
	ActorID   int64     `json:"actor_id,omitempty"`
	BookingID int64     `json:"booking_id,omitempty"`
	Checkin   time.Time `json:"checkin"`
	Checkout  time.Time `json:"checkout"`
}

// SweepEventPayload reports one expiry-sweep pass.
type SweepEventPayload struct {
	Swept int64     `json:"swept"`
	At    time.Time `json:"at"`
}

// LifecycleEventPayload describes one pricing-event transition.
type LifecycleEventPayload struct {
	EventID int64  `json:"event_id"`
	Name    string `json:"name,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to"`
	Trigger string `json:"trigger"` // "schedule" or "manual"
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
