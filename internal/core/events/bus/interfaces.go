package bus

import "time"

// EventBus is an in-process pub/sub bus.
//
// Delivery is synchronous: Publish calls handlers on the caller goroutine and
// joins their errors. Handlers subscribed to AllEvents receive every event.
// All methods are safe for concurrent use.
type EventBus interface {
	Publish(event Event) error
	PublishBatch(events ...Event) error
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	Unsubscribe(Subscription) error

	// PublishAsync delivers on a new goroutine; the channel yields the joined
	// error and is then closed.
	PublishAsync(event Event) <-chan error

	// Subscribers returns the number of active subscriptions for eventType.
	Subscribers(eventType string) int
	GetMetrics() EventBusMetrics
}

// AllEvents subscribes a handler to every event type.
const AllEvents = "*"

// Event is a value published on the bus. Consumers treat it as read-only.
type Event struct {
	Type      string
	Source    string
	Timestamp time.Time
	Data      any
}

type EventHandler func(event Event) error

// Subscription represents a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
}
