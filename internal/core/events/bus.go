package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Event interface {
	EventType() string
	EventID() string
	OccurredAt() time.Time
}

// BaseEvent carries the envelope fields every event shares.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

func newBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

type Handler func(ctx context.Context, event Event) error

// Publisher is the part of the bus the domain services depend on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Delivery selects how Publish runs the subscribed handlers.
type Delivery int

const (
	// Async runs every handler on its own goroutine. Handlers see a context
	// that is not cancelled when the publishing request ends.
	Async Delivery = iota
	// Sync runs handlers in subscription order on the caller's goroutine and
	// stops at the first failure.
	Sync
)

func (d Delivery) String() string {
	if d == Sync {
		return "sync"
	}
	return "async"
}

type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	delivery Delivery
	logger   *slog.Logger
}

func NewEventBus(logger *slog.Logger, delivery Delivery) *EventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventBus{
		handlers: make(map[string][]Handler),
		delivery: delivery,
		logger:   logger,
	}
}

func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	count := len(eb.handlers[eventType])
	eb.mu.Unlock()

	eb.logger.Debug("event handler registered",
		"event_type", eventType,
		"delivery", eb.delivery.String(),
		"total_handlers", count)
}

func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	if eb.delivery == Sync {
		return eb.PublishSync(ctx, event)
	}

	detached := context.WithoutCancel(ctx)
	for _, h := range eb.handlersFor(ctx, event) {
		go func(h Handler) {
			_ = eb.run(detached, h, event)
		}(h)
	}
	return nil
}

// PublishSync delivers event inline regardless of the bus's delivery mode.
func (eb *EventBus) PublishSync(ctx context.Context, event Event) error {
	for _, h := range eb.handlersFor(ctx, event) {
		if err := eb.run(ctx, h, event); err != nil {
			return fmt.Errorf("handler failed for event %s: %w", event.EventType(), err)
		}
	}
	return nil
}

func (eb *EventBus) handlersFor(ctx context.Context, event Event) []Handler {
	eb.mu.RLock()
	handlers := eb.handlers[event.EventType()]
	eb.mu.RUnlock()

	eb.logger.DebugContext(ctx, "publishing event",
		"event_type", event.EventType(),
		"event_id", event.EventID(),
		"handlers_count", len(handlers))
	return handlers
}

func (eb *EventBus) run(ctx context.Context, h Handler, event Event) error {
	err := h(ctx, event)
	if err != nil {
		eb.logger.ErrorContext(ctx, "event handler failed",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"error", err)
	}
	return err
}
