package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/pass-management/internal"
)

const (
	EventTypePassCreated  = "pass.created"
	EventTypePassApproved = "pass.approved"
	EventTypePassRejected = "pass.rejected"
)

type PassCreatedEvent struct {
	BaseEvent
	PassID   int64  `json:"pass_id"`
	OwnerID  int64  `json:"owner_id"`
	PassType string `json:"pass_type"`
}

func NewPassCreatedEvent(passID, ownerID int64, passType string) *PassCreatedEvent {
	return &PassCreatedEvent{
		BaseEvent: newBaseEvent(EventTypePassCreated),
		PassID:    passID,
		OwnerID:   ownerID,
		PassType:  passType,
	}
}

// PassDecidedEvent is published once per pass, when it leaves PENDING.
type PassDecidedEvent struct {
	BaseEvent
	PassID    int64  `json:"pass_id"`
	OwnerID   int64  `json:"owner_id"`
	DecidedBy int64  `json:"decided_by"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
}

func NewPassDecidedEvent(passID, ownerID, decidedBy int64, status, reason string) *PassDecidedEvent {
	eventType := EventTypePassApproved
	if status == "REJECTED" {
		eventType = EventTypePassRejected
	}
	return &PassDecidedEvent{
		BaseEvent: newBaseEvent(eventType),
		PassID:    passID,
		OwnerID:   ownerID,
		DecidedBy: decidedBy,
		Status:    status,
		Reason:    reason,
	}
}

// OnPassCreated subscribes fn to pass.created.
func OnPassCreated(bus *EventBus, fn func(context.Context, *PassCreatedEvent) error) {
	subscribeTyped(bus, fn, EventTypePassCreated)
}

// OnPassDecided subscribes fn to both decision outcomes.
func OnPassDecided(bus *EventBus, fn func(context.Context, *PassDecidedEvent) error) {
	subscribeTyped(bus, fn, EventTypePassApproved, EventTypePassRejected)
}

func subscribeTyped[E Event](bus *EventBus, fn func(context.Context, E) error, eventTypes ...string) {
	handler := func(ctx context.Context, event Event) error {
		typed, ok := event.(E)
		if !ok {
			return fmt.Errorf("unexpected %T published as %s", event, event.EventType())
		}
		return fn(ctx, typed)
	}
	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, handler)
	}
}

// RegisterAuditLog writes every pass lifecycle event to logger under the
// "audit" group.
func RegisterAuditLog(bus *EventBus, logger *slog.Logger) {
	audit := logger.WithGroup("audit")

	OnPassCreated(bus, func(ctx context.Context, e *PassCreatedEvent) error {
		audit.InfoContext(ctx, "pass requested",
			"event_id", e.EventID(),
			"event_type", e.EventType(),
			"actor_id", internal.UserIDFromContext(ctx),
			"occurred_at", e.OccurredAt(),
			"pass_id", e.PassID,
			"owner_id", e.OwnerID,
			"pass_type", e.PassType)
		return nil
	})

	OnPassDecided(bus, func(ctx context.Context, e *PassDecidedEvent) error {
		attrs := []any{
			"event_id", e.EventID(),
			"event_type", e.EventType(),
			"actor_id", internal.UserIDFromContext(ctx),
			"occurred_at", e.OccurredAt(),
			"pass_id", e.PassID,
			"owner_id", e.OwnerID,
			"decided_by", e.DecidedBy,
			"status", e.Status,
		}
		if e.Reason != "" {
			attrs = append(attrs, "reason", e.Reason)
		}
		audit.InfoContext(ctx, "pass decided", attrs...)
		return nil
	})
}
