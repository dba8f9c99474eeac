package notification

import (
	"context"
	"log/slog"

	"github.com/tenangdev/leave-management/internal/core/events"
)

// Listener reacts to committed workflow outcomes. Delivery itself (mail,
// chat) is an external collaborator; this side only decides what is worth
// telling it, after the transaction is durable.
type Listener struct {
	logger *slog.Logger
}

func NewListener(logger *slog.Logger) *Listener {
	return &Listener{logger: logger}
}

func (l *Listener) HandleLeaveDecided(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload().(map[string]interface{})
	if !ok {
		l.logger.Error("invalid payload for leave decided handler", "event_type", event.EventType())
		return nil
	}

	l.logger.Info("leave decision notification queued",
		"event_id", event.EventID(),
		"request_id", payload["request_id"],
		"emp_id", payload["emp_id"],
		"status", payload["status"])
	return nil
}

func (l *Listener) HandleDelegationCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload().(map[string]interface{})
	if !ok {
		l.logger.Error("invalid payload for delegation created handler", "event_type", event.EventType())
		return nil
	}

	l.logger.Info("delegation notification queued",
		"event_id", event.EventID(),
		"delegation_id", payload["delegation_id"],
		"receiver_emp_id", payload["receiver_emp_id"],
		"active", payload["active"])
	return nil
}

func (l *Listener) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.LeaveDecidedEventType, l.HandleLeaveDecided)
	eventBus.Subscribe(events.DelegationCreatedEventType, l.HandleDelegationCreated)

	l.logger.Info("notification event handlers registered",
		"handlers", []string{events.LeaveDecidedEventType, events.DelegationCreatedEventType})
}
