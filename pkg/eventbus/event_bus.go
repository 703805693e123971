// Package eventbus publishes caseflow events to interested subscribers.
package eventbus

import (
	"context"
	"fmt"

	"github.com/dukex/caseflow/pkg/events"
)

// Event is any caseflow event: a workflow document change, a case
// transition or an app deletion.
type Event interface {
	GetType() events.EventType
}

// EventPublisher announces a stored change. key orders events for one app or
// case on partitioned channels.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// EventSubscriber routes incoming events to one handler per event type.
type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventHandler receives a decoded event, a pointer to one of the events
// package types.
type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}

// HandlerFor adapts a handler of one concrete event type. Events of any other
// type are rejected with an error.
func HandlerFor[T any](fn func(ctx context.Context, event *T) error) EventHandler {
	return func(ctx context.Context, event any) error {
		e, ok := event.(*T)
		if !ok {
			return fmt.Errorf("unexpected event %T", event)
		}

		return fn(ctx, e)
	}
}
