package eventbus

import (
	"context"

	"github.com/amirasaad/lendrix/pkg/domain/events"
)

// HandlerFunc reacts to a published event.
type HandlerFunc func(ctx context.Context, e events.Event) error

// Bus publishes committed domain events. Emit is only called after the unit
// of work that produced the event has committed.
type Bus interface {
	Register(eventType events.EventType, handler HandlerFunc)
	Emit(ctx context.Context, event events.Event) error
}
