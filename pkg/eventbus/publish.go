package eventbus

import (
	"context"
	"log/slog"

	"github.com/amirasaad/lendrix/pkg/domain/events"
)

// Publish emits events after their unit of work committed. The state change
// already happened, so emit failures are logged rather than returned.
func Publish(ctx context.Context, bus Bus, logger *slog.Logger, evts ...events.Event) {
	if bus == nil {
		return
	}
	for _, evt := range evts {
		if err := bus.Emit(ctx, evt); err != nil {
			logger.Error("failed to publish event", "event_type", evt.Type(), "error", err)
			continue
		}
		logger.Debug("event published", "event_type", evt.Type())
	}
}
