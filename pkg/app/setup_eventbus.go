package app

import (
	"context"
	"log/slog"

	"github.com/amirasaad/lendrix/pkg/domain/events"
	"github.com/amirasaad/lendrix/pkg/eventbus"
)

// setupEventBus subscribes the audit log to every event type the services
// publish.
func (a *App) setupEventBus() {
	bus := a.Deps.EventBus
	if bus == nil {
		return
	}
	logger := a.Deps.Logger.With("handler", "audit")
	for eventType := range events.EventTypes {
		bus.Register(eventType, auditHandler(logger))
	}
	bus.Register(events.TransferCompletedType, transferNotifier(a.Deps.Logger))
}

func auditHandler(logger *slog.Logger) eventbus.HandlerFunc {
	return func(_ context.Context, e events.Event) error {
		logger.Info("event", "type", e.Type(), "payload", e)
		return nil
	}
}

// transferNotifier tells the receiving user about incoming money. Delivery is
// a log line until a notification channel exists.
func transferNotifier(logger *slog.Logger) eventbus.HandlerFunc {
	return func(_ context.Context, e events.Event) error {
		var evt events.TransferCompleted
		switch v := e.(type) {
		case events.TransferCompleted:
			evt = v
		case *events.TransferCompleted:
			evt = *v
		default:
			return nil
		}
		logger.Info("incoming transfer",
			"receiver_user_id", evt.ReceiverUserID,
			"receiver_account_id", evt.ReceiverAccountID,
			"amount", evt.Amount.String(),
			"money_request_id", evt.MoneyRequestID,
		)
		return nil
	}
}
