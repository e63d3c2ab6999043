package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	infraeventbus "github.com/amirasaad/lendrix/infra/eventbus"
	"github.com/amirasaad/lendrix/pkg/domain/events"
	"github.com/google/uuid"
)

// RunSmokeTest publishes a UserRegistered event through the Kafka event bus
// and waits for its own consumer to receive it.
func RunSmokeTest(ctx context.Context, logger *slog.Logger) error {
	brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))
	if brokers == "" {
		brokers = "localhost:9093,localhost:9092"
	}
	groupID := strings.TrimSpace(os.Getenv("KAFKA_GROUP_ID"))
	if groupID == "" {
		groupID = "lendrix-smoketest"
	}

	bus, err := infraeventbus.NewWithKafka(brokers, logger, infraeventbus.KafkaEventBusConfig{
		GroupID:     groupID,
		TopicPrefix: os.Getenv("KAFKA_TOPIC_PREFIX"),
	})
	if err != nil {
		logger.Error("connect failed", "brokers", brokers, "error", err)
		return err
	}
	defer func() { _ = bus.Close() }()

	sent := events.UserRegistered{Meta: events.NewMeta(uuid.New()), Username: "smoketest"}
	received := make(chan uuid.UUID, 1)
	bus.Register(events.UserRegisteredType, func(_ context.Context, e events.Event) error {
		if u, ok := e.(*events.UserRegistered); ok && u.ID == sent.ID {
			received <- u.ID
		}
		return nil
	})

	if err := bus.Emit(ctx, sent); err != nil {
		logger.Error("emit failed", "error", err)
		return err
	}
	logger.Info("produced", "event", sent.Type(), "id", sent.ID)

	select {
	case id := <-received:
		logger.Info("consumed", "event", sent.Type(), "id", id)
	case <-ctx.Done():
		logger.Error("timed out waiting for event", "id", sent.ID)
		return errors.New("kafka smoke test: event not consumed")
	}

	logger.Info("kafka smoke test passed")
	return nil
}

// main runs the smoke test and exits non-zero on failure.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := RunSmokeTest(ctx, logger); err != nil {
		cancel()
		os.Exit(1)
	}
}
