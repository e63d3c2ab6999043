package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/lendrix/pkg/domain/events"
	"github.com/amirasaad/lendrix/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

// RedisEventBus implements the event bus on Redis Streams, one stream per
// event type, consumed through a shared consumer group.
type RedisEventBus struct {
	client *redis.Client
	prefix string
	group  string
	logger *slog.Logger

	handlers    map[events.EventType][]eventbus.HandlerFunc
	handlersMtx sync.RWMutex
	started     map[events.EventType]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWithRedis creates a new Redis-backed event bus.
// url: Redis connection URL (e.g. "redis://localhost:6379/0").
// prefix: stream name prefix; streams are named prefix:eventtype.
func NewWithRedis(url, prefix, group string, logger *slog.Logger) (*RedisEventBus, error) {
	if url == "" || prefix == "" || group == "" {
		return nil, errors.New("redis event bus: url, prefix and group are required")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis event bus: invalid URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:   client,
		prefix:   prefix,
		group:    group,
		logger:   logger.With("bus", "redis"),
		handlers: make(map[events.EventType][]eventbus.HandlerFunc),
		started:  make(map[events.EventType]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Emit appends the event to its type's stream.
func (b *RedisEventBus) Emit(ctx context.Context, event events.Event) error {
	envBytes, err := encodeEnvelope(event)
	if err != nil {
		return fmt.Errorf("redis event bus: %w", err)
	}
	stream := streamNameFor(b.prefix, events.EventType(event.Type()))
	if err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"event": string(envBytes)},
	}).Err(); err != nil {
		return fmt.Errorf("redis event bus: emit failed: %w", err)
	}
	return nil
}

// Register adds a handler and starts the type's consumer on first use.
func (b *RedisEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	b.handlersMtx.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	_, running := b.started[eventType]
	b.started[eventType] = struct{}{}
	b.handlersMtx.Unlock()

	if running {
		return
	}

	stream := streamNameFor(b.prefix, eventType)
	err := b.client.XGroupCreateMkStream(b.ctx, stream, b.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		b.logger.Error("failed to create consumer group", "error", err, "stream", stream)
	}

	consumer := fmt.Sprintf("%s-%d", strings.ToLower(eventType.String()), time.Now().UnixNano())
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consume(b.ctx, eventType, stream, consumer)
	}()
}

func (b *RedisEventBus) consume(ctx context.Context, eventType events.EventType, stream, consumer string) {
	for {
		res, err := b.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    b.group,
			Consumer: consumer,
			Streams:  []string{stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !errors.Is(err, redis.Nil) {
				b.logger.Error("error reading from stream", "error", err, "stream", stream)
				time.Sleep(time.Second)
			}
			continue
		}

		for _, s := range res {
			for _, msg := range s.Messages {
				b.handleMessage(ctx, eventType, stream, msg)
			}
		}
	}
}

func (b *RedisEventBus) handleMessage(ctx context.Context, eventType events.EventType, stream string, msg redis.XMessage) {
	defer func() {
		if err := b.client.XAck(ctx, stream, b.group, msg.ID).Err(); err != nil {
			b.logger.Error("failed to acknowledge message", "error", err, "msg_id", msg.ID)
		}
	}()

	raw, ok := msg.Values["event"].(string)
	if !ok {
		return
	}
	evt, err := decodeEnvelope([]byte(raw))
	if err != nil {
		b.logger.Error("dropping undecodable message", "error", err, "msg_id", msg.ID)
		return
	}

	b.handlersMtx.RLock()
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[eventType]...)
	b.handlersMtx.RUnlock()

	if !runHandlers(ctx, b.logger, evt, handlers) {
		b.pushToDLQ(ctx, stream, msg.Values)
	}
}

// pushToDLQ parks a failed message for inspection or replay.
func (b *RedisEventBus) pushToDLQ(ctx context.Context, stream string, values map[string]any) {
	dlqStream := stream + ":dlq"
	if err := b.client.XAdd(ctx, &redis.XAddArgs{Stream: dlqStream, Values: values}).Err(); err != nil {
		b.logger.Error("failed to push to DLQ", "error", err, "stream", dlqStream)
		return
	}
	b.logger.Warn("event pushed to DLQ", "stream", dlqStream)
}

// Close stops the consumers and the client.
func (b *RedisEventBus) Close() error {
	b.cancel()
	b.wg.Wait()
	return b.client.Close()
}

func streamNameFor(prefix string, eventType events.EventType) string {
	return fmt.Sprintf("%s:%s", prefix, strings.ToLower(eventType.String()))
}

var _ eventbus.Bus = (*RedisEventBus)(nil)
