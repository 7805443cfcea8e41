package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const RedisChannel = "factory-admin:changes"

// RedisBridge fans changes out between server instances: changes published
// by the local hub go to a Redis channel, and changes from other instances
// are re-published into the local hub.
type RedisBridge struct {
	client  *redis.Client
	hub     *Hub
	channel string
	outbox  chan []byte
	logger  *zap.Logger
}

func NewRedisBridge(client *redis.Client, hub *Hub, logger *zap.Logger) *RedisBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBridge{
		client:  client,
		hub:     hub,
		channel: RedisChannel,
		outbox:  make(chan []byte, 256),
		logger:  logger,
	}
}

// Run blocks until ctx is cancelled or the subscription fails to start.
func (b *RedisBridge) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}
	b.logger.Info("change feed bridged through redis", zap.String("channel", b.channel))

	handle := b.hub.Subscribe(AllTables, b.forward)
	defer b.hub.Unsubscribe(handle)

	go b.drain(ctx)

	msgs := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			b.relay([]byte(msg.Payload))
		}
	}
}

// forward queues a locally produced change for publication.
func (b *RedisBridge) forward(ch Change) {
	if ch.Origin != b.hub.Origin() {
		return
	}
	payload, err := json.Marshal(ch)
	if err != nil {
		b.logger.Error("encode change", zap.Error(err))
		return
	}
	select {
	case b.outbox <- payload:
	default:
		b.logger.Warn("redis outbox full, skipping change", zap.String("table", ch.Table), zap.Uint("id", ch.ID))
	}
}

func (b *RedisBridge) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-b.outbox:
			if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
				b.logger.Error("redis publish failed", zap.Error(err))
			}
		}
	}
}

// relay publishes a change received from Redis unless this instance produced it.
func (b *RedisBridge) relay(payload []byte) {
	var ch Change
	if err := json.Unmarshal(payload, &ch); err != nil {
		b.logger.Warn("malformed change from redis", zap.Error(err))
		return
	}
	if ch.Origin == "" || ch.Origin == b.hub.Origin() {
		return
	}
	b.hub.Publish(ch)
}
