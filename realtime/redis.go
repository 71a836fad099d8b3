package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kendall-kelly/estate-inquiries-api/logger"
	"github.com/redis/go-redis/v9"
)

// RedisChannel carries events between service instances
const RedisChannel = "inquiry-events"

type envelope struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// RedisPublisher publishes events to every instance through Redis pub/sub.
// Each instance's RedisRelay feeds them into its local hub.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates a publisher on client
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish implements Publisher
func (p *RedisPublisher) Publish(ctx context.Context, topic string, data []byte) error {
	msg, err := encodeEnvelope(topic, data)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, RedisChannel, msg).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// RedisRelay delivers events received from Redis to the local hub
type RedisRelay struct {
	client *redis.Client
	local  Publisher
}

// NewRedisRelay creates a relay from client into local
func NewRedisRelay(client *redis.Client, local Publisher) *RedisRelay {
	return &RedisRelay{client: client, local: local}
}

// Run subscribes to RedisChannel until ctx is done
func (r *RedisRelay) Run(ctx context.Context) {
	pubsub := r.client.Subscribe(ctx, RedisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.handle(ctx, []byte(msg.Payload))
		case <-ctx.Done():
			return
		}
	}
}

func (r *RedisRelay) handle(ctx context.Context, raw []byte) {
	env, err := decodeEnvelope(raw)
	if err != nil {
		logger.Get().Warn().Err(err).Msg("discarding malformed relay message")
		return
	}
	if err := r.local.Publish(ctx, env.Topic, env.Payload); err != nil {
		logger.Get().Error().Err(err).Str("topic", env.Topic).Msg("failed to relay notification")
	}
}

func encodeEnvelope(topic string, data []byte) ([]byte, error) {
	return json.Marshal(envelope{Topic: topic, Payload: data})
}

func decodeEnvelope(raw []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, err
	}
	if env.Topic == "" {
		return envelope{}, fmt.Errorf("relay message has no topic")
	}
	return env, nil
}
