package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis pub/sub channel used for change notices.
const DefaultChannel = "travel-desk:changes"

// notice is the wire format of a change notice.
type notice struct {
	Origin string `json:"origin"`
	Topic  Topic  `json:"topic"`
}

// RedisRelay broadcasts "topic changed" notices to the other API instances
// through Redis pub/sub. Snapshots themselves never cross the wire; each
// instance reloads the topic from the database when notified.
type RedisRelay struct {
	client  *redis.Client
	channel string
	origin  string
	log     *slog.Logger
}

// NewRedisRelay constructs a relay on channel. An empty channel uses
// DefaultChannel. Each relay gets a random origin ID so it can ignore its
// own notices.
func NewRedisRelay(client *redis.Client, channel string, log *slog.Logger) *RedisRelay {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisRelay{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		log:     log,
	}
}

// Announce tells the other instances that topic changed.
func (r *RedisRelay) Announce(ctx context.Context, topic Topic) error {
	payload, err := json.Marshal(notice{Origin: r.origin, Topic: topic})
	if err != nil {
		return fmt.Errorf("events.RedisRelay.Announce: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("events.RedisRelay.Announce: %w", err)
	}
	return nil
}

// Run subscribes to the channel and calls onChange for every notice sent by
// another instance. It blocks until ctx is cancelled or the subscription
// channel closes.
func (r *RedisRelay) Run(ctx context.Context, onChange func(context.Context, Topic)) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	// Receive once so a bad connection fails fast instead of silently.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("events.RedisRelay.Run: subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var n notice
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				r.log.Warn("relay: discarding malformed notice", "error", err)
				continue
			}
			if n.Origin == r.origin || !n.Topic.Valid() {
				continue
			}
			onChange(ctx, n.Topic)
		}
	}
}
