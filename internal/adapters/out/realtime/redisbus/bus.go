// Package redisbus carries real-time envelopes over Redis Pub/Sub.
package redisbus

import (
	"context"
	"encoding/json"
	"fmt"

	"lastmile/internal/adapters/out/realtime"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Pub/Sub channel shared by every instance.
const DefaultChannel = "lastmile:realtime"

type Bus struct {
	client  *redis.Client
	channel string
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

func New(client *redis.Client, channel string) *Bus {
	return &Bus{client: client, channel: channel}
}

func (b *Bus) Publish(ctx context.Context, env realtime.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, data).Err()
}

// Subscribe delivers until ctx ends. It fails only when the subscription
// cannot be confirmed. Undecodable messages are skipped.
func (b *Bus) Subscribe(ctx context.Context, deliver func(realtime.Envelope)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribing to %s: %w", b.channel, err)
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var env realtime.Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			deliver(env)
		}
	}
}
