package redis

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// AuthChannel carries auth-state change signals between client processes.
const AuthChannel = "kisaan:auth-state-changed"

// Notifier is the local broadcast remote changes are replayed on.
type Notifier interface {
	Notify()
}

// Relay announces local session writes to other processes sharing the same
// Redis, and replays theirs on the local bus. Delivery is best-effort.
// Messages carry the sender's origin id so a process ignores its own.
// Replays only reach the bus, so they are never published again.
type Relay struct {
	client *redis.Client
	bus    Notifier
	origin string
	log    zerolog.Logger
}

// NewRelay bridges bus over client.
func NewRelay(client *redis.Client, bus Notifier, log zerolog.Logger) *Relay {
	return &Relay{
		client: client,
		bus:    bus,
		origin: uuid.NewString(),
		log:    log,
	}
}

// Origin identifies this process on the channel.
func (r *Relay) Origin() string {
	return r.origin
}

// Announce publishes a session change made by this process.
func (r *Relay) Announce(ctx context.Context) {
	if err := r.client.Publish(ctx, AuthChannel, r.origin).Err(); err != nil {
		r.log.Warn().Err(err).Msg("publish auth change")
	}
}

// Listen replays notifications from other processes on the local bus until
// ctx is cancelled.
func (r *Relay) Listen(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, AuthChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", AuthChannel, err)
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
			r.deliver(msg.Payload)
		}
	}
}

func (r *Relay) deliver(origin string) {
	if origin == r.origin {
		return
	}
	r.log.Debug().Str("origin", origin).Msg("auth change from another process")
	r.bus.Notify()
}
