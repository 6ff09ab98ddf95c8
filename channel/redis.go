package channel

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis carries the control channel over redis pub/sub. Each published
// payload is one frame.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a transport for the redis server at addr.
func NewRedis(addr string) *Redis {
	return &Redis{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// Dial subscribes to the channel named endpoint. The channel counts as open
// once redis confirms the subscription.
func (r *Redis) Dial(ctx context.Context, endpoint string) (Conn, error) {
	pubsub := r.client.Subscribe(ctx, endpoint)

	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", endpoint, err)
	}

	return &redisConn{pubsub: pubsub}, nil
}

// Publish sends a frame to every client subscribed to endpoint.
func (r *Redis) Publish(ctx context.Context, endpoint string, frame []byte) error {
	return r.client.Publish(ctx, endpoint, frame).Err()
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

type redisConn struct {
	pubsub *redis.PubSub
}

func (c *redisConn) Read(ctx context.Context) ([]byte, error) {
	msg, err := c.pubsub.ReceiveMessage(ctx)
	if err != nil {
		return nil, err
	}
	return []byte(msg.Payload), nil
}

func (c *redisConn) Close() error {
	return c.pubsub.Close()
}

// Ping checks that the redis server answers.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
