package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/tileorg/pkg/cache"
	"github.com/matzehuels/tileorg/pkg/errors"
	"github.com/matzehuels/tileorg/pkg/layout"
)

// DefaultChannel is the pub/sub channel frames are published on.
const DefaultChannel = "tileorg:frames"

type redisPublisherClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Close() error
}

// RedisMessage is the payload published for each frame.
type RedisMessage struct {
	Scenario string       `json:"scenario,omitempty"`
	Seq      int          `json:"seq"`
	Frame    layout.Frame `json:"frame"`
}

// RedisPublisher publishes frames on a Redis channel.
type RedisPublisher struct {
	client  redisPublisherClient
	channel string
}

// NewRedisPublisher connects to the Redis server at url. An empty channel
// uses DefaultChannel.
func NewRedisPublisher(ctx context.Context, url, channel string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping redis")
	}
	return NewRedisPublisherFromClient(client, channel), nil
}

// NewRedisPublisherFromClient wraps an existing client.
func NewRedisPublisherFromClient(client redis.UniversalClient, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// Channel returns the pub/sub channel.
func (p *RedisPublisher) Channel() string { return p.channel }

// Publish sends one message per frame, in order.
func (p *RedisPublisher) Publish(ctx context.Context, scenario string, frames []layout.Frame) error {
	for i, f := range frames {
		data, err := json.Marshal(RedisMessage{Scenario: scenario, Seq: i, Frame: f})
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode frame %d", i)
		}
		err = cache.Retry(ctx, publishAttempts, publishBackoff, func() error {
			if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
				return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
			}
			return nil
		})
		if err != nil {
			return errors.Wrap(errors.ErrCodeNetwork, err, "publish frame %d to %s", i, p.channel)
		}
	}
	return nil
}

// Close closes the Redis client.
func (p *RedisPublisher) Close(context.Context) error {
	return p.client.Close()
}

var _ Publisher = (*RedisPublisher)(nil)
