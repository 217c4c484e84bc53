package notifier

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	dealerrors "sjsage522/geardealworker/pkg/errors"
)

// alertField is the stream entry field holding the JSON encoded alert
const alertField = "alert"

// RedisStreamNotifier mirrors alerts into a Redis stream for downstream consumers
type RedisStreamNotifier struct {
	client          *redis.Client
	stream          string
	streamMaxLength int64
}

var _ Notifier = (*RedisStreamNotifier)(nil)

// NewRedisStreamNotifier creates a new Redis stream notifier
func NewRedisStreamNotifier(addr string, db int, stream string, streamMaxLength int) *RedisStreamNotifier {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisStreamNotifier{
		client:          client,
		stream:          stream,
		streamMaxLength: int64(streamMaxLength),
	}
}

func (n *RedisStreamNotifier) Name() string {
	return "redis:" + n.stream
}

// Notify appends the alert to the stream, trimming it to roughly the configured length
func (n *RedisStreamNotifier) Notify(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return dealerrors.NewDelivery(n.Name(), "failed to encode alert", err)
	}

	args := &redis.XAddArgs{
		Stream: n.stream,
		Values: map[string]interface{}{
			alertField: payload,
		},
	}
	if n.streamMaxLength > 0 {
		args.MaxLen = n.streamMaxLength
		args.Approx = true
	}

	if err := n.client.XAdd(ctx, args).Err(); err != nil {
		return dealerrors.NewDelivery(n.Name(), "XADD failed", err)
	}
	return nil
}

// Ping checks that the Redis server is reachable
func (n *RedisStreamNotifier) Ping(ctx context.Context) error {
	return n.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (n *RedisStreamNotifier) Close() error {
	return n.client.Close()
}
