package conversation

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "aurion:conversation:"

// RedisCounter stores counters in Redis so that every relay replica sees the
// same totals.
type RedisCounter struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCounter wraps an existing client.
func NewRedisCounter(client redis.UniversalClient, ttl time.Duration) *RedisCounter {
	return &RedisCounter{client: client, ttl: ttl}
}

// DialRedis parses a redis:// URL and verifies the connection.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return client, nil
}

// Current implements Counter.
func (c *RedisCounter) Current(ctx context.Context, conversationID string) (int, error) {
	if conversationID == "" {
		return 0, ErrConversationRequired
	}

	n, err := c.client.Get(ctx, keyPrefix+conversationID).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "read conversation counter")
	}
	return n, nil
}

// admitScript checks and increments in one server-side step.
// KEYS[1] counter key; ARGV[1] claimed count, ARGV[2] limit, ARGV[3] ttl ms.
var admitScript = redis.NewScript(`
local n = tonumber(redis.call('GET', KEYS[1]) or '0') + 1
local effective = math.max(n, tonumber(ARGV[1]))
if effective >= tonumber(ARGV[2]) then
	return {effective, 0}
end
redis.call('INCR', KEYS[1])
if tonumber(ARGV[3]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return {effective, 1}
`)

// Admit implements Counter.
func (c *RedisCounter) Admit(ctx context.Context, conversationID string, claimed, limit int) (int, bool, error) {
	if conversationID == "" {
		return 0, false, ErrConversationRequired
	}

	res, err := admitScript.Run(ctx, c.client, []string{keyPrefix + conversationID},
		claimed, limit, c.ttl.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, false, errors.Wrap(err, "admit conversation turn")
	}
	if len(res) != 2 {
		return 0, false, errors.Errorf("admit conversation turn: unexpected reply %v", res)
	}
	return int(res[0]), res[1] == 1, nil
}
