package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// receiveScript reclaims expired leases, pops one pending id and
// registers its lease in a single server-side step. A message id is
// therefore always on exactly one of the two lists; there is no window
// where a crash strands it on neither.
var receiveScript = redis.NewScript(`
local pending = KEYS[1]
local leased = KEYS[2]
local prefix = ARGV[1]
local now = ARGV[2]
local receipt = ARGV[3]
local expiry = ARGV[4]

local expired = redis.call("ZRANGEBYSCORE", leased, "-inf", now)
for _, id in ipairs(expired) do
	redis.call("ZREM", leased, id)
	redis.call("HDEL", prefix .. id, "receipt")
	redis.call("RPUSH", pending, id)
end

local id = redis.call("RPOP", pending)
if not id then
	return false
end
local msg = prefix .. id
local body = redis.call("HGET", msg, "body")
if not body then
	return false
end
local attempts = redis.call("HINCRBY", msg, "attempts", 1)
redis.call("HSET", msg, "receipt", receipt)
redis.call("ZADD", leased, expiry, id)
return {id, body, attempts}
`)

// deleteScript compares the receipt and removes the message in the same
// step, so a lease that expires mid-delete cannot ack a message that was
// already handed to another holder.
var deleteScript = redis.NewScript(`
local msg = KEYS[1]
local leased = KEYS[2]
local pending = KEYS[3]
local id = ARGV[1]
local receipt = ARGV[2]

local current = redis.call("HGET", msg, "receipt")
if not current or current ~= receipt then
	return 0
end
redis.call("ZREM", leased, id)
redis.call("LREM", pending, 0, id)
redis.call("DEL", msg)
return 1
`)

// RedisQueue is a lease-based queue backed by Redis. Pending message ids
// live on a list; leased ids live on a sorted set scored by lease expiry.
// Receive moves expired leases back onto the pending list before popping,
// which is what gives redelivery its at-least-once shape.
type RedisQueue struct {
	rdb  *redis.Client
	name string
	now  func() time.Time
}

// NewRedisQueue creates a queue named name on the given client.
func NewRedisQueue(rdb *redis.Client, name string) *RedisQueue {
	return &RedisQueue{rdb: rdb, name: name, now: time.Now}
}

func (q *RedisQueue) pendingKey() string { return "lingo:queue:" + q.name + ":pending" }
func (q *RedisQueue) leasedKey() string  { return "lingo:queue:" + q.name + ":leased" }
func (q *RedisQueue) msgPrefix() string  { return "lingo:queue:" + q.name + ":msg:" }
func (q *RedisQueue) msgKey(id string) string {
	return q.msgPrefix() + id
}

// Ensure verifies the backing store is reachable. Redis keys spring into
// existence on first write, so reachability is the whole check.
func (q *RedisQueue) Ensure(ctx context.Context) error {
	if err := q.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ensure queue %s: %w", q.name, err)
	}
	return nil
}

// Send enqueues a message body and returns its id.
func (q *RedisQueue) Send(ctx context.Context, body []byte) (string, error) {
	id := uuid.New().String()

	pipe := q.rdb.TxPipeline()
	pipe.HSet(ctx, q.msgKey(id), "body", body, "attempts", 0)
	pipe.LPush(ctx, q.pendingKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("send to queue %s: %w", q.name, err)
	}
	return id, nil
}

// Receive leases at most one message for the given duration.
func (q *RedisQueue) Receive(ctx context.Context, lease time.Duration) (*Delivery, error) {
	receipt := uuid.New().String()
	now := unixSeconds(q.now())
	expiry := unixSeconds(q.now().Add(lease))

	res, err := receiveScript.Run(ctx, q.rdb,
		[]string{q.pendingKey(), q.leasedKey()},
		q.msgPrefix(), now, receipt, expiry,
	).Result()
	if err == redis.Nil {
		return nil, ErrNoMessage
	}
	if err != nil {
		return nil, fmt.Errorf("receive from queue %s: %w", q.name, err)
	}

	reply, ok := res.([]any)
	if !ok || len(reply) != 3 {
		return nil, fmt.Errorf("receive from queue %s: unexpected reply %v", q.name, res)
	}
	id, _ := reply[0].(string)
	body, _ := reply[1].(string)
	attempts, _ := reply[2].(int64)

	return &Delivery{
		ID:       id,
		Receipt:  receipt,
		Body:     []byte(body),
		Attempts: int(attempts),
	}, nil
}

// Delete acknowledges a delivery. It fails with ErrLeaseLost if the lease
// expired and the message was since redelivered under a new receipt.
func (q *RedisQueue) Delete(ctx context.Context, d *Delivery) error {
	res, err := deleteScript.Run(ctx, q.rdb,
		[]string{q.msgKey(d.ID), q.leasedKey(), q.pendingKey()},
		d.ID, d.Receipt,
	).Int64()
	if err != nil {
		return fmt.Errorf("delete message %s: %w", d.ID, err)
	}
	if res == 0 {
		return ErrLeaseLost
	}
	return nil
}

func unixSeconds(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixNano())/float64(time.Second), 'f', -1, 64)
}
