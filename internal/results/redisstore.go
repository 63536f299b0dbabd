package results

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "lingo:result:"

// RedisStore keeps records as JSON strings under lingo:result:{task_id}.
// Records expire on their own after the retention window; zero retention
// keeps them forever.
type RedisStore struct {
	rdb       *redis.Client
	retention time.Duration
}

// NewRedisStore creates a RedisStore with the given retention window.
func NewRedisStore(rdb *redis.Client, retention time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, retention: retention}
}

// Put writes the record, overwriting any previous value for the task id.
func (rs *RedisStore) Put(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := rs.rdb.Set(ctx, redisKeyPrefix+rec.TaskID, data, rs.retention).Err(); err != nil {
		return fmt.Errorf("store result %s: %w", rec.TaskID, err)
	}
	return nil
}

// Get reads the record for a task id. A missing key is not an error.
func (rs *RedisStore) Get(ctx context.Context, taskID string) (*Record, error) {
	data, err := rs.rdb.Get(ctx, redisKeyPrefix+taskID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read result %s: %w", taskID, err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal result %s: %w", taskID, err)
	}
	return &rec, nil
}

// Purge is satisfied by key expiry; it only sweeps records written when
// the store was configured without retention.
func (rs *RedisStore) Purge(ctx context.Context, olderThan time.Time) (int, error) {
	keys, err := rs.rdb.Keys(ctx, redisKeyPrefix+"*").Result()
	if err != nil {
		return 0, fmt.Errorf("list results: %w", err)
	}

	cutoff := UnixSeconds(olderThan)
	removed := 0
	for _, key := range keys {
		data, err := rs.rdb.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			continue
		}
		if rec.ProcessedAt < cutoff {
			if rs.rdb.Del(ctx, key).Err() == nil {
				removed++
			}
		}
	}
	return removed, nil
}
