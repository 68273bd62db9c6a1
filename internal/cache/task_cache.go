package cache

import (
	"context"
	"encoding/json"
	"time"

	dom "taskboard/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "task:list:"
	// bumped by every invalidation
	genKey = "task:gen"
)

// View names a cached list read.
type View string

const (
	ViewAll       View = "all"
	ViewCompleted View = "completed"
	ViewPending   View = "pending"
)

var views = []View{ViewAll, ViewCompleted, ViewPending}

// TaskCache caches task list reads in Redis.
type TaskCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewTaskCache returns a new TaskCache.
func NewTaskCache(rdb redis.UniversalClient, ttl time.Duration) *TaskCache {
	return &TaskCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached list for view, or nil on a miss.
func (c *TaskCache) GetList(ctx context.Context, view View) ([]dom.Task, error) {
	b, err := c.rdb.Get(ctx, keyPrefix+string(view)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := []dom.Task{}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Generation returns the current invalidation generation. Read it before
// loading a list from the store and pass it to SetListAt.
func (c *TaskCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, genKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

// SetListAt stores the list for view only if no invalidation happened since
// gen was read. It reports whether the list was stored.
func (c *TaskCache) SetListAt(ctx context.Context, view View, list []dom.Task, gen int64) (bool, error) {
	b, err := json.Marshal(list)
	if err != nil {
		return false, err
	}
	stored := false
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, keyPrefix+string(view), b, c.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		stored = true
		return nil
	}, genKey)
	if err == redis.TxFailedErr {
		return false, nil
	}
	return stored, err
}

// InvalidateAll bumps the generation and removes every cached list in one
// transaction.
func (c *TaskCache) InvalidateAll(ctx context.Context) error {
	keys := make([]string, len(views))
	for i, v := range views {
		keys[i] = keyPrefix + string(v)
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Del(ctx, keys...)
		return nil
	})
	return err
}
