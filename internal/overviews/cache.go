package overviews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// SummaryCache keeps group summaries in Redis under a per-group version.
// Invalidation bumps the version so stale entries simply age out; concurrent
// misses for the same group collapse into one rebuild.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewSummaryCache constructs the cache helper. A nil client disables caching
// and every Fetch falls through to the loader.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

func versionKey(groupID int64) string {
	return fmt.Sprintf("overviews:ver:%d", groupID)
}

func (c *SummaryCache) version(ctx context.Context, groupID int64) (int64, error) {
	ver, err := c.client.Get(ctx, versionKey(groupID)).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.Set(ctx, versionKey(groupID), 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Fetch returns the cached summary or rebuilds it through the loader.
func (c *SummaryCache) Fetch(ctx context.Context, groupID int64, loader func(context.Context) (Summary, error)) (Summary, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	ver, err := c.version(ctx, groupID)
	if err != nil {
		return Summary{}, err
	}
	key := fmt.Sprintf("overviews:summary:%d:%d", groupID, ver)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var summary Summary
		if err := json.Unmarshal(payload, &summary); err == nil {
			return summary, nil
		}
		// Unreadable payload falls through to a rebuild.
	} else if !errors.Is(err, redis.Nil) {
		return Summary{}, err
	}

	resultChan := c.group.DoChan(key, func() (interface{}, error) {
		summary, err := loader(ctx)
		if err != nil {
			return Summary{}, err
		}
		raw, err := json.Marshal(summary)
		if err != nil {
			return Summary{}, err
		}
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return Summary{}, err
		}
		return summary, nil
	})
	select {
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return Summary{}, res.Err
		}
		return res.Val.(Summary), nil
	}
}

// Bump invalidates the group's cached summary by incrementing its version.
func (c *SummaryCache) Bump(ctx context.Context, groupID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKey(groupID)).Err()
}
