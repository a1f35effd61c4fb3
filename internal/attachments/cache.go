package attachments

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "attachment_url:"
const cacheTTL = 24 * time.Hour

// URLCache is a Redis lookaside cache mapping a source URL to the attachment
// id created for it. The database row remains the source of truth; a miss
// just costs one indexed query.
type URLCache struct {
	Rdb *redis.Client
}

func (c *URLCache) Get(ctx context.Context, url string) (uint, bool) {
	if c == nil || c.Rdb == nil {
		return 0, false
	}
	v, err := c.Rdb.Get(ctx, cacheKeyPrefix+url).Result()
	if err != nil {
		return 0, false
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (c *URLCache) Set(ctx context.Context, url string, id uint) {
	if c == nil || c.Rdb == nil {
		return
	}
	c.Rdb.Set(ctx, cacheKeyPrefix+url, strconv.FormatUint(uint64(id), 10), cacheTTL)
}
