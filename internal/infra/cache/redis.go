package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/virouzrx/petfood-verifai/internal/domain/ingredients"
)

// ScrapeCache keeps recent scrape results so repeated submissions of the same
// URL skip the outbound GET. Disabled instances are valid and always miss.
type ScrapeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(ctx context.Context, enabled bool, addr string, ttl time.Duration) (*ScrapeCache, error) {
	if !enabled {
		return &ScrapeCache{}, nil
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &ScrapeCache{client: client, ttl: ttl}, nil
}

func (c *ScrapeCache) Get(ctx context.Context, url string) (*ingredients.Acquisition, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key(url)).Bytes()
	if err != nil {
		return nil, false
	}
	var acq ingredients.Acquisition
	if err := json.Unmarshal(data, &acq); err != nil {
		return nil, false
	}
	return &acq, true
}

// Set is best effort; RawHTML is excluded by its json tag so only the
// extracted fields are cached.
func (c *ScrapeCache) Set(ctx context.Context, url string, acq *ingredients.Acquisition) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(acq)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(url), data, c.ttl).Err()
}

func key(url string) string {
	return "scrape:" + url
}
