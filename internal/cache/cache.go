package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
)

const (
	listKey    = "courtroom:records:list"
	DefaultTTL = 5 * time.Minute
)

var ErrMiss = errors.New("cache miss")

// RecordCache caches the full stored-record list. Any write invalidates it.
type RecordCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func New(addr string) *RecordCache {
	return &RecordCache{
		Client: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
		TTL: DefaultTTL,
	}
}

func (c *RecordCache) GetList(ctx context.Context) ([]*domain.Record, error) {
	b, err := c.Client.Get(ctx, listKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var out []*domain.Record
	return out, json.Unmarshal(b, &out)
}

func (c *RecordCache) SetList(ctx context.Context, records []*domain.Record) error {
	b, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, listKey, b, c.TTL).Err()
}

func (c *RecordCache) Invalidate(ctx context.Context) error {
	return c.Client.Del(ctx, listKey).Err()
}

func (c *RecordCache) PingContext(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RecordCache) Close() error {
	return c.Client.Close()
}
