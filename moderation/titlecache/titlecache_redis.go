package titlecache

import (
	"context"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

type RedisTitleStore struct {
	Data *cache.Cache
	TTL  time.Duration
}

var _ TitleStore = (*RedisTitleStore)(nil)

func NewRedisTitleStore(redisURL string, ttl time.Duration) (*RedisTitleStore, error) {
	ctx := context.Background()
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	data := cache.New(&cache.Options{
		Redis:      rdb,
		LocalCache: cache.NewTinyLFU(1_000, ttl),
	})
	return &RedisTitleStore{
		Data: data,
		TTL:  ttl,
	}, nil
}

func redisTitleKey(categoryID string) string {
	return "categorytitle/" + categoryID
}

func (s RedisTitleStore) Get(ctx context.Context, categoryID string) (string, error) {
	var val string
	err := s.Data.Get(ctx, redisTitleKey(categoryID), &val)
	if err == cache.ErrCacheMiss {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s RedisTitleStore) Set(ctx context.Context, categoryID, title string) error {
	return s.Data.Set(&cache.Item{
		Ctx:   ctx,
		Key:   redisTitleKey(categoryID),
		Value: title,
		TTL:   s.TTL,
	})
}

func (s RedisTitleStore) Purge(ctx context.Context, categoryID string) error {
	err := s.Data.Delete(ctx, redisTitleKey(categoryID))
	if err == cache.ErrCacheMiss {
		return nil
	}
	return err
}
