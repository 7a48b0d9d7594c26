package titlecache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type MemTitleStore struct {
	Data *expirable.LRU[string, string]
}

var _ TitleStore = (*MemTitleStore)(nil)

func NewMemTitleStore(capacity int, ttl time.Duration) MemTitleStore {
	return MemTitleStore{
		Data: expirable.NewLRU[string, string](capacity, nil, ttl),
	}
}

func (s MemTitleStore) Get(ctx context.Context, categoryID string) (string, error) {
	v, ok := s.Data.Get(categoryID)
	if !ok {
		return "", nil
	}
	return v, nil
}

func (s MemTitleStore) Set(ctx context.Context, categoryID, title string) error {
	s.Data.Add(categoryID, title)
	return nil
}

func (s MemTitleStore) Purge(ctx context.Context, categoryID string) error {
	s.Data.Remove(categoryID)
	return nil
}
