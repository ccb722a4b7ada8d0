package memory

import (
	"context"
	"fmt"
	"time"

	"ai-recall-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SyncLockRepository is the in-process fallback lock used when Redis is
// not reachable. The TTL frees a pair whose run crashed without
// releasing. Only safe for a single-instance deployment.
type SyncLockRepository struct {
	cache *cache.Cache
}

func NewSyncLockRepository(ttl time.Duration) contract.SyncLocker {
	return &SyncLockRepository{
		cache: cache.New(ttl, 5*time.Minute),
	}
}

func lockKey(userId uuid.UUID, sourceTag string) string {
	return fmt.Sprintf("sync:%s:%s", sourceTag, userId)
}

func (r *SyncLockRepository) Acquire(ctx context.Context, userId uuid.UUID, sourceTag string) (bool, error) {
	// cache.Add is atomic: it fails when the key already exists.
	if err := r.cache.Add(lockKey(userId, sourceTag), true, cache.DefaultExpiration); err != nil {
		return false, nil
	}
	return true, nil
}

func (r *SyncLockRepository) Release(ctx context.Context, userId uuid.UUID, sourceTag string) error {
	r.cache.Delete(lockKey(userId, sourceTag))
	return nil
}
