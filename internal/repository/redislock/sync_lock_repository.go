package redislock

import (
	"context"
	"fmt"
	"time"

	"ai-recall-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SyncLockRepository enforces the one-run-per-(owner, source) rule
// across instances with SETNX + TTL.
type SyncLockRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSyncLockRepository(rdb *redis.Client, ttl time.Duration) contract.SyncLocker {
	return &SyncLockRepository{
		rdb: rdb,
		ttl: ttl,
	}
}

func lockKey(userId uuid.UUID, sourceTag string) string {
	return fmt.Sprintf("sync_lock:%s:%s", sourceTag, userId)
}

func (r *SyncLockRepository) Acquire(ctx context.Context, userId uuid.UUID, sourceTag string) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, lockKey(userId, sourceTag), "1", r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (r *SyncLockRepository) Release(ctx context.Context, userId uuid.UUID, sourceTag string) error {
	return r.rdb.Del(ctx, lockKey(userId, sourceTag)).Err()
}
