package locks

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "flowvault:lock:"

// RedisManager implements Manager on a Redis hash per resource, for
// deployments where several processes guard the same resources. Same
// semantics as MemoryManager: lazy staleness purge on query, no blocking.
type RedisManager struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisManager connects to the given Redis URL. A non-positive ttl falls
// back to DefaultTTL.
func NewRedisManager(url string, ttl time.Duration) (*RedisManager, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisManager{
		client: redis.NewClient(opts),
		ttl:    ttl,
	}, nil
}

func (m *RedisManager) Acquire(ctx context.Context, resourceID, holderID string) error {
	acquiredAt := strconv.FormatInt(time.Now().UnixMilli(), 10)

	err := m.client.HSet(ctx, redisKeyPrefix+resourceID, holderID, acquiredAt).Err()
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", resourceID, err)
	}

	return nil
}

func (m *RedisManager) Release(ctx context.Context, resourceID, holderID string) error {
	err := m.client.HDel(ctx, redisKeyPrefix+resourceID, holderID).Err()
	if err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", resourceID, err)
	}

	return nil
}

func (m *RedisManager) ReleaseAll(ctx context.Context, holderID string) error {
	iter := m.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()

	for iter.Next(ctx) {
		if err := m.client.HDel(ctx, iter.Val(), holderID).Err(); err != nil {
			return fmt.Errorf("failed to release locks for holder %s: %w", holderID, err)
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan locks for holder %s: %w", holderID, err)
	}

	return nil
}

func (m *RedisManager) IsLocked(ctx context.Context, resourceID string) (bool, error) {
	holders, err := m.liveHolders(ctx, resourceID)
	if err != nil {
		return false, err
	}

	return len(holders) > 0, nil
}

func (m *RedisManager) Holders(ctx context.Context, resourceID string) ([]string, error) {
	return m.liveHolders(ctx, resourceID)
}

// liveHolders reads the resource hash, purging entries past the TTL as it
// goes.
func (m *RedisManager) liveHolders(ctx context.Context, resourceID string) ([]string, error) {
	key := redisKeyPrefix + resourceID

	entries, err := m.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read lock %s: %w", resourceID, err)
	}

	cutoff := time.Now().Add(-m.ttl).UnixMilli()
	holders := make([]string, 0, len(entries))

	for holderID, raw := range entries {
		acquiredAt, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil || acquiredAt < cutoff {
			_ = m.client.HDel(ctx, key, holderID).Err()

			continue
		}

		holders = append(holders, holderID)
	}

	sort.Strings(holders)

	return holders, nil
}

// Close releases the underlying Redis connection.
func (m *RedisManager) Close() error {
	return m.client.Close()
}
