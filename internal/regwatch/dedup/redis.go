package dedup

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// fingerprintSetKey is the shared Redis set of proposed fingerprints. Key
// existence is what matters, matching how other control-plane state is kept.
const fingerprintSetKey = "regwatch:fingerprints"

// RedisIndex is the distributed implementation for deployments where several
// instances poll concurrently and must agree on what has been proposed.
type RedisIndex struct {
	client *redis.Client
}

func NewRedisIndex(client *redis.Client) *RedisIndex {
	return &RedisIndex{client: client}
}

// AddIfAbsent claims the fingerprint with a single SADD. The returned count
// is 1 only for the member that was actually inserted, which makes the claim
// atomic across instances.
func (i *RedisIndex) AddIfAbsent(ctx context.Context, fingerprint string) (bool, error) {
	added, err := i.client.SAdd(ctx, fingerprintSetKey, fingerprint).Result()
	if err != nil {
		return false, err
	}
	return added > 0, nil
}

func (i *RedisIndex) Remove(ctx context.Context, fingerprint string) error {
	return i.client.SRem(ctx, fingerprintSetKey, fingerprint).Err()
}
