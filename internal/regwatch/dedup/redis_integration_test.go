//go:build integration

package dedup_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"gxpgovern/internal/regwatch/dedup"
	"gxpgovern/pkg/testutil/containers"
)

type RedisIndexSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	index *dedup.RedisIndex
}

func TestRedisIndexSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisIndexSuite))
}

func (s *RedisIndexSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.index = dedup.NewRedisIndex(s.redis.Client)
}

func (s *RedisIndexSuite) SetupTest() {
	ctx := context.Background()
	err := s.redis.FlushAll(ctx)
	s.Require().NoError(err)
}

func (s *RedisIndexSuite) TestAddIfAbsent() {
	ctx := context.Background()

	claimed, err := s.index.AddIfAbsent(ctx, "fp-1")
	s.Require().NoError(err)
	s.True(claimed)

	claimed, err = s.index.AddIfAbsent(ctx, "fp-1")
	s.Require().NoError(err)
	s.False(claimed)
}

func (s *RedisIndexSuite) TestRemoveReleasesClaim() {
	ctx := context.Background()

	claimed, err := s.index.AddIfAbsent(ctx, "fp-1")
	s.Require().NoError(err)
	s.Require().True(claimed)

	s.Require().NoError(s.index.Remove(ctx, "fp-1"))

	claimed, err = s.index.AddIfAbsent(ctx, "fp-1")
	s.Require().NoError(err)
	s.True(claimed)
}

// TestConcurrentClaims races claims for one fingerprint against a live Redis
// and verifies the SADD count admits exactly one winner.
func (s *RedisIndexSuite) TestConcurrentClaims() {
	ctx := context.Background()
	const goroutines = 32

	var wg sync.WaitGroup
	var wins atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := s.index.AddIfAbsent(ctx, "fp-race")
			if err == nil && claimed {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
}
