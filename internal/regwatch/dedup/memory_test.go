package dedup

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"
)

type InMemoryIndexSuite struct {
	suite.Suite
	ctx   context.Context
	index *InMemoryIndex
}

func TestInMemoryIndexSuite(t *testing.T) {
	suite.Run(t, new(InMemoryIndexSuite))
}

func (s *InMemoryIndexSuite) SetupTest() {
	s.ctx = context.Background()
	s.index = NewInMemoryIndex()
}

func (s *InMemoryIndexSuite) TestAddIfAbsent() {
	s.Run("first claim wins", func() {
		claimed, err := s.index.AddIfAbsent(s.ctx, "fp-1")
		s.Require().NoError(err)
		s.True(claimed)
	})

	s.Run("second claim loses", func() {
		claimed, err := s.index.AddIfAbsent(s.ctx, "fp-1")
		s.Require().NoError(err)
		s.False(claimed)
	})

	s.Run("removed fingerprints can be claimed again", func() {
		s.Require().NoError(s.index.Remove(s.ctx, "fp-1"))
		claimed, err := s.index.AddIfAbsent(s.ctx, "fp-1")
		s.Require().NoError(err)
		s.True(claimed)
	})
}

// TestConcurrentClaims races claims for one fingerprint and verifies exactly
// one caller wins.
func (s *InMemoryIndexSuite) TestConcurrentClaims() {
	const goroutines = 32

	var wg sync.WaitGroup
	var wins atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := s.index.AddIfAbsent(s.ctx, "fp-race")
			if err == nil && claimed {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
}
