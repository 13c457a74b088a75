package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"milsabores/pkg/testutil"
)

const (
	testLimit  = 3
	testWindow = time.Minute
)

// StoreSuite runs against any Store; newStore must return an empty one.
type StoreSuite struct {
	suite.Suite
	newStore func(now func() time.Time) Store
	clock    *testutil.Clock
	store    Store
	ctx      context.Context
}

func TestInMemoryStore(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func(now func() time.Time) Store {
		return NewInMemoryStore(WithClock(now))
	}})
}

func (s *StoreSuite) SetupTest() {
	s.clock = testutil.NewClock(time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC))
	s.store = s.newStore(s.clock.Now)
	s.ctx = context.Background()
}

func (s *StoreSuite) allow(key string) Result {
	res, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
	s.Require().NoError(err)
	return res
}

func (s *StoreSuite) TestAllow() {
	s.Run("first request allowed", func() {
		res := s.allow("first")
		s.True(res.Allowed)
		s.Equal(testLimit, res.Limit)
		s.Equal(testLimit-1, res.Remaining)
		s.Equal(0, res.RetryAfter)
	})

	s.Run("requests up to the limit allowed", func() {
		var res Result
		for range testLimit {
			res = s.allow("up-to")
		}
		s.True(res.Allowed)
		s.Equal(0, res.Remaining)
	})

	s.Run("request over the limit denied until the oldest leaves", func() {
		s.allow("over")
		s.clock.Advance(20 * time.Second)
		s.allow("over")
		s.allow("over")

		res := s.allow("over")
		s.False(res.Allowed)
		s.Equal(0, res.Remaining)
		s.Equal(40, res.RetryAfter)

		s.clock.Advance(40 * time.Second)
		res = s.allow("over")
		s.True(res.Allowed)
		s.Equal(0, res.Remaining)
	})

	s.Run("keys are independent", func() {
		for range testLimit {
			s.allow("a")
		}
		s.False(s.allow("a").Allowed)
		s.True(s.allow("b").Allowed)
	})
}

func (s *StoreSuite) TestReset() {
	for range testLimit {
		s.allow("reset")
	}
	s.Require().False(s.allow("reset").Allowed)

	s.Require().NoError(s.store.Reset(s.ctx, "reset"))
	s.True(s.allow("reset").Allowed)
}

func (s *StoreSuite) TestConcurrentRequestsNeverExceedLimit() {
	const workers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.store.Allow(s.ctx, "race", testLimit, testWindow)
			s.NoError(err)
			if res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(testLimit, allowed)
}

func TestRule(t *testing.T) {
	suite.Run(t, new(ruleSuite))
}

type ruleSuite struct{ suite.Suite }

func (s *ruleSuite) TestEnabled() {
	s.True(Rule{Limit: 1, Window: time.Second}.Enabled())
	s.False(Rule{Limit: 0, Window: time.Second}.Enabled())
	s.False(Rule{Limit: 5}.Enabled())
}
