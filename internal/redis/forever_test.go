package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/imtaco/stream-orch-exp/internal/errors"
	"github.com/imtaco/stream-orch-exp/internal/log"
)

type ForeverTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *goredis.Client
	rdb       Forever
	ctx       context.Context
}

func TestForeverSuite(t *testing.T) {
	suite.Run(t, new(ForeverTestSuite))
}

func (s *ForeverTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.miniRedis = mr

	s.client = goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})
	s.rdb = NewForever(s.client, time.Millisecond, 10*time.Millisecond, log.NewNop())
	s.ctx = context.Background()
}

func (s *ForeverTestSuite) TearDownTest() {
	if s.client != nil {
		s.client.Close()
	}
	if s.miniRedis != nil {
		s.miniRedis.Close()
	}
}

func (s *ForeverTestSuite) TestSetGetRoundTrip() {
	s.Require().NoError(s.rdb.Set(s.ctx, "k1", "v1", time.Minute))

	val, err := s.rdb.Get(s.ctx, "k1")
	s.Require().NoError(err)
	s.Equal("v1", val)
}

func (s *ForeverTestSuite) TestGetMissingKeyIsNotRetried() {
	// A miss is an answer; it must surface as redis.Nil right away instead
	// of spinning in the backoff loop.
	start := time.Now()
	_, err := s.rdb.Get(s.ctx, "nope")
	s.Require().Error(err)
	s.True(errors.Is(err, goredis.Nil))
	s.Less(time.Since(start), time.Second)
}

func (s *ForeverTestSuite) TestDelThenGetIsNil() {
	s.Require().NoError(s.rdb.Set(s.ctx, "k1", "v1", time.Minute))
	s.Require().NoError(s.rdb.Del(s.ctx, "k1"))

	_, err := s.rdb.Get(s.ctx, "k1")
	s.True(errors.Is(err, goredis.Nil))
}
