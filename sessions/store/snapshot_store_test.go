package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/imtaco/stream-orch-exp/internal/errors"
	"github.com/imtaco/stream-orch-exp/internal/log"
	"github.com/imtaco/stream-orch-exp/internal/redis"
	"github.com/imtaco/stream-orch-exp/sessions"
	"github.com/imtaco/stream-orch-exp/sessions/mocks"
)

type SnapshotStoreSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *goredis.Client
	store     sessions.SnapshotStore
	ctx       context.Context
}

func TestSnapshotStoreSuite(t *testing.T) {
	suite.Run(t, new(SnapshotStoreSuite))
}

func (s *SnapshotStoreSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.miniRedis = mr

	s.client = goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})

	rdb := redis.NewForever(s.client, time.Millisecond, 10*time.Millisecond, log.NewNop())
	s.store = NewSnapshotStore(rdb, "orch", time.Minute, log.NewNop())
	s.ctx = context.Background()
}

func (s *SnapshotStoreSuite) TearDownTest() {
	if s.client != nil {
		s.client.Close()
	}
	if s.miniRedis != nil {
		s.miniRedis.Close()
	}
}

func (s *SnapshotStoreSuite) snap(id, room string, state sessions.State) *sessions.SessionSnapshot {
	return &sessions.SessionSnapshot{
		SessionID: id,
		RoomName:  room,
		State:     state,
		UpdatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (s *SnapshotStoreSuite) TestSaveGetRoundTrip() {
	err := s.store.Save(s.ctx, s.snap("sess-1", "demo-1", sessions.StateJoined))
	s.Require().NoError(err)

	got, err := s.store.Get(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal("demo-1", got.RoomName)
	s.Equal(sessions.StateJoined, got.State)
}

func (s *SnapshotStoreSuite) TestGetMissingIsNotFound() {
	_, err := s.store.Get(s.ctx, "nope")
	s.Require().Error(err)
	s.True(errors.Is(err, ErrNotFound))
}

func (s *SnapshotStoreSuite) TestSaveSetsTTL() {
	err := s.store.Save(s.ctx, s.snap("sess-1", "demo-1", sessions.StateJoining))
	s.Require().NoError(err)

	s.miniRedis.FastForward(2 * time.Minute)

	_, err = s.store.Get(s.ctx, "sess-1")
	s.True(errors.Is(err, ErrNotFound))
}

func (s *SnapshotStoreSuite) TestListReturnsAllSessions() {
	s.Require().NoError(s.store.Save(s.ctx, s.snap("sess-1", "demo-1", sessions.StateJoined)))
	s.Require().NoError(s.store.Save(s.ctx, s.snap("sess-2", "demo-2", sessions.StateNotLive)))

	snaps, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Len(snaps, 2)

	byID := map[string]*sessions.SessionSnapshot{}
	for _, snap := range snaps {
		byID[snap.SessionID] = snap
	}
	s.Equal("demo-1", byID["sess-1"].RoomName)
	s.Equal("demo-2", byID["sess-2"].RoomName)
}

func (s *SnapshotStoreSuite) TestListEmpty() {
	snaps, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(snaps)
}

func (s *SnapshotStoreSuite) TestSinkPersistsAsync() {
	sink := NewSink(s.store, log.NewNop())
	sink.Publish(s.ctx, s.snap("sess-1", "demo-1", sessions.StateAwaitingIdentity))

	s.Eventually(func() bool {
		got, err := s.store.Get(s.ctx, "sess-1")
		return err == nil && got.State == sessions.StateAwaitingIdentity
	}, time.Second, 10*time.Millisecond)
}

func (s *SnapshotStoreSuite) TestSinkBoundsEachWrite() {
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()
	store := mocks.NewMockSnapshotStore(ctrl)

	type ctxState struct {
		bounded bool
		err     error
	}
	got := make(chan ctxState, 1)
	store.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ *sessions.SessionSnapshot) error {
			// Capture at Save time: the sink's deferred cancel fires as
			// soon as Save returns, so the live context cannot be
			// inspected afterwards.
			_, bounded := ctx.Deadline()
			got <- ctxState{bounded: bounded, err: ctx.Err()}
			return nil
		})

	parent, cancel := context.WithCancel(context.Background())
	sink := NewSink(store, log.NewNop())
	sink.Publish(parent, s.snap("sess-1", "demo-1", sessions.StateJoining))
	cancel()

	select {
	case state := <-got:
		// Detached from the caller but bounded by its own deadline.
		s.True(state.bounded)
		s.NoError(state.err)
	case <-time.After(time.Second):
		s.FailNow("snapshot write never started")
	}
}
