package liveness

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/imtaco/stream-orch-exp/internal/errors"
	"github.com/imtaco/stream-orch-exp/internal/gateway"
	"github.com/imtaco/stream-orch-exp/internal/log"
	"github.com/imtaco/stream-orch-exp/sessions"
	"github.com/imtaco/stream-orch-exp/sessions/mocks"
)

type ResolverTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockSchedule *mocks.MockScheduleGateway
	clock        *clockwork.FakeClock
	resolver     *Resolver
	ctx          context.Context

	start time.Time
	end   time.Time
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverTestSuite))
}

func (s *ResolverTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockSchedule = mocks.NewMockScheduleGateway(s.ctrl)
	s.start = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s.end = s.start.Add(time.Hour)
	s.clock = clockwork.NewFakeClockAt(s.start)
	s.resolver = NewResolverWithClock(s.mockSchedule, s.clock, log.NewNop())
	s.ctx = context.Background()
}

func (s *ResolverTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ResolverTestSuite) entry() *gateway.ScheduleEntry {
	return &gateway.ScheduleEntry{
		RoomName:     "demo-1",
		StartTime:    s.start,
		EndTime:      s.end,
		Description:  "launch party",
		Participants: []string{"Alice", "Bob"},
	}
}

func (s *ResolverTestSuite) TestBoundaryClassification() {
	// Inclusive on both ends: the boundary second is live.
	cases := []struct {
		name string
		now  time.Time
		want sessions.LivenessStatus
	}{
		{"one second before start", s.start.Add(-time.Second), sessions.LivenessNotLive},
		{"exactly at start", s.start, sessions.LivenessLive},
		{"mid window", s.start.Add(30 * time.Minute), sessions.LivenessLive},
		{"exactly at end", s.end, sessions.LivenessLive},
		{"one second after end", s.end.Add(time.Second), sessions.LivenessNotLive},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.clock = clockwork.NewFakeClockAt(tc.now)
			s.resolver = NewResolverWithClock(s.mockSchedule, s.clock, log.NewNop())

			s.mockSchedule.EXPECT().
				RoomEntry(gomock.Any(), "demo-1").
				Return(s.entry(), nil)

			lv := s.resolver.Resolve(s.ctx, "demo-1")
			s.Equal(tc.want, lv.Status)
			s.Require().NotNil(lv.Entry)
			s.Equal("demo-1", lv.Entry.RoomName)
			s.True(tc.now.Equal(lv.CheckedAt))
		})
	}
}

func (s *ResolverTestSuite) TestNotLiveKeepsScheduleMetadata() {
	s.clock = clockwork.NewFakeClockAt(s.end.Add(time.Minute))
	s.resolver = NewResolverWithClock(s.mockSchedule, s.clock, log.NewNop())

	s.mockSchedule.EXPECT().
		RoomEntry(gomock.Any(), "demo-1").
		Return(s.entry(), nil)

	lv := s.resolver.Resolve(s.ctx, "demo-1")
	s.Equal(sessions.LivenessNotLive, lv.Status)
	// The UI still renders start/end, description and participants.
	s.Require().NotNil(lv.Entry)
	s.Equal("launch party", lv.Entry.Description)
	s.Equal([]string{"Alice", "Bob"}, lv.Entry.Participants)
}

func (s *ResolverTestSuite) TestRoomWithoutEntryIsNotFound() {
	s.mockSchedule.EXPECT().
		RoomEntry(gomock.Any(), "demo-2").
		Return(nil, errors.New(gateway.ErrRoomNotScheduled, "no schedule entry for demo-2"))

	lv := s.resolver.Resolve(s.ctx, "demo-2")
	s.Equal(sessions.LivenessNotFound, lv.Status)
	s.Nil(lv.Entry)
}

func (s *ResolverTestSuite) TestFetchErrorIsDistinctFromNotFound() {
	s.mockSchedule.EXPECT().
		RoomEntry(gomock.Any(), "demo-1").
		Return(nil, errors.New(gateway.ErrFailedRequest, "connection refused"))

	lv := s.resolver.Resolve(s.ctx, "demo-1")
	s.Equal(sessions.LivenessFetchError, lv.Status)
	s.NotEqual(sessions.LivenessNotFound, lv.Status)
	s.Nil(lv.Entry)
}

func (s *ResolverTestSuite) TestMalformedPayloadIsFetchError() {
	s.mockSchedule.EXPECT().
		RoomEntry(gomock.Any(), "demo-1").
		Return(nil, errors.New(gateway.ErrInvalidPayload, "schedule entry missing window"))

	lv := s.resolver.Resolve(s.ctx, "demo-1")
	s.Equal(sessions.LivenessFetchError, lv.Status)
}

func (s *ResolverTestSuite) TestResolveSurvivesCallerCancellation() {
	// The shared flight serves every concurrent caller; the first caller
	// hanging up must not poison the result for the rest.
	ctx, cancel := context.WithCancel(context.Background())

	s.mockSchedule.EXPECT().
		RoomEntry(gomock.Any(), "demo-1").
		DoAndReturn(func(fetchCtx context.Context, _ string) (*gateway.ScheduleEntry, error) {
			cancel()
			if err := fetchCtx.Err(); err != nil {
				return nil, errors.Wrap(gateway.ErrFailedRequest, err, "lookup aborted")
			}
			return s.entry(), nil
		})

	lv := s.resolver.Resolve(ctx, "demo-1")
	s.Equal(sessions.LivenessLive, lv.Status)
}

func (s *ResolverTestSuite) TestEachResolveFetchesOnce() {
	s.mockSchedule.EXPECT().
		RoomEntry(gomock.Any(), "demo-1").
		Return(s.entry(), nil).
		Times(2)

	_ = s.resolver.Resolve(s.ctx, "demo-1")
	_ = s.resolver.Resolve(s.ctx, "demo-1")
}
