package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/imtaco/stream-orch-exp/internal/errors"
	"github.com/imtaco/stream-orch-exp/internal/gateway"
	"github.com/imtaco/stream-orch-exp/internal/log"
	"github.com/imtaco/stream-orch-exp/sessions"
	"github.com/imtaco/stream-orch-exp/sessions/mocks"
)

type SessionTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockResolver *mocks.MockLivenessResolver
	mockTokens   *mocks.MockTokenGateway
	mockSink     *mocks.MockTransitionSink
	ctx          context.Context
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}

func (s *SessionTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockResolver = mocks.NewMockLivenessResolver(s.ctrl)
	s.mockTokens = mocks.NewMockTokenGateway(s.ctrl)
	s.mockSink = mocks.NewMockTransitionSink(s.ctrl)
	s.ctx = context.Background()
}

func (s *SessionTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *SessionTestSuite) newSession(roomName string) *Session {
	return NewSession("sess-1", roomName, Deps{
		Resolver:      s.mockResolver,
		Tokens:        s.mockTokens,
		Sinks:         []sessions.TransitionSink{s.mockSink},
		ServerURL:     "wss://rtc.example.com",
		PublicBaseURL: "https://watch.example.com",
		Logger:        log.NewNop(),
	})
}

func (s *SessionTestSuite) liveLiveness(roomName string) *sessions.Liveness {
	now := time.Now()
	return &sessions.Liveness{
		Status: sessions.LivenessLive,
		Entry: &gateway.ScheduleEntry{
			RoomName:  roomName,
			StartTime: now.Add(-time.Hour),
			EndTime:   now.Add(time.Hour),
		},
		CheckedAt: now,
	}
}

func (s *SessionTestSuite) TestLiveRoomJoinReachesJoined() {
	s.mockResolver.EXPECT().
		Resolve(gomock.Any(), "demo-1").
		Return(s.liveLiveness("demo-1"))
	s.mockSink.EXPECT().Publish(gomock.Any(), gomock.Any()).AnyTimes()

	sess := s.newSession("demo-1")
	snap := sess.Resolve(s.ctx)
	s.Equal(sessions.StateAwaitingIdentity, snap.State)
	s.Equal("https://watch.example.com/watch/demo-1", snap.WatchURL)

	s.mockTokens.EXPECT().
		JoinStream(gomock.Any(), &gateway.JoinStreamRequest{
			RoomName: "demo-1",
			Identity: "alice",
		}).
		Return(&gateway.Credential{AuthToken: "at", RoomToken: "rt"}, nil)

	snap, err := sess.Join(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(sessions.StateJoined, snap.State)
	s.Empty(snap.Error)

	act, err := sess.Surface()
	s.Require().NoError(err)
	s.Equal("wss://rtc.example.com", act.ServerURL)
	s.Equal("at", act.AuthToken)
	s.Equal("rt", act.RoomToken)
}

func (s *SessionTestSuite) TestUnknownRoomIsTerminal() {
	s.mockResolver.EXPECT().
		Resolve(gomock.Any(), "demo-2").
		Return(&sessions.Liveness{Status: sessions.LivenessNotFound, CheckedAt: time.Now()})
	s.mockSink.EXPECT().Publish(gomock.Any(), gomock.Any()).AnyTimes()

	sess := s.newSession("demo-2")
	snap := sess.Resolve(s.ctx)
	s.Equal(sessions.StateNotFound, snap.State)

	// No token gateway expectation: joining an unknown room must never
	// issue a credential request.
	_, err := sess.Join(s.ctx, "alice")
	s.Require().Error(err)
	var ite *sessions.InvalidTransitionError
	s.ErrorAs(err, &ite)
	s.Equal(sessions.StateNotFound, ite.From)

	// Not retryable either; retry is reserved for fetch_error.
	_, err = sess.Retry(s.ctx)
	s.Error(err)
}

func (s *SessionTestSuite) TestFetchErrorRetryFetchesExactlyOnce() {
	gomock.InOrder(
		s.mockResolver.EXPECT().
			Resolve(gomock.Any(), "demo-1").
			Return(&sessions.Liveness{Status: sessions.LivenessFetchError, CheckedAt: time.Now()}),
		s.mockResolver.EXPECT().
			Resolve(gomock.Any(), "demo-1").
			Return(s.liveLiveness("demo-1")),
	)
	s.mockSink.EXPECT().Publish(gomock.Any(), gomock.Any()).AnyTimes()

	sess := s.newSession("demo-1")
	snap := sess.Resolve(s.ctx)
	s.Equal(sessions.StateFetchError, snap.State)
	s.NotEmpty(snap.Error)

	snap, err := sess.Retry(s.ctx)
	s.Require().NoError(err)
	s.Equal(sessions.StateAwaitingIdentity, snap.State)
	s.Empty(snap.Error)
}

func (s *SessionTestSuite) TestResolveIsIdempotentAfterSettling() {
	s.mockResolver.EXPECT().
		Resolve(gomock.Any(), "demo-1").
		Return(s.liveLiveness("demo-1")).
		Times(1)
	s.mockSink.EXPECT().Publish(gomock.Any(), gomock.Any()).AnyTimes()

	sess := s.newSession("demo-1")
	_ = sess.Resolve(s.ctx)
	// A second Resolve reads the settled state without re-fetching.
	snap := sess.Resolve(s.ctx)
	s.Equal(sessions.StateAwaitingIdentity, snap.State)
}

func (s *SessionTestSuite) TestJoinRequiresIdentity() {
	sess := s.newSession("demo-1")
	_, err := sess.Join(s.ctx, "   ")
	var ire *sessions.IdentityRequiredError
	s.ErrorAs(err, &ire)
}

func (s *SessionTestSuite) TestPartialCredentialIsJoinError() {
	cases := []struct {
		name string
		cred *gateway.Credential
		want sessions.State
	}{
		{"both tokens", &gateway.Credential{AuthToken: "at", RoomToken: "rt"}, sessions.StateJoined},
		{"missing room token", &gateway.Credential{AuthToken: "at"}, sessions.StateJoinError},
		{"missing auth token", &gateway.Credential{RoomToken: "rt"}, sessions.StateJoinError},
		{"both missing", &gateway.Credential{}, sessions.StateJoinError},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.mockResolver.EXPECT().
				Resolve(gomock.Any(), "demo-1").
				Return(s.liveLiveness("demo-1"))
			s.mockTokens.EXPECT().
				JoinStream(gomock.Any(), gomock.Any()).
				Return(tc.cred, nil)
			s.mockSink.EXPECT().Publish(gomock.Any(), gomock.Any()).AnyTimes()

			sess := s.newSession("demo-1")
			_ = sess.Resolve(s.ctx)
			snap, err := sess.Join(s.ctx, "alice")
			s.Require().NoError(err)
			s.Equal(tc.want, snap.State)

			if tc.want == sessions.StateJoinError {
				_, err := sess.Surface()
				s.Error(err)
				// Identity stays editable and the join is retryable.
				s.Equal("alice", snap.Identity)
			}
		})
	}
}

func (s *SessionTestSuite) TestJoinErrorIsRetryableWithoutReResolving() {
	s.mockResolver.EXPECT().
		Resolve(gomock.Any(), "demo-1").
		Return(s.liveLiveness("demo-1")).
		Times(1)
	gomock.InOrder(
		s.mockTokens.EXPECT().
			JoinStream(gomock.Any(), gomock.Any()).
			Return(nil, errors.New(gateway.ErrFailedRequest, "gateway down")),
		s.mockTokens.EXPECT().
			JoinStream(gomock.Any(), gomock.Any()).
			Return(&gateway.Credential{AuthToken: "at", RoomToken: "rt"}, nil),
	)
	s.mockSink.EXPECT().Publish(gomock.Any(), gomock.Any()).AnyTimes()

	sess := s.newSession("demo-1")
	_ = sess.Resolve(s.ctx)

	snap, err := sess.Join(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(sessions.StateJoinError, snap.State)

	snap, err = sess.Join(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(sessions.StateJoined, snap.State)
}

func (s *SessionTestSuite) TestSwitchRoomDiscardsCredential() {
	gomock.InOrder(
		s.mockResolver.EXPECT().
			Resolve(gomock.Any(), "demo-1").
			Return(s.liveLiveness("demo-1")),
		s.mockResolver.EXPECT().
			Resolve(gomock.Any(), "demo-2").
			Return(s.liveLiveness("demo-2")),
	)
	s.mockTokens.EXPECT().
		JoinStream(gomock.Any(), gomock.Any()).
		Return(&gateway.Credential{AuthToken: "at", RoomToken: "rt"}, nil)
	s.mockSink.EXPECT().Publish(gomock.Any(), gomock.Any()).AnyTimes()

	sess := s.newSession("demo-1")
	_ = sess.Resolve(s.ctx)
	_, err := sess.Join(s.ctx, "alice")
	s.Require().NoError(err)

	snap, err := sess.SwitchRoom(s.ctx, "demo-2")
	s.Require().NoError(err)
	s.Equal("demo-2", snap.RoomName)
	s.Equal(sessions.StateAwaitingIdentity, snap.State)
	s.Empty(snap.Identity)

	// The old credential must not leak into the new room.
	_, err = sess.Surface()
	s.Error(err)
}

func (s *SessionTestSuite) TestCloseDropsLateJoinResponse() {
	s.mockResolver.EXPECT().
		Resolve(gomock.Any(), "demo-1").
		Return(s.liveLiveness("demo-1"))
	s.mockSink.EXPECT().Publish(gomock.Any(), gomock.Any()).AnyTimes()

	sess := s.newSession("demo-1")
	_ = sess.Resolve(s.ctx)

	// The join response lands after Close; the credential must be dropped.
	s.mockTokens.EXPECT().
		JoinStream(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *gateway.JoinStreamRequest) (*gateway.Credential, error) {
			sess.Close()
			return &gateway.Credential{AuthToken: "at", RoomToken: "rt"}, nil
		})

	snap, err := sess.Join(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(sessions.StateClosed, snap.State)

	_, err = sess.Surface()
	s.Error(err)
}

func (s *SessionTestSuite) TestNotLiveBlocksJoin() {
	now := time.Now()
	s.mockResolver.EXPECT().
		Resolve(gomock.Any(), "demo-1").
		Return(&sessions.Liveness{
			Status: sessions.LivenessNotLive,
			Entry: &gateway.ScheduleEntry{
				RoomName:  "demo-1",
				StartTime: now.Add(time.Hour),
				EndTime:   now.Add(2 * time.Hour),
			},
			CheckedAt: now,
		})
	s.mockSink.EXPECT().Publish(gomock.Any(), gomock.Any()).AnyTimes()

	sess := s.newSession("demo-1")
	snap := sess.Resolve(s.ctx)
	s.Equal(sessions.StateNotLive, snap.State)
	// Schedule metadata is still surfaced for the countdown view.
	s.Require().NotNil(snap.Liveness.Entry)

	_, err := sess.Join(s.ctx, "alice")
	s.Error(err)
}
