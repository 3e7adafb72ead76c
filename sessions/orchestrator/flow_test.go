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

type FlowTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockSchedule *mocks.MockScheduleGateway
	mockTokens   *mocks.MockTokenGateway
	mockIngress  *mocks.MockIngressGateway
	ctx          context.Context
}

func TestFlowSuite(t *testing.T) {
	suite.Run(t, new(FlowTestSuite))
}

func (s *FlowTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockSchedule = mocks.NewMockScheduleGateway(s.ctrl)
	s.mockTokens = mocks.NewMockTokenGateway(s.ctrl)
	s.mockIngress = mocks.NewMockIngressGateway(s.ctrl)
	s.ctx = context.Background()
}

func (s *FlowTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *FlowTestSuite) newBroadcast() *BroadcastFlow {
	return NewBroadcastFlow("bflow-1", s.mockSchedule, s.mockTokens, log.NewNop())
}

func (s *FlowTestSuite) newIngress() *IngressFlow {
	return NewIngressFlow("iflow-1", s.mockSchedule, s.mockIngress, log.NewNop())
}

func (s *FlowTestSuite) scheduledEntry(room string) *gateway.ScheduleEntry {
	now := time.Now()
	return &gateway.ScheduleEntry{
		RoomName:  room,
		StartTime: now.Add(-time.Minute),
		EndTime:   now.Add(time.Hour),
	}
}

func (s *FlowTestSuite) TestBroadcastDefaults() {
	snap := s.newBroadcast().Snapshot()
	s.Equal(sessions.FlowStateEditing, snap.State)
	s.Empty(snap.RoomName)
	s.Empty(snap.Identity)
	s.True(snap.EnableChat)
	s.True(snap.AllowParticipation)
}

func (s *FlowTestSuite) TestBroadcastGoLive() {
	s.mockSchedule.EXPECT().
		RoomEntry(gomock.Any(), "demo-1").
		Return(s.scheduledEntry("demo-1"), nil)
	s.mockTokens.EXPECT().
		CreateStream(gomock.Any(), &gateway.CreateStreamRequest{
			RoomName: "demo-1",
			Metadata: gateway.StreamMetadata{
				CreatorIdentity:    "alice",
				EnableChat:         true,
				AllowParticipation: false,
			},
		}).
		Return(&gateway.Credential{AuthToken: "at", RoomToken: "rt"}, nil)

	flow := s.newBroadcast()
	_, err := flow.Update(BroadcastForm{
		RoomName:           "demo-1",
		Identity:           "alice",
		EnableChat:         true,
		AllowParticipation: false,
	})
	s.Require().NoError(err)

	cred, err := flow.GoLive(s.ctx)
	s.Require().NoError(err)
	s.True(cred.Complete())
	s.Equal(sessions.FlowStateCreated, flow.Snapshot().State)
}

func (s *FlowTestSuite) TestBroadcastUnscheduledRoomNeverProvisions() {
	s.mockSchedule.EXPECT().
		RoomEntry(gomock.Any(), "typo-room").
		Return(nil, errors.New(gateway.ErrRoomNotScheduled, "no entry"))
	// No CreateStream expectation: the existence check failing means the
	// provisioning endpoint is never called.

	flow := s.newBroadcast()
	_, err := flow.Update(BroadcastForm{RoomName: "typo-room", Identity: "alice"})
	s.Require().NoError(err)

	_, err = flow.GoLive(s.ctx)
	var rnse *sessions.RoomNotScheduledError
	s.ErrorAs(err, &rnse)
	s.Equal("typo-room", rnse.RoomName)

	snap := flow.Snapshot()
	s.Equal(sessions.FlowStateEditing, snap.State)
	s.Equal("This room is not scheduled, check for typos.", snap.Error)
	// Fields are preserved for correction.
	s.Equal("typo-room", snap.RoomName)
}

func (s *FlowTestSuite) TestBroadcastScheduleLookupFailureNeverProvisions() {
	s.mockSchedule.EXPECT().
		RoomEntry(gomock.Any(), "demo-1").
		Return(nil, errors.New(gateway.ErrFailedRequest, "connection refused"))

	flow := s.newBroadcast()
	_, err := flow.Update(BroadcastForm{RoomName: "demo-1", Identity: "alice"})
	s.Require().NoError(err)

	_, err = flow.GoLive(s.ctx)
	var sue *sessions.ScheduleUnavailableError
	s.ErrorAs(err, &sue)

	snap := flow.Snapshot()
	s.Equal(sessions.FlowStateEditing, snap.State)
	s.Equal("Failed to verify room existence. Please try again later.", snap.Error)
}

func (s *FlowTestSuite) TestBroadcastRequiresFields() {
	flow := s.newBroadcast()
	_, err := flow.GoLive(s.ctx)
	var fre *sessions.FieldsRequiredError
	s.Require().ErrorAs(err, &fre)
	s.ElementsMatch([]string{"room_name", "identity"}, fre.Fields)
}

func (s *FlowTestSuite) TestBroadcastCancelResetsEverything() {
	s.mockSchedule.EXPECT().
		RoomEntry(gomock.Any(), "typo-room").
		Return(nil, errors.New(gateway.ErrRoomNotScheduled, "no entry"))

	flow := s.newBroadcast()
	_, err := flow.Update(BroadcastForm{
		RoomName:           "typo-room",
		Identity:           "alice",
		EnableChat:         false,
		AllowParticipation: false,
	})
	s.Require().NoError(err)
	_, _ = flow.GoLive(s.ctx)

	snap := flow.Cancel()
	s.Equal(sessions.FlowStateEditing, snap.State)
	s.Empty(snap.RoomName)
	s.Empty(snap.Identity)
	s.True(snap.EnableChat)
	s.True(snap.AllowParticipation)
	s.Empty(snap.Error)
}

func (s *FlowTestSuite) TestIngressDefaultsToRTMP() {
	snap := s.newIngress().Snapshot()
	s.Equal(gateway.IngressTypeRTMP, snap.IngressType)
	s.True(snap.EnableChat)
	s.True(snap.AllowParticipation)
}

func (s *FlowTestSuite) TestIngressProvision() {
	s.mockSchedule.EXPECT().
		RoomEntry(gomock.Any(), "demo-1").
		Return(s.scheduledEntry("demo-1"), nil)
	s.mockIngress.EXPECT().
		CreateIngress(gomock.Any(), &gateway.CreateIngressRequest{
			RoomName:    "demo-1",
			IngressType: gateway.IngressTypeWHIP,
			Metadata: gateway.StreamMetadata{
				CreatorIdentity:    "alice",
				EnableChat:         true,
				AllowParticipation: true,
			},
		}).
		Return(&gateway.IngressDetails{
			URL:       "https://whip.example.com/w",
			StreamKey: "sk-1",
			Credential: gateway.Credential{
				AuthToken: "at",
				RoomToken: "rt",
			},
		}, nil)

	flow := s.newIngress()
	_, err := flow.Update(IngressForm{
		RoomName:           "demo-1",
		Identity:           "alice",
		IngressType:        gateway.IngressTypeWHIP,
		EnableChat:         true,
		AllowParticipation: true,
	})
	s.Require().NoError(err)

	details, err := flow.Provision(s.ctx)
	s.Require().NoError(err)
	s.Equal("https://whip.example.com/w", details.URL)
	s.Equal("sk-1", details.StreamKey)

	snap := flow.Snapshot()
	s.Equal(sessions.FlowStateCreated, snap.State)
	s.Equal("sk-1", snap.StreamKey)

	cred, err := flow.ViewerCredential()
	s.Require().NoError(err)
	s.True(cred.Complete())
}

func (s *FlowTestSuite) TestIngressUnscheduledRoomNeverProvisions() {
	s.mockSchedule.EXPECT().
		RoomEntry(gomock.Any(), "typo-room").
		Return(nil, errors.New(gateway.ErrRoomNotScheduled, "no entry"))

	flow := s.newIngress()
	_, err := flow.Update(IngressForm{RoomName: "typo-room", Identity: "alice"})
	s.Require().NoError(err)

	_, err = flow.Provision(s.ctx)
	var rnse *sessions.RoomNotScheduledError
	s.ErrorAs(err, &rnse)
	s.Equal(sessions.FlowStateEditing, flow.Snapshot().State)
}

func (s *FlowTestSuite) TestIngressViewerCredentialOnlyWhenCreated() {
	flow := s.newIngress()
	_, err := flow.ViewerCredential()
	var ifse *sessions.InvalidFlowStateError
	s.ErrorAs(err, &ifse)
}

func (s *FlowTestSuite) TestIngressCancelResetsTypeToRTMP() {
	flow := s.newIngress()
	_, err := flow.Update(IngressForm{
		RoomName:    "demo-1",
		Identity:    "alice",
		IngressType: gateway.IngressTypeWHIP,
	})
	s.Require().NoError(err)

	snap := flow.Cancel()
	s.Equal(gateway.IngressTypeRTMP, snap.IngressType)
	s.Empty(snap.RoomName)
	s.Empty(snap.Identity)
	s.True(snap.EnableChat)
	s.True(snap.AllowParticipation)
}
