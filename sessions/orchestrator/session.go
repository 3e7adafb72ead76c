package orchestrator

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/imtaco/stream-orch-exp/internal/gateway"
	"github.com/imtaco/stream-orch-exp/internal/log"
	"github.com/imtaco/stream-orch-exp/sessions"
)

const (
	msgScheduleFetchFailed = "Couldn't load the schedule for this room. Please try again."
	msgJoinFailed          = "Failed to join the stream. Please try again."
)

// Deps wires a Session to its collaborators. ServerURL and PublicBaseURL come
// from explicit configuration; the orchestrator reads no ambient state.
type Deps struct {
	Resolver      sessions.LivenessResolver
	Tokens        sessions.TokenGateway
	Sinks         []sessions.TransitionSink
	ServerURL     string
	PublicBaseURL string
	Logger        *log.Logger
}

// Session is the per-page-view state machine that takes a viewer from
// "arrived at a room URL" to "holding a valid credential for an active room".
// All mutation goes through one mutex; gateway calls happen outside it, and a
// generation counter drops responses that land after a room switch or close.
type Session struct {
	id   string
	deps Deps

	mu         sync.Mutex
	gen        uint64
	roomName   string
	state      sessions.State
	liveness   *sessions.Liveness
	identity   string
	credential *sessions.Credential
	errMsg     string
	updatedAt  time.Time
}

func NewSession(id, roomName string, deps Deps) *Session {
	if deps.Resolver == nil {
		panic("liveness resolver is required")
	}
	if deps.Tokens == nil {
		panic("token gateway is required")
	}
	if deps.Logger == nil {
		panic("logger is required")
	}
	return &Session{
		id:        id,
		deps:      deps,
		roomName:  roomName,
		state:     sessions.StateResolvingSchedule,
		updatedAt: time.Now(),
	}
}

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Resolve performs the single schedule lookup this page view is entitled to.
// Reading the snapshot afterwards never re-fetches; only SwitchRoom or Retry
// re-enter resolving_schedule.
func (s *Session) Resolve(ctx context.Context) *sessions.SessionSnapshot {
	s.mu.Lock()
	if s.state != sessions.StateResolvingSchedule {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	gen := s.gen
	roomName := s.roomName
	s.mu.Unlock()

	lv := s.deps.Resolver.Resolve(ctx, roomName)

	s.mu.Lock()
	if s.gen != gen {
		// Stale response: the room changed or the session closed mid-fetch.
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	s.liveness = lv
	switch lv.Status {
	case sessions.LivenessLive:
		s.state = sessions.StateAwaitingIdentity
		livenessResolvedLive.Add(ctx, 1)
	case sessions.LivenessNotLive:
		s.state = sessions.StateNotLive
		livenessResolvedNotLive.Add(ctx, 1)
	case sessions.LivenessNotFound:
		s.state = sessions.StateNotFound
		livenessResolvedNotFound.Add(ctx, 1)
	default:
		s.state = sessions.StateFetchError
		s.errMsg = msgScheduleFetchFailed
		livenessResolveErrors.Add(ctx, 1)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(ctx, snap)
	return snap
}

// Retry re-issues exactly one schedule fetch. Only valid after fetch_error;
// not_found is terminal and not retryable.
func (s *Session) Retry(ctx context.Context) (*sessions.SessionSnapshot, error) {
	s.mu.Lock()
	if s.state != sessions.StateFetchError {
		defer s.mu.Unlock()
		return nil, &sessions.InvalidTransitionError{From: s.state, Action: "retry"}
	}
	s.state = sessions.StateResolvingSchedule
	s.errMsg = ""
	s.mu.Unlock()

	return s.Resolve(ctx), nil
}

// Join submits the viewer identity and trades it for a room credential.
// Whatever shape the failure takes, the state lands on exactly one of
// joined / join_error; join_error keeps the identity editable and is
// retryable without re-resolving liveness.
func (s *Session) Join(ctx context.Context, identity string) (*sessions.SessionSnapshot, error) {
	if strings.TrimSpace(identity) == "" {
		return nil, &sessions.IdentityRequiredError{}
	}

	s.mu.Lock()
	switch s.state {
	case sessions.StateAwaitingIdentity, sessions.StateJoinError:
	default:
		defer s.mu.Unlock()
		return nil, &sessions.InvalidTransitionError{From: s.state, Action: "join"}
	}
	s.identity = identity
	s.errMsg = ""
	s.state = sessions.StateJoining
	gen := s.gen
	roomName := s.roomName
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(ctx, snap)

	cred, err := s.deps.Tokens.JoinStream(ctx, &gateway.JoinStreamRequest{
		RoomName: roomName,
		Identity: identity,
	})

	s.mu.Lock()
	if s.gen != gen || s.state != sessions.StateJoining {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}
	if err != nil || !cred.Complete() {
		s.state = sessions.StateJoinError
		s.errMsg = msgJoinFailed
		s.deps.Logger.Warn("Join request failed",
			log.String("sessionId", s.id),
			log.String("room", roomName),
			log.Error(err))
		joinsFailed.Add(ctx, 1)
	} else {
		s.credential = cred
		s.state = sessions.StateJoined
		joinsSucceeded.Add(ctx, 1)
	}
	snap = s.snapshotLocked()
	s.mu.Unlock()

	s.publish(ctx, snap)
	return snap, nil
}

// SwitchRoom discards any held credential and restarts at resolving_schedule
// for the new room. The generation bump invalidates in-flight responses tied
// to the old room.
func (s *Session) SwitchRoom(ctx context.Context, roomName string) (*sessions.SessionSnapshot, error) {
	s.mu.Lock()
	if s.state == sessions.StateClosed {
		defer s.mu.Unlock()
		return nil, &sessions.InvalidTransitionError{From: s.state, Action: "switch room"}
	}
	s.gen++
	s.roomName = roomName
	s.credential = nil
	s.identity = ""
	s.errMsg = ""
	s.liveness = nil
	s.state = sessions.StateResolvingSchedule
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(ctx, snap)

	return s.Resolve(ctx), nil
}

// Surface returns the room-surface activation payload. Available only in
// joined, and only when both tokens are non-empty; nothing else ever crosses
// that boundary.
func (s *Session) Surface() (*sessions.SurfaceActivation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != sessions.StateJoined || !s.credential.Complete() {
		return nil, &sessions.InvalidTransitionError{From: s.state, Action: "activate surface"}
	}
	return &sessions.SurfaceActivation{
		ServerURL: s.deps.ServerURL,
		RoomToken: s.credential.RoomToken,
		AuthToken: s.credential.AuthToken,
	}, nil
}

// Snapshot reads the current state without side effects.
func (s *Session) Snapshot() *sessions.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close tears the session down (navigation away, registry eviction). The
// credential is discarded and late responses are dropped via the generation
// bump.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == sessions.StateClosed {
		s.mu.Unlock()
		return
	}
	s.gen++
	s.credential = nil
	s.state = sessions.StateClosed
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(context.Background(), snap)
}

func (s *Session) snapshotLocked() *sessions.SessionSnapshot {
	s.updatedAt = time.Now()
	return &sessions.SessionSnapshot{
		SessionID: s.id,
		RoomName:  s.roomName,
		State:     s.state,
		Liveness:  s.liveness,
		Identity:  s.identity,
		Error:     s.errMsg,
		WatchURL:  s.watchURL(),
		UpdatedAt: s.updatedAt,
	}
}

func (s *Session) watchURL() string {
	if s.deps.PublicBaseURL == "" {
		return ""
	}
	return strings.TrimRight(s.deps.PublicBaseURL, "/") + "/watch/" + url.PathEscape(s.roomName)
}

func (s *Session) publish(ctx context.Context, snap *sessions.SessionSnapshot) {
	for _, sink := range s.deps.Sinks {
		sink.Publish(ctx, snap)
	}
}
