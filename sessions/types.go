package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/imtaco/stream-orch-exp/internal/gateway"
)

// Alias types from the gateway package for convenience
type ScheduleEntry = gateway.ScheduleEntry
type Credential = gateway.Credential
type IngressDetails = gateway.IngressDetails
type IngressType = gateway.IngressType
type StreamMetadata = gateway.StreamMetadata

// ScheduleGateway answers "what is the schedule entry for room X".
type ScheduleGateway interface {
	RoomEntry(ctx context.Context, roomName string) (*gateway.ScheduleEntry, error)
}

// TokenGateway issues room credentials; CreateStream also provisions the room.
type TokenGateway interface {
	JoinStream(ctx context.Context, req *gateway.JoinStreamRequest) (*gateway.Credential, error)
	CreateStream(ctx context.Context, req *gateway.CreateStreamRequest) (*gateway.Credential, error)
}

// IngressGateway provisions external-encoder endpoints.
type IngressGateway interface {
	CreateIngress(ctx context.Context, req *gateway.CreateIngressRequest) (*gateway.IngressDetails, error)
}

// LivenessResolver classifies a room name against its schedule window.
// It never returns an error: failures are folded into the Liveness status so
// callers always get a classification they can act on.
type LivenessResolver interface {
	Resolve(ctx context.Context, roomName string) *Liveness
}

// LivenessStatus is the classification of a room at a given instant.
type LivenessStatus string

const (
	LivenessUnknown LivenessStatus = "unknown"
	// LivenessNotFound: no schedule entry exists; the room will never work.
	LivenessNotFound LivenessStatus = "not_found"
	// LivenessNotLive: an entry exists but now is outside its window.
	LivenessNotLive LivenessStatus = "not_live"
	LivenessLive    LivenessStatus = "live"
	// LivenessFetchError: the lookup itself failed; worth retrying.
	LivenessFetchError LivenessStatus = "fetch_error"
)

// Liveness is a pure function of (schedule entry, instant); it is never
// persisted beyond the owning page view.
type Liveness struct {
	Status    LivenessStatus `json:"status"`
	Entry     *ScheduleEntry `json:"entry,omitempty"`
	CheckedAt time.Time      `json:"checkedAt"`
}

// State of the viewer join flow.
type State string

const (
	StateResolvingSchedule State = "resolving_schedule"
	StateNotFound          State = "not_found"
	StateNotLive           State = "not_live"
	StateFetchError        State = "fetch_error"
	StateAwaitingIdentity  State = "awaiting_identity"
	StateJoining           State = "joining"
	StateJoined            State = "joined"
	StateJoinError         State = "join_error"
	StateClosed            State = "closed"
)

// FlowState of a creation dialog (broadcast or ingress).
type FlowState string

const (
	FlowStateEditing  FlowState = "editing"
	FlowStateCreating FlowState = "creating"
	FlowStateCreated  FlowState = "created"
)

// SessionSnapshot is the read model of a watch session, shared by transport
// responses, the event stream, and the snapshot store. It never carries the
// credential.
type SessionSnapshot struct {
	SessionID string    `json:"sessionId"`
	RoomName  string    `json:"roomName"`
	State     State     `json:"state"`
	Liveness  *Liveness `json:"liveness,omitempty"`
	Identity  string    `json:"identity,omitempty"`
	Error     string    `json:"error,omitempty"`
	WatchURL  string    `json:"watchUrl,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SurfaceActivation is the only data handed across the room-surface boundary:
// server URL + room token for the player, auth token for the chat sidecar.
type SurfaceActivation struct {
	ServerURL string `json:"serverUrl"`
	RoomToken string `json:"roomToken"`
	AuthToken string `json:"authToken"`
}

// BroadcastSnapshot is the read model of a broadcast creation dialog.
type BroadcastSnapshot struct {
	FlowID             string    `json:"flowId"`
	State              FlowState `json:"state"`
	RoomName           string    `json:"roomName"`
	Identity           string    `json:"identity"`
	EnableChat         bool      `json:"enableChat"`
	AllowParticipation bool      `json:"allowParticipation"`
	Error              string    `json:"error,omitempty"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// IngressSnapshot is the read model of an ingress creation dialog. Endpoint
// URL and stream key are shown to the creator once provisioned; the viewer
// credential stays inside the flow.
type IngressSnapshot struct {
	FlowID             string      `json:"flowId"`
	State              FlowState   `json:"state"`
	RoomName           string      `json:"roomName"`
	Identity           string      `json:"identity"`
	IngressType        IngressType `json:"ingressType"`
	EnableChat         bool        `json:"enableChat"`
	AllowParticipation bool        `json:"allowParticipation"`
	URL                string      `json:"url,omitempty"`
	StreamKey          string      `json:"streamKey,omitempty"`
	Error              string      `json:"error,omitempty"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// TransitionSink observes watch-session state transitions (event hub,
// snapshot store). Publish must not block the state machine.
type TransitionSink interface {
	Publish(ctx context.Context, snap *SessionSnapshot)
}

// SnapshotStore persists session snapshots for cross-replica observability.
type SnapshotStore interface {
	Save(ctx context.Context, snap *SessionSnapshot) error
	Get(ctx context.Context, sessionID string) (*SessionSnapshot, error)
	List(ctx context.Context) ([]*SessionSnapshot, error)
}

// Custom error types
type RoomNotScheduledError struct {
	RoomName string
}

func (e *RoomNotScheduledError) Error() string {
	return fmt.Sprintf("Room %s is not scheduled", e.RoomName)
}

type ScheduleUnavailableError struct {
	RoomName string
	Err      error
}

func (e *ScheduleUnavailableError) Error() string {
	return fmt.Sprintf("Could not verify schedule for room %s: %v", e.RoomName, e.Err)
}

func (e *ScheduleUnavailableError) Unwrap() error { return e.Err }

type InvalidTransitionError struct {
	From   State
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("Action %s is not allowed in state %s", e.Action, e.From)
}

type InvalidFlowStateError struct {
	From   FlowState
	Action string
}

func (e *InvalidFlowStateError) Error() string {
	return fmt.Sprintf("Action %s is not allowed while the dialog is %s", e.Action, e.From)
}

type IdentityRequiredError struct{}

func (e *IdentityRequiredError) Error() string {
	return "A non-empty display name is required"
}

type FieldsRequiredError struct {
	Fields []string
}

func (e *FieldsRequiredError) Error() string {
	return fmt.Sprintf("Missing required fields: %v", e.Fields)
}

type SessionNotFoundError struct {
	SessionID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("Session %s not found", e.SessionID)
}
