package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/imtaco/stream-orch-exp/internal/constants"
	"github.com/imtaco/stream-orch-exp/internal/errors"
	"github.com/imtaco/stream-orch-exp/internal/gateway"
	"github.com/imtaco/stream-orch-exp/internal/log"
	"github.com/imtaco/stream-orch-exp/sessions"
)

const (
	msgRoomNotScheduled    = "This room is not scheduled, check for typos."
	msgScheduleCheckFailed = "Failed to verify room existence. Please try again later."
	msgCreateFailed        = "Failed to create the stream. Please try again."
)

// BroadcastForm holds the dialog fields for a browser-based broadcast.
type BroadcastForm struct {
	RoomName           string
	Identity           string
	EnableChat         bool
	AllowParticipation bool
}

func defaultBroadcastForm() BroadcastForm {
	return BroadcastForm{
		EnableChat:         constants.DefaultEnableChat,
		AllowParticipation: constants.DefaultAllowParticipation,
	}
}

// BroadcastFlow drives the "go live from the browser" dialog. The schedule
// existence check always precedes provisioning, in that order, sequentially:
// creating a room nobody scheduled would orphan it.
type BroadcastFlow struct {
	id       string
	schedule sessions.ScheduleGateway
	tokens   sessions.TokenGateway
	logger   *log.Logger

	mu         sync.Mutex
	gen        uint64
	form       BroadcastForm
	state      sessions.FlowState
	errMsg     string
	credential *sessions.Credential
	updatedAt  time.Time
}

func NewBroadcastFlow(
	id string,
	schedule sessions.ScheduleGateway,
	tokens sessions.TokenGateway,
	logger *log.Logger,
) *BroadcastFlow {
	if schedule == nil {
		panic("schedule gateway is required")
	}
	if tokens == nil {
		panic("token gateway is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &BroadcastFlow{
		id:        id,
		schedule:  schedule,
		tokens:    tokens,
		logger:    logger,
		form:      defaultBroadcastForm(),
		state:     sessions.FlowStateEditing,
		updatedAt: time.Now(),
	}
}

func (f *BroadcastFlow) ID() string { return f.id }

// Update replaces the dialog fields. Allowed only while editing.
func (f *BroadcastFlow) Update(form BroadcastForm) (*sessions.BroadcastSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != sessions.FlowStateEditing {
		return nil, &sessions.InvalidFlowStateError{From: f.state, Action: "update"}
	}
	f.form = form
	return f.snapshotLocked(), nil
}

// GoLive runs check-then-create and returns the host credential. On any
// failure the dialog stays open and editable with a form-level error.
func (f *BroadcastFlow) GoLive(ctx context.Context) (*sessions.Credential, error) {
	f.mu.Lock()
	if f.state != sessions.FlowStateEditing {
		defer f.mu.Unlock()
		return nil, &sessions.InvalidFlowStateError{From: f.state, Action: "go live"}
	}
	if err := requireFields(f.form.RoomName, f.form.Identity); err != nil {
		defer f.mu.Unlock()
		return nil, err
	}
	f.state = sessions.FlowStateCreating
	f.errMsg = ""
	gen := f.gen
	form := f.form
	f.mu.Unlock()

	// Step 1: the room must already be scheduled.
	if _, err := f.schedule.RoomEntry(ctx, form.RoomName); err != nil {
		if errors.Is(err, gateway.ErrRoomNotScheduled) {
			provisionBlocked.Add(ctx, 1)
			return nil, f.fail(gen, msgRoomNotScheduled,
				&sessions.RoomNotScheduledError{RoomName: form.RoomName})
		}
		provisionBlocked.Add(ctx, 1)
		return nil, f.fail(gen, msgScheduleCheckFailed,
			&sessions.ScheduleUnavailableError{RoomName: form.RoomName, Err: err})
	}

	// Step 2: provision the stream and collect the host credential.
	cred, err := f.tokens.CreateStream(ctx, &gateway.CreateStreamRequest{
		RoomName: form.RoomName,
		Metadata: gateway.StreamMetadata{
			CreatorIdentity:    form.Identity,
			EnableChat:         form.EnableChat,
			AllowParticipation: form.AllowParticipation,
		},
	})
	if err != nil {
		f.logger.Warn("Create stream failed",
			log.String("flowId", f.id),
			log.String("room", form.RoomName),
			log.Error(err))
		return nil, f.fail(gen, msgCreateFailed, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != gen {
		// Cancelled mid-flight; the credential is dropped, not surfaced.
		return nil, &sessions.InvalidFlowStateError{From: f.state, Action: "go live"}
	}
	f.state = sessions.FlowStateCreated
	f.credential = cred
	f.updatedAt = time.Now()
	broadcastsCreated.Add(ctx, 1)
	return cred, nil
}

// Cancel resets every field to its default and clears the error in one
// critical section, so no observer can see a half-reset dialog.
func (f *BroadcastFlow) Cancel() *sessions.BroadcastSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.form = defaultBroadcastForm()
	f.errMsg = ""
	f.credential = nil
	f.state = sessions.FlowStateEditing
	return f.snapshotLocked()
}

func (f *BroadcastFlow) Snapshot() *sessions.BroadcastSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Close is called on registry eviction.
func (f *BroadcastFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.credential = nil
}

func (f *BroadcastFlow) fail(gen uint64, msg string, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen == gen {
		f.state = sessions.FlowStateEditing
		f.errMsg = msg
		f.updatedAt = time.Now()
	}
	return err
}

func (f *BroadcastFlow) snapshotLocked() *sessions.BroadcastSnapshot {
	f.updatedAt = time.Now()
	return &sessions.BroadcastSnapshot{
		FlowID:             f.id,
		State:              f.state,
		RoomName:           f.form.RoomName,
		Identity:           f.form.Identity,
		EnableChat:         f.form.EnableChat,
		AllowParticipation: f.form.AllowParticipation,
		Error:              f.errMsg,
		UpdatedAt:          f.updatedAt,
	}
}

func requireFields(roomName, identity string) error {
	var missing []string
	if roomName == "" {
		missing = append(missing, "room_name")
	}
	if identity == "" {
		missing = append(missing, "identity")
	}
	if len(missing) > 0 {
		return &sessions.FieldsRequiredError{Fields: missing}
	}
	return nil
}
