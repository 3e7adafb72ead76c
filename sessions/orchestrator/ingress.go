package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/imtaco/stream-orch-exp/internal/constants"
	"github.com/imtaco/stream-orch-exp/internal/errors"
	"github.com/imtaco/stream-orch-exp/internal/gateway"
	"github.com/imtaco/stream-orch-exp/internal/log"
	"github.com/imtaco/stream-orch-exp/internal/utils"
	"github.com/imtaco/stream-orch-exp/sessions"
)

const msgProvisionFailed = "Failed to provision the ingress. Please try again."

// IngressForm holds the dialog fields for an external-encoder ingress.
type IngressForm struct {
	RoomName           string
	Identity           string
	IngressType        sessions.IngressType
	EnableChat         bool
	AllowParticipation bool
}

func defaultIngressForm() IngressForm {
	return IngressForm{
		IngressType:        gateway.IngressTypeRTMP,
		EnableChat:         constants.DefaultEnableChat,
		AllowParticipation: constants.DefaultAllowParticipation,
	}
}

// IngressFlow drives the "stream from an external encoder" dialog. Same
// check-then-create discipline as BroadcastFlow, plus the endpoint details
// to paste into OBS and a viewer credential for watching one's own ingest.
type IngressFlow struct {
	id       string
	schedule sessions.ScheduleGateway
	ingress  sessions.IngressGateway
	logger   *log.Logger

	mu        sync.Mutex
	gen       uint64
	form      IngressForm
	state     sessions.FlowState
	errMsg    string
	details   *sessions.IngressDetails
	updatedAt time.Time
}

func NewIngressFlow(
	id string,
	schedule sessions.ScheduleGateway,
	ingress sessions.IngressGateway,
	logger *log.Logger,
) *IngressFlow {
	if schedule == nil {
		panic("schedule gateway is required")
	}
	if ingress == nil {
		panic("ingress gateway is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &IngressFlow{
		id:        id,
		schedule:  schedule,
		ingress:   ingress,
		logger:    logger,
		form:      defaultIngressForm(),
		state:     sessions.FlowStateEditing,
		updatedAt: time.Now(),
	}
}

func (f *IngressFlow) ID() string { return f.id }

// Update replaces the dialog fields. Allowed only while editing.
func (f *IngressFlow) Update(form IngressForm) (*sessions.IngressSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != sessions.FlowStateEditing {
		return nil, &sessions.InvalidFlowStateError{From: f.state, Action: "update"}
	}
	if form.IngressType == "" {
		form.IngressType = gateway.IngressTypeRTMP
	}
	f.form = form
	return f.snapshotLocked(), nil
}

// Provision runs check-then-create and returns the ingress endpoint details.
// On failure the dialog stays open and editable with a form-level error.
func (f *IngressFlow) Provision(ctx context.Context) (*sessions.IngressDetails, error) {
	f.mu.Lock()
	if f.state != sessions.FlowStateEditing {
		defer f.mu.Unlock()
		return nil, &sessions.InvalidFlowStateError{From: f.state, Action: "provision"}
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

	// Step 2: provision the ingress endpoint.
	details, err := f.ingress.CreateIngress(ctx, &gateway.CreateIngressRequest{
		RoomName:    form.RoomName,
		IngressType: form.IngressType,
		Metadata: gateway.StreamMetadata{
			CreatorIdentity:    form.Identity,
			EnableChat:         form.EnableChat,
			AllowParticipation: form.AllowParticipation,
		},
	})
	if err != nil {
		f.logger.Warn("Create ingress failed",
			log.String("flowId", f.id),
			log.String("room", form.RoomName),
			log.Error(err))
		return nil, f.fail(gen, msgProvisionFailed, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != gen {
		return nil, &sessions.InvalidFlowStateError{From: f.state, Action: "provision"}
	}
	f.state = sessions.FlowStateCreated
	f.details = details
	f.updatedAt = time.Now()
	ingressesCreated.Add(ctx, 1)
	return details, nil
}

// ViewerCredential returns the credential issued alongside the ingress, so
// the creator can watch their own ingest without a second join round trip.
func (f *IngressFlow) ViewerCredential() (*sessions.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != sessions.FlowStateCreated || f.details == nil || !f.details.Credential.Complete() {
		return nil, &sessions.InvalidFlowStateError{From: f.state, Action: "viewer credential"}
	}
	return utils.Ptr(f.details.Credential), nil
}

// Cancel resets every field to its default, including the ingress type back
// to rtmp, in one critical section.
func (f *IngressFlow) Cancel() *sessions.IngressSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.form = defaultIngressForm()
	f.errMsg = ""
	f.details = nil
	f.state = sessions.FlowStateEditing
	return f.snapshotLocked()
}

func (f *IngressFlow) Snapshot() *sessions.IngressSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Close is called on registry eviction.
func (f *IngressFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.details = nil
}

func (f *IngressFlow) fail(gen uint64, msg string, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen == gen {
		f.state = sessions.FlowStateEditing
		f.errMsg = msg
		f.updatedAt = time.Now()
	}
	return err
}

func (f *IngressFlow) snapshotLocked() *sessions.IngressSnapshot {
	f.updatedAt = time.Now()
	snap := &sessions.IngressSnapshot{
		FlowID:             f.id,
		State:              f.state,
		RoomName:           f.form.RoomName,
		Identity:           f.form.Identity,
		IngressType:        f.form.IngressType,
		EnableChat:         f.form.EnableChat,
		AllowParticipation: f.form.AllowParticipation,
		Error:              f.errMsg,
		UpdatedAt:          f.updatedAt,
	}
	if f.details != nil {
		snap.URL = f.details.URL
		snap.StreamKey = f.details.StreamKey
	}
	return snap
}
