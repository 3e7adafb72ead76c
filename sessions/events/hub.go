package events

import (
	"context"

	"github.com/google/uuid"

	"github.com/imtaco/stream-orch-exp/internal/log"
	xsync "github.com/imtaco/stream-orch-exp/internal/sync"
	"github.com/imtaco/stream-orch-exp/sessions"
)

const subscriberBuffer = 16

// Subscription is a live feed of state transitions for one session.
type Subscription struct {
	id        string
	sessionID string
	ch        chan *sessions.SessionSnapshot
	cancel    func()
}

// C delivers snapshots in transition order. The channel closes when the
// subscription is cancelled.
func (s *Subscription) C() <-chan *sessions.SessionSnapshot {
	return s.ch
}

func (s *Subscription) Close() {
	s.cancel()
}

// Hub fans session transitions out to websocket subscribers. It implements
// TransitionSink; Publish never blocks the state machine, a subscriber that
// stops draining loses events rather than stalling everyone else.
type Hub struct {
	subs   *xsync.Map[string, *xsync.Map[string, *Subscription]]
	logger *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		panic("logger is required")
	}
	return &Hub{
		subs:   xsync.NewMap[string, *xsync.Map[string, *Subscription]](),
		logger: logger,
	}
}

// Subscribe registers interest in one session's transitions.
func (h *Hub) Subscribe(sessionID string) *Subscription {
	perSession, _ := h.subs.LoadOrStore(sessionID, xsync.NewMap[string, *Subscription]())

	sub := &Subscription{
		id:        uuid.NewString(),
		sessionID: sessionID,
		ch:        make(chan *sessions.SessionSnapshot, subscriberBuffer),
	}
	sub.cancel = func() {
		if _, loaded := perSession.LoadAndDelete(sub.id); loaded {
			close(sub.ch)
		}
	}
	perSession.Store(sub.id, sub)
	return sub
}

// Publish implements sessions.TransitionSink.
func (h *Hub) Publish(_ context.Context, snap *sessions.SessionSnapshot) {
	perSession, ok := h.subs.Load(snap.SessionID)
	if !ok {
		return
	}

	perSession.Range(func(id string, sub *Subscription) bool {
		select {
		case sub.ch <- snap:
		default:
			h.logger.Debug("Dropping event for slow subscriber",
				log.String("sessionId", snap.SessionID),
				log.String("subscriberId", id))
		}
		return true
	})
}

// CloseSession cancels every subscription for the session, typically after
// the session itself closed or was evicted.
func (h *Hub) CloseSession(sessionID string) {
	perSession, loaded := h.subs.LoadAndDelete(sessionID)
	if !loaded {
		return
	}
	// cancel re-enters the per-session map, so it must run outside Range.
	var subs []*Subscription
	perSession.Range(func(_ string, sub *Subscription) bool {
		subs = append(subs, sub)
		return true
	})
	for _, sub := range subs {
		sub.Close()
	}
}
