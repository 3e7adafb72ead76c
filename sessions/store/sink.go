package store

import (
	"context"
	"time"

	"github.com/imtaco/stream-orch-exp/internal/log"
	"github.com/imtaco/stream-orch-exp/sessions"
)

// saveTimeout caps each snapshot write. Snapshots are observability data;
// dropping one during a Redis outage beats piling up retry goroutines.
const saveTimeout = 10 * time.Second

// storeSink mirrors every state transition into the snapshot store. Writes
// happen off the caller's goroutine so a slow Redis never stalls a session
// state machine.
type storeSink struct {
	store  sessions.SnapshotStore
	logger *log.Logger
}

func NewSink(store sessions.SnapshotStore, logger *log.Logger) sessions.TransitionSink {
	if store == nil {
		panic("snapshot store is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &storeSink{
		store:  store,
		logger: logger,
	}
}

func (s *storeSink) Publish(ctx context.Context, snap *sessions.SessionSnapshot) {
	// Detach from the request deadline so the write survives the response
	// being sent, then re-bound it so the goroutine cannot outlive the
	// outage it is retrying through.
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, saveTimeout)
		defer cancel()
		if err := s.store.Save(ctx, snap); err != nil {
			s.logger.Warn("Failed to persist session snapshot",
				log.String("sessionId", snap.SessionID),
				log.Error(err))
		}
	}()
}
