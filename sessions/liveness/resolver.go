package liveness

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/imtaco/stream-orch-exp/internal/errors"
	"github.com/imtaco/stream-orch-exp/internal/gateway"
	"github.com/imtaco/stream-orch-exp/internal/log"
	"github.com/imtaco/stream-orch-exp/sessions"
)

// Resolver classifies rooms against their scheduled window. It performs one
// schedule lookup per call; per-page-view caching is the session's job, so a
// re-render never reaches this code. Concurrent lookups for the same room
// (many viewers landing on one watch URL) are collapsed via singleflight.
type Resolver struct {
	schedule sessions.ScheduleGateway
	clock    clockwork.Clock
	logger   *log.Logger
	sf       singleflight.Group
}

func NewResolver(schedule sessions.ScheduleGateway, logger *log.Logger) *Resolver {
	return NewResolverWithClock(schedule, clockwork.NewRealClock(), logger)
}

func NewResolverWithClock(
	schedule sessions.ScheduleGateway,
	clock clockwork.Clock,
	logger *log.Logger,
) *Resolver {
	if schedule == nil {
		panic("schedule gateway is required")
	}
	if clock == nil {
		panic("clock is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Resolver{
		schedule: schedule,
		clock:    clock,
		logger:   logger,
	}
}

// Resolve fetches the schedule entry for roomName and classifies it. Failures
// are folded into the status: not_found when no entry exists, fetch_error for
// transport or payload problems. The two must stay distinct; one is terminal,
// the other invites a retry.
func (r *Resolver) Resolve(ctx context.Context, roomName string) *sessions.Liveness {
	v, err, shared := r.sf.Do(roomName, func() (any, error) {
		// The flight may serve callers beyond the first one; they must
		// not inherit the first caller's cancellation.
		return r.schedule.RoomEntry(context.WithoutCancel(ctx), roomName)
	})
	if shared {
		r.logger.Debug("schedule lookup shared", log.String("room", roomName))
	}

	now := r.clock.Now()
	if err != nil {
		status := sessions.LivenessFetchError
		if errors.Is(err, gateway.ErrRoomNotScheduled) {
			status = sessions.LivenessNotFound
		} else {
			r.logger.Warn("schedule lookup failed",
				log.String("room", roomName),
				log.Error(err))
		}
		return &sessions.Liveness{
			Status:    status,
			CheckedAt: now,
		}
	}

	entry := v.(*gateway.ScheduleEntry)
	return &sessions.Liveness{
		Status:    classify(entry, now),
		Entry:     entry,
		CheckedAt: now,
	}
}

// classify treats both boundary instants as live: hosts start encoding at the
// boundary second, so the interval is inclusive on both ends.
func classify(entry *gateway.ScheduleEntry, now time.Time) sessions.LivenessStatus {
	if now.Before(entry.StartTime) || now.After(entry.EndTime) {
		return sessions.LivenessNotLive
	}
	return sessions.LivenessLive
}
