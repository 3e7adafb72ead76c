package gateway

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/imtaco/stream-orch-exp/internal/errors"
	"github.com/imtaco/stream-orch-exp/internal/log"
)

// ScheduleClient answers "what is the schedule entry for room X" against the
// schedule gateway. It performs no caching; callers own fetch frequency.
type ScheduleClient struct {
	client  *resty.Client
	baseURL string
	logger  *log.Logger
}

func NewScheduleClient(cfg *Config, logger *log.Logger) *ScheduleClient {
	if logger == nil {
		panic("logger is required")
	}
	return &ScheduleClient{
		client: resty.New().
			SetHeader("Content-Type", "application/json").
			SetTimeout(cfg.Timeout),
		baseURL: strings.TrimRight(cfg.ScheduleURL, "/"),
		logger:  logger,
	}
}

// RoomEntry fetches the schedule entry for roomName.
// A missing entry is reported as ErrRoomNotScheduled, distinct from
// transport failures (ErrFailedRequest / ErrNoneSuccessResponse) so callers
// can tell "this room will never work" from "try again".
func (sc *ScheduleClient) RoomEntry(ctx context.Context, roomName string) (_ *ScheduleEntry, err error) {
	defer observe(ctx, "room_entry", time.Now(), &err)

	var entry ScheduleEntry
	resp, err := sc.client.R().
		SetContext(ctx).
		SetQueryParam("room", roomName).
		SetResult(&entry).
		Get(sc.baseURL + "/api/schedule/room")
	if err != nil {
		return nil, errors.Wrapf(ErrFailedRequest, err, "schedule lookup for %q", roomName)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, errors.Newf(ErrRoomNotScheduled, "no schedule entry for %q", roomName)
	}
	if resp.IsError() {
		return nil, errors.Newf(ErrNoneSuccessResponse,
			"schedule gateway error: (code: %d, resp: %s)", resp.StatusCode(), resp.String())
	}
	sc.logger.Debug("schedule resp",
		log.String("room", roomName),
		log.Int("status", resp.StatusCode()),
		log.Any("entry", entry))

	if err := validateEntry(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func validateEntry(entry *ScheduleEntry) error {
	if entry.RoomName == "" {
		return errors.New(ErrInvalidPayload, "schedule entry missing room name")
	}
	if entry.StartTime.IsZero() || entry.EndTime.IsZero() {
		return errors.Newf(ErrInvalidPayload, "schedule entry for %q missing window", entry.RoomName)
	}
	if !entry.StartTime.Before(entry.EndTime) {
		return errors.Newf(ErrInvalidPayload,
			"schedule entry for %q has start >= end", entry.RoomName)
	}
	return nil
}
