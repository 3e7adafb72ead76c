package gateway

import "github.com/imtaco/stream-orch-exp/internal/errors"

const (
	ErrFailedRequest       errors.Code = "fail to make request"
	ErrInvalidPayload      errors.Code = "invalid payload"
	ErrNoneSuccessResponse errors.Code = "none success response"
	ErrRoomNotScheduled    errors.Code = "room not scheduled"
)
