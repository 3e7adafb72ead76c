package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/imtaco/stream-orch-exp/internal/errors"
	"github.com/imtaco/stream-orch-exp/internal/log"
)

// TokenClient issues room credentials from the token gateway: join for
// viewers, create for browser-based hosts (which also provisions the room).
type TokenClient struct {
	client  *resty.Client
	baseURL string
	logger  *log.Logger
}

func NewTokenClient(cfg *Config, logger *log.Logger) *TokenClient {
	if logger == nil {
		panic("logger is required")
	}
	return &TokenClient{
		client: resty.New().
			SetHeader("Content-Type", "application/json").
			SetTimeout(cfg.Timeout),
		baseURL: strings.TrimRight(cfg.TokenURL, "/"),
		logger:  logger,
	}
}

func (tc *TokenClient) JoinStream(ctx context.Context, req *JoinStreamRequest) (*Credential, error) {
	return tc.requestCredential(ctx, "/api/join_stream", req)
}

func (tc *TokenClient) CreateStream(ctx context.Context, req *CreateStreamRequest) (*Credential, error) {
	return tc.requestCredential(ctx, "/api/create_stream", req)
}

func (tc *TokenClient) requestCredential(ctx context.Context, path string, body any) (_ *Credential, err error) {
	defer observe(ctx, strings.TrimPrefix(path, "/api/"), time.Now(), &err)

	tc.logger.Debug("token req", log.String("path", path), log.Any("body", body))

	var payload tokenResponse
	resp, err := tc.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&payload).
		Post(tc.baseURL + path)
	if err != nil {
		return nil, errors.Wrapf(ErrFailedRequest, err, "token gateway %s", path)
	}
	if resp.IsError() {
		return nil, errors.Newf(ErrNoneSuccessResponse,
			"token gateway error: (code: %d, resp: %s)", resp.StatusCode(), resp.String())
	}

	cred := &Credential{
		AuthToken: payload.AuthToken,
		RoomToken: payload.ConnectionDetails.Token,
	}
	// A 2xx with a partial credential is still unusable downstream.
	if !cred.Complete() {
		return nil, errors.Newf(ErrInvalidPayload, "token gateway %s returned partial credential", path)
	}
	return cred, nil
}
