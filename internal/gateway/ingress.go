package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/imtaco/stream-orch-exp/internal/errors"
	"github.com/imtaco/stream-orch-exp/internal/log"
)

// IngressClient provisions external-encoder (RTMP/WHIP) endpoints for a room.
type IngressClient struct {
	client  *resty.Client
	baseURL string
	logger  *log.Logger
}

func NewIngressClient(cfg *Config, logger *log.Logger) *IngressClient {
	if logger == nil {
		panic("logger is required")
	}
	return &IngressClient{
		client: resty.New().
			SetHeader("Content-Type", "application/json").
			SetTimeout(cfg.Timeout),
		baseURL: strings.TrimRight(cfg.IngressURL, "/"),
		logger:  logger,
	}
}

// CreateIngress provisions an ingress endpoint and returns it together with
// the creator's viewer credential from the same response. Callers must not
// issue a second token request for the preview.
func (ic *IngressClient) CreateIngress(ctx context.Context, req *CreateIngressRequest) (_ *IngressDetails, err error) {
	defer observe(ctx, "create_ingress", time.Now(), &err)

	ic.logger.Debug("ingress req", log.Any("body", req))

	var payload createIngressResponse
	resp, err := ic.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&payload).
		Post(ic.baseURL + "/api/create_ingress")
	if err != nil {
		return nil, errors.Wrap(ErrFailedRequest, err, "ingress gateway create_ingress")
	}
	if resp.IsError() {
		return nil, errors.Newf(ErrNoneSuccessResponse,
			"ingress gateway error: (code: %d, resp: %s)", resp.StatusCode(), resp.String())
	}

	details := &IngressDetails{
		URL:       payload.Ingress.URL,
		StreamKey: payload.Ingress.StreamKey,
		Credential: Credential{
			AuthToken: payload.AuthToken,
			RoomToken: payload.ConnectionDetails.Token,
		},
	}
	if details.URL == "" || details.StreamKey == "" {
		return nil, errors.New(ErrInvalidPayload, "ingress gateway returned incomplete endpoint")
	}
	if !details.Credential.Complete() {
		return nil, errors.New(ErrInvalidPayload, "ingress gateway returned partial credential")
	}
	return details, nil
}
