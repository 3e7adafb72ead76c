package gateway

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	intotel "github.com/imtaco/stream-orch-exp/internal/otel"
)

var (
	requestsTotal   metric.Int64Counter
	requestErrors   metric.Int64Counter
	requestDuration metric.Float64Histogram
)

func init() {
	f := intotel.NewFactory("gateway.clients", intotel.PrefixGateway)

	f.Int64Counter(&requestsTotal, "requests.total",
		metric.WithDescription("Gateway requests issued"))

	f.Int64Counter(&requestErrors, "requests.errors",
		metric.WithDescription("Gateway requests that returned an error"))

	f.Float64Histogram(&requestDuration, "requests.duration",
		metric.WithDescription("Gateway request duration in seconds"),
		metric.WithUnit("s"))
}

// observe records one gateway call. Callers defer it at entry:
//
//	defer observe(ctx, "join_stream", time.Now(), &err)
func observe(ctx context.Context, operation string, start time.Time, err *error) {
	attrs := metric.WithAttributes(attribute.String("operation", operation))
	requestsTotal.Add(ctx, 1, attrs)
	requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil && *err != nil {
		requestErrors.Add(ctx, 1, attrs)
	}
}
