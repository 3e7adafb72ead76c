package orchestrator

import (
	"go.opentelemetry.io/otel/metric"

	intotel "github.com/imtaco/stream-orch-exp/internal/otel"
)

var (
	// Liveness metrics
	livenessResolvedLive     metric.Int64Counter
	livenessResolvedNotLive  metric.Int64Counter
	livenessResolvedNotFound metric.Int64Counter
	livenessResolveErrors    metric.Int64Counter

	// Join metrics
	joinsSucceeded metric.Int64Counter
	joinsFailed    metric.Int64Counter

	// Creation-flow metrics
	broadcastsCreated metric.Int64Counter
	ingressesCreated  metric.Int64Counter
	provisionBlocked  metric.Int64Counter
)

func init() {
	f := intotel.NewFactory("sessions.orchestrator", intotel.PrefixSessions)

	f.Int64Counter(&livenessResolvedLive, "liveness.live",
		metric.WithDescription("Schedule lookups classified as live"))

	f.Int64Counter(&livenessResolvedNotLive, "liveness.not_live",
		metric.WithDescription("Schedule lookups classified as outside the window"))

	f.Int64Counter(&livenessResolvedNotFound, "liveness.not_found",
		metric.WithDescription("Schedule lookups for rooms with no entry"))

	f.Int64Counter(&livenessResolveErrors, "liveness.fetch_errors",
		metric.WithDescription("Schedule lookups that failed"))

	f.Int64Counter(&joinsSucceeded, "joins.succeeded",
		metric.WithDescription("Viewer joins that produced a complete credential"))

	f.Int64Counter(&joinsFailed, "joins.failed",
		metric.WithDescription("Viewer joins that ended in join_error"))

	f.Int64Counter(&broadcastsCreated, "broadcasts.created",
		metric.WithDescription("Browser broadcasts provisioned"))

	f.Int64Counter(&ingressesCreated, "ingresses.created",
		metric.WithDescription("External-encoder ingresses provisioned"))

	f.Int64Counter(&provisionBlocked, "provision.blocked",
		metric.WithDescription("Creation attempts stopped by the schedule existence check"))
}
