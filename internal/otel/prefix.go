package otel

// Metric prefixes for each service
// Each service should define its own metric names and use these prefixes
const (
	PrefixSessions = "sessions"
	PrefixGateway  = "gateway"
)
