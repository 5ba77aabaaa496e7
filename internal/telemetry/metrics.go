package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ServerMetrics holds metric instruments for HTTP server telemetry.
// Initialize once at server startup and reuse throughout the application lifecycle.
type ServerMetrics struct {
	RequestCounter  metric.Int64Counter     // Total HTTP requests
	RequestDuration metric.Float64Histogram // HTTP request latency
	ErrorCounter    metric.Int64Counter     // Total HTTP errors (5xx)
}

// NewServerMetrics creates a new ServerMetrics instance with pre-configured instruments.
func NewServerMetrics() (*ServerMetrics, error) {
	meter := otel.Meter("sessiond/http")

	requestCounter, err := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"http.server.error.count",
		metric.WithDescription("Total number of HTTP server errors (5xx)"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &ServerMetrics{
		RequestCounter:  requestCounter,
		RequestDuration: requestDuration,
		ErrorCounter:    errorCounter,
	}, nil
}

// RecordRequest records an HTTP request with method, route, status, and duration.
// Call this at the end of each request handler (typically in middleware).
func (m *ServerMetrics) RecordRequest(ctx context.Context, method, route, status string, durationMs float64) {
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.String("http.status_code", status),
	)

	m.RequestCounter.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, durationMs, attrs)

	if len(status) > 0 && status[0] == '5' {
		m.ErrorCounter.Add(ctx, 1, attrs)
	}
}

// SessionMetrics holds metric instruments for session lifecycle operations.
type SessionMetrics struct {
	SessionsCreated     metric.Int64Counter       // Sessions created
	SessionsInvalidated metric.Int64Counter       // Sessions explicitly invalidated
	SessionsExpired     metric.Int64Counter       // Sessions removed by expiry (lazy or sweep)
	ActiveSessions      metric.Int64UpDownCounter // Live sessions: incremented on create, decremented on invalidation or expiry
	CreateDuration      metric.Float64Histogram   // Session creation latency (includes upstream)
}

// NewSessionMetrics creates metric instruments for session telemetry.
func NewSessionMetrics() (*SessionMetrics, error) {
	meter := otel.Meter("sessiond/session")

	created, err := meter.Int64Counter(
		"session.created.count",
		metric.WithDescription("Total number of sessions created"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	invalidated, err := meter.Int64Counter(
		"session.invalidated.count",
		metric.WithDescription("Total number of sessions explicitly invalidated"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	expired, err := meter.Int64Counter(
		"session.expired.count",
		metric.WithDescription("Total number of sessions removed after expiry"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	active, err := meter.Int64UpDownCounter(
		"session.active",
		metric.WithDescription("Number of live sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	createDuration, err := meter.Float64Histogram(
		"session.create.duration",
		metric.WithDescription("Session creation duration including upstream aggregation"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)
	if err != nil {
		return nil, err
	}

	return &SessionMetrics{
		SessionsCreated:     created,
		SessionsInvalidated: invalidated,
		SessionsExpired:     expired,
		ActiveSessions:      active,
		CreateDuration:      createDuration,
	}, nil
}

// AccessMetrics holds metric instruments for access validation.
type AccessMetrics struct {
	Checks   metric.Int64Counter // Total access checks
	Denials  metric.Int64Counter // Denied access checks
	Bypasses metric.Int64Counter // Checks allowed via bypass roles
}

// NewAccessMetrics creates metric instruments for access-validation telemetry.
func NewAccessMetrics() (*AccessMetrics, error) {
	meter := otel.Meter("sessiond/access")

	checks, err := meter.Int64Counter(
		"access.check.count",
		metric.WithDescription("Total number of access checks"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	denials, err := meter.Int64Counter(
		"access.denied.count",
		metric.WithDescription("Total number of denied access checks"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	bypasses, err := meter.Int64Counter(
		"access.bypass.count",
		metric.WithDescription("Total number of checks allowed via bypass roles"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	return &AccessMetrics{
		Checks:   checks,
		Denials:  denials,
		Bypasses: bypasses,
	}, nil
}

// RecordCheck records one access check outcome.
func (a *AccessMetrics) RecordCheck(ctx context.Context, kind string, allowed, bypass bool) {
	attrs := metric.WithAttributes(
		attribute.String("access.kind", kind),
		attribute.Bool("access.allowed", allowed),
	)

	a.Checks.Add(ctx, 1, attrs)
	if !allowed {
		a.Denials.Add(ctx, 1, attrs)
	}
	if bypass {
		a.Bypasses.Add(ctx, 1, attrs)
	}
}
