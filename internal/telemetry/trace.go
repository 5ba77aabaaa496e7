package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartSpan creates a new span for a service operation.
// This is a convenience wrapper around otel.Tracer().Start() with common patterns.
//
// Usage in services:
//
//	ctx, span := telemetry.StartSpan(ctx, "sessiond/services/session", "session.CreateOrGet",
//	    attribute.String("party.id", partyID.String()),
//	)
//	defer span.End()
func StartSpan(ctx context.Context, tracerName, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// RecordError records an error on the span and sets the span status to error.
// This is a convenience wrapper to ensure consistent error recording.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// AddEvent adds a named event to the span with optional attributes.
// Use for business events like denied access checks or lazy expirations.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Common attribute keys for session-manager services
const (
	// Session lifecycle attributes
	AttrSessionID     = "session.id"
	AttrSessionStatus = "session.status"
	AttrPartyID       = "party.id"
	AttrChannel       = "session.channel"

	// Role resolution attributes
	AttrRoleCode     = "role.code"
	AttrRolePriority = "role.priority"
	AttrRoleDefault  = "role.default"

	// Access validation attributes
	AttrAccessResource = "access.resource"
	AttrAccessKind     = "access.kind"
	AttrAccessAllowed  = "access.allowed"
	AttrAccessBypass   = "access.bypass"

	// Upstream attributes
	AttrUpstreamEndpoint = "upstream.endpoint"
)
