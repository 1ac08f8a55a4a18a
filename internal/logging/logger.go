// Package logging defines the structured-logging interface used by the
// server, its services and the HTTP and gRPC middleware.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are key/value pairs:
//
//	log.Info(ctx, "invitation accepted", "invitation_id", id, "project_id", pid)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}
