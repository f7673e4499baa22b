package log

import "context"

// Logger is the structured logging interface handed to components that
// should not depend on a concrete logging backend.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...map[string]any)
	Info(ctx context.Context, msg string, fields ...map[string]any)
	Warn(ctx context.Context, msg string, fields ...map[string]any)
	Error(ctx context.Context, msg string, err error, fields ...map[string]any)
	Fatal(ctx context.Context, msg string, err error, fields ...map[string]any)

	// With returns a derived logger carrying the extra fields.
	With(fields map[string]any) Logger
}
