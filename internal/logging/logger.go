// Package logging holds the small logging interface the rest of Kontakta
// depends on, keeping services and repositories away from any concrete
// logging backend.
package logging

import "context"

// Logger is what components take in their constructors. Args are alternating
// key-value pairs:
//
//	log.Warn(ctx, "database unreachable", "attempt", n, "error", err)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that attaches the given pairs to every record.
	With(args ...any) Logger
}
