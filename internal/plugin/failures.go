package plugin

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Failure is an SDK error that was hidden from the caller.
type Failure struct {
	Platform string
	Method   string
	Err      error
	At       time.Time
}

// FailureRecorder receives swallowed failures.
type FailureRecorder interface {
	RecordFailure(ctx context.Context, f Failure)
}

// LogRecorder writes each failure as a structured warning.
type LogRecorder struct {
	Logger zerolog.Logger
}

func (r LogRecorder) RecordFailure(_ context.Context, f Failure) {
	r.Logger.Warn().
		Err(f.Err).
		Str("platform", f.Platform).
		Str("method", f.Method).
		Time("at", f.At).
		Msg("sdk call failed; caller answered with success")
}

// Recorders fans a failure out to several recorders.
type Recorders []FailureRecorder

func (rs Recorders) RecordFailure(ctx context.Context, f Failure) {
	for _, r := range rs {
		r.RecordFailure(ctx, f)
	}
}
