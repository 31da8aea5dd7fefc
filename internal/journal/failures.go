package journal

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/PratikDhanave/appstack-bridge/internal/auth"
	"github.com/PratikDhanave/appstack-bridge/internal/models"
	"github.com/PratikDhanave/appstack-bridge/internal/plugin"
	"github.com/PratikDhanave/appstack-bridge/internal/store"
)

// FailureRecorder persists swallowed SDK failures so they stay queryable
// after the caller was told the call succeeded.
type FailureRecorder struct {
	store  store.Store
	logger zerolog.Logger
}

var _ plugin.FailureRecorder = (*FailureRecorder)(nil)

// NewFailureRecorder returns a recorder writing failures into st.
func NewFailureRecorder(st store.Store, logger zerolog.Logger) *FailureRecorder {
	return &FailureRecorder{store: st, logger: logger}
}

// RecordFailure persists f under the tenant found in ctx. Store errors are
// logged, never returned to the plugin.
func (r *FailureRecorder) RecordFailure(ctx context.Context, f plugin.Failure) {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	err := r.store.InsertFailure(ctx, models.Failure{
		TenantID:  auth.TenantFromContext(ctx),
		Platform:  f.Platform,
		Method:    f.Method,
		Error:     msg,
		Timestamp: f.At,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("method", f.Method).Msg("could not persist failure")
	}
}
