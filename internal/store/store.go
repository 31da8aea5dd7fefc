package store

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/PratikDhanave/appstack-bridge/internal/models"
)

// ErrTenantNotConfigured is returned when an operation needs a tenant that
// never called configure.
var ErrTenantNotConfigured = errors.New("tenant not configured")

// Store is the journal of calls forwarded through the bridge.
type Store interface {
	Ping(ctx context.Context) error
	Close()

	// UpsertConfig saves cfg and returns the tenant's appstack ID. The ID
	// is generated on first configure and kept on later ones.
	UpsertConfig(ctx context.Context, cfg models.TenantConfig) (string, error)
	// TenantConfig returns ErrTenantNotConfigured for unknown tenants.
	TenantConfig(ctx context.Context, tenantID string) (models.TenantConfig, error)
	SetAppleAds(ctx context.Context, tenantID string, enabled bool) error

	// InsertEvent returns inserted=false when the event ID was already
	// journaled for the tenant.
	InsertEvent(ctx context.Context, ev models.JournalEvent) (bool, error)
	// CountEvents counts events of eventType in [from,to).
	CountEvents(ctx context.Context, tenantID, eventType string, from, to time.Time) (int64, error)

	InsertFailure(ctx context.Context, f models.Failure) error
	// RecentFailures returns at most limit failures, newest first.
	RecentFailures(ctx context.Context, tenantID string, limit int) ([]models.Failure, error)
}
