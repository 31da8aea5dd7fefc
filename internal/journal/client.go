// Package journal provides the SDK backend the bridge ships with: every
// forwarded call is recorded in the store instead of being sent to an
// attribution backend.
package journal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/PratikDhanave/appstack-bridge/internal/attribution"
	"github.com/PratikDhanave/appstack-bridge/internal/auth"
	"github.com/PratikDhanave/appstack-bridge/internal/methodchannel"
	"github.com/PratikDhanave/appstack-bridge/internal/models"
	"github.com/PratikDhanave/appstack-bridge/internal/store"
)

// ErrNoTenant is returned when the call context carries no tenant.
var ErrNoTenant = errors.New("no tenant in context")

// Client records SDK calls per tenant. The tenant is read from the context
// with auth.TenantFromContext.
type Client struct {
	store  store.Store
	logger zerolog.Logger
	now    func() time.Time
}

var _ attribution.Client = (*Client)(nil)

// NewClient returns a Client journaling into st.
func NewClient(st store.Store, logger zerolog.Logger) *Client {
	return &Client{store: st, logger: logger, now: time.Now}
}

func tenantOf(ctx context.Context) (string, error) {
	t := auth.TenantFromContext(ctx)
	if t == "" {
		return "", ErrNoTenant
	}
	return t, nil
}

// Fingerprint identifies an API key without storing it.
func Fingerprint(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:8])
}

// Configure stores the tenant's configuration. The API key is kept only as
// a fingerprint; the appstack ID survives reconfiguration.
func (c *Client) Configure(ctx context.Context, cfg attribution.Config) error {
	tenant, err := tenantOf(ctx)
	if err != nil {
		return err
	}

	id, err := c.store.UpsertConfig(ctx, models.TenantConfig{
		TenantID:          tenant,
		APIKeyFingerprint: Fingerprint(cfg.APIKey),
		IsDebug:           cfg.IsDebug,
		EndpointBaseURL:   cfg.EndpointBaseURL,
		LogLevel:          cfg.LogLevel.String(),
		ConfiguredAt:      c.now().UTC(),
	})
	if err != nil {
		return errors.Wrap(err, "configure")
	}

	c.logger.Info().
		Str("tenant", tenant).
		Str("appstack_id", id).
		Str("log_level", cfg.LogLevel.String()).
		Bool("debug", cfg.IsDebug).
		Msg("sdk configured")
	return nil
}

// SendEvent journals one event for a configured tenant. A repeated
// idempotency key is accepted without writing a second event.
func (c *Client) SendEvent(ctx context.Context, event attribution.Event) error {
	tenant, err := tenantOf(ctx)
	if err != nil {
		return err
	}
	if _, err := c.store.TenantConfig(ctx, tenant); err != nil {
		return errors.Wrap(err, "send event")
	}

	// Idempotency precedence:
	// 1) the caller's idempotency key (repeated on transport retries)
	// 2) generated UUID (fallback; cannot dedupe retries)
	eventID := methodchannel.IdempotencyKey(ctx)
	if eventID == "" {
		eventID = uuid.NewString()
	}

	ev := models.JournalEvent{
		TenantID:   tenant,
		EventID:    eventID,
		EventType:  event.Type.String(),
		EventName:  event.Name,
		Revenue:    event.Revenue,
		Parameters: event.Parameters,
		Timestamp:  c.now().UTC(),
	}
	inserted, err := c.store.InsertEvent(ctx, ev)
	if err != nil {
		return errors.Wrap(err, "send event")
	}
	if !inserted {
		c.logger.Debug().Str("tenant", tenant).Str("event_id", ev.EventID).Msg("duplicate event delivery dropped")
		return nil
	}

	c.logger.Debug().Str("tenant", tenant).Str("event_type", ev.EventType).Str("event_id", ev.EventID).Msg("event journaled")
	return nil
}

// EnableAppleAdsAttribution sets the tenant's Apple Ads flag.
func (c *Client) EnableAppleAdsAttribution(ctx context.Context) error {
	tenant, err := tenantOf(ctx)
	if err != nil {
		return err
	}
	return errors.Wrap(c.store.SetAppleAds(ctx, tenant, true), "enable apple ads attribution")
}

// AppstackID returns the identifier generated on the tenant's first configure.
func (c *Client) AppstackID(ctx context.Context) (string, error) {
	tenant, err := tenantOf(ctx)
	if err != nil {
		return "", err
	}
	cfg, err := c.store.TenantConfig(ctx, tenant)
	if err != nil {
		return "", errors.Wrap(err, "appstack id")
	}
	return cfg.AppstackID, nil
}

// IsSDKDisabled reports true until the tenant has been configured.
func (c *Client) IsSDKDisabled(ctx context.Context) (bool, error) {
	tenant, err := tenantOf(ctx)
	if err != nil {
		return false, err
	}
	_, err = c.store.TenantConfig(ctx, tenant)
	if errors.Is(err, store.ErrTenantNotConfigured) {
		return true, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "sdk status")
	}
	return false, nil
}
