package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/PratikDhanave/appstack-bridge/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore is the durable journal.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, errors.Wrap(err, "create pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping database")
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema() error {
	_, err := p.pool.Exec(context.Background(), schemaSQL)
	return errors.Wrap(err, "apply schema")
}

// Ping is used by readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// UpsertConfig saves the tenant configuration and returns its appstack ID.
func (p *PostgresStore) UpsertConfig(ctx context.Context, cfg models.TenantConfig) (string, error) {
	if cfg.TenantID == "" {
		return "", errors.New("tenantID required")
	}

	// appstack_id is only written on insert so it stays stable across
	// reconfiguration.
	var id string
	err := p.pool.QueryRow(ctx, `
		INSERT INTO tenants(tenant_id, api_key_fingerprint, is_debug, endpoint_base_url, log_level, appstack_id, configured_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (tenant_id) DO UPDATE SET
			api_key_fingerprint = EXCLUDED.api_key_fingerprint,
			is_debug            = EXCLUDED.is_debug,
			endpoint_base_url   = EXCLUDED.endpoint_base_url,
			log_level           = EXCLUDED.log_level,
			configured_at       = EXCLUDED.configured_at
		RETURNING appstack_id::text
	`, cfg.TenantID, cfg.APIKeyFingerprint, cfg.IsDebug, cfg.EndpointBaseURL, cfg.LogLevel,
		uuid.New(), cfg.ConfiguredAt).Scan(&id)
	if err != nil {
		return "", errors.Wrap(err, "upsert tenant config")
	}
	return id, nil
}

// TenantConfig loads a tenant's configuration.
func (p *PostgresStore) TenantConfig(ctx context.Context, tenantID string) (models.TenantConfig, error) {
	cfg := models.TenantConfig{TenantID: tenantID}
	err := p.pool.QueryRow(ctx, `
		SELECT api_key_fingerprint, is_debug, endpoint_base_url, log_level,
		       apple_ads_enabled, appstack_id::text, configured_at
		FROM tenants
		WHERE tenant_id=$1
	`, tenantID).Scan(
		&cfg.APIKeyFingerprint, &cfg.IsDebug, &cfg.EndpointBaseURL, &cfg.LogLevel,
		&cfg.AppleAdsEnabled, &cfg.AppstackID, &cfg.ConfiguredAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.TenantConfig{}, ErrTenantNotConfigured
	}
	if err != nil {
		return models.TenantConfig{}, errors.Wrap(err, "load tenant config")
	}
	return cfg, nil
}

// SetAppleAds updates the Apple Ads flag of a configured tenant.
func (p *PostgresStore) SetAppleAds(ctx context.Context, tenantID string, enabled bool) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE tenants SET apple_ads_enabled=$2 WHERE tenant_id=$1
	`, tenantID, enabled)
	if err != nil {
		return errors.Wrap(err, "update apple ads flag")
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotConfigured
	}
	return nil
}

// InsertEvent persists an event and returns inserted=false when it is a duplicate.
//
// Duplicate detection is enforced by the primary key on (tenant_id, event_id).
func (p *PostgresStore) InsertEvent(ctx context.Context, ev models.JournalEvent) (bool, error) {
	if ev.TenantID == "" || ev.EventID == "" || ev.EventType == "" {
		return false, errors.New("tenantID/eventID/eventType required")
	}

	params := ev.Parameters
	if params == nil {
		params = map[string]any{}
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return false, errors.Wrap(err, "encode parameters")
	}

	// RETURNING 1 only when inserted; duplicates return no rows.
	var one int
	err = p.pool.QueryRow(ctx, `
		INSERT INTO events(tenant_id, event_id, event_type, event_name, revenue, parameters, ts)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (tenant_id, event_id) DO NOTHING
		RETURNING 1
	`, ev.TenantID, ev.EventID, ev.EventType, ev.EventName, ev.Revenue, paramsJSON, ev.Timestamp).Scan(&one)

	if err == nil {
		return true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return false, errors.Wrap(err, "insert event")
}

// CountEvents uses a half-open interval so adjacent windows never double count.
func (p *PostgresStore) CountEvents(ctx context.Context, tenantID, eventType string, from, to time.Time) (int64, error) {
	var count int64
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM events
		WHERE tenant_id=$1
		  AND event_type=$2
		  AND ts >= $3
		  AND ts <  $4
	`, tenantID, eventType, from, to).Scan(&count)

	return count, errors.Wrap(err, "count events")
}

// InsertFailure appends one swallowed SDK failure.
func (p *PostgresStore) InsertFailure(ctx context.Context, f models.Failure) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO failures(tenant_id, platform, method, error, ts)
		VALUES ($1,$2,$3,$4,$5)
	`, f.TenantID, f.Platform, f.Method, f.Error, f.Timestamp)
	return errors.Wrap(err, "insert failure")
}

// RecentFailures returns the tenant's newest failures first.
func (p *PostgresStore) RecentFailures(ctx context.Context, tenantID string, limit int) ([]models.Failure, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT tenant_id, platform, method, error, ts
		FROM failures
		WHERE tenant_id=$1
		ORDER BY ts DESC, id DESC
		LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query failures")
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Failure, error) {
		var f models.Failure
		err := row.Scan(&f.TenantID, &f.Platform, &f.Method, &f.Error, &f.Timestamp)
		return f, err
	})
	return out, errors.Wrap(err, "scan failures")
}
