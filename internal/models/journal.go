package models

import "time"

// TenantConfig is the last configuration a tenant forwarded to the SDK.
// The raw API key is never stored; only its fingerprint.
type TenantConfig struct {
	TenantID          string    `json:"tenant_id"`
	APIKeyFingerprint string    `json:"api_key_fingerprint"`
	IsDebug           bool      `json:"is_debug"`
	EndpointBaseURL   *string   `json:"endpoint_base_url,omitempty"`
	LogLevel          string    `json:"log_level"`
	AppleAdsEnabled   bool      `json:"apple_ads_enabled"`
	AppstackID        string    `json:"appstack_id"`
	ConfiguredAt      time.Time `json:"configured_at"`
}

// JournalEvent is one event forwarded through the bridge.
type JournalEvent struct {
	TenantID   string         `json:"tenant_id"`
	EventID    string         `json:"event_id"`
	EventType  string         `json:"event_type"`
	EventName  *string        `json:"event_name,omitempty"`
	Revenue    *float64       `json:"revenue,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Failure is an SDK error the bridge hid from its caller.
type Failure struct {
	TenantID  string    `json:"tenant_id"`
	Platform  string    `json:"platform"`
	Method    string    `json:"method"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// EventCountResponse is returned by GET /journal/events.
type EventCountResponse struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}
