// Package attribution holds the vocabulary shared by every platform
// adapter and the interface of the attribution SDK they forward to.
package attribution

import "context"

// Config is the configuration forwarded to Client.Configure.
// EndpointBaseURL is nil when the caller did not supply an override.
type Config struct {
	APIKey          string
	IsDebug         bool
	EndpointBaseURL *string
	LogLevel        LogLevel
}

// Event is a single tracked event. Depending on the platform either Revenue
// or Parameters is populated; both may be nil.
type Event struct {
	Type       EventType
	Name       *string
	Revenue    *float64
	Parameters map[string]any
}

// Client is the attribution SDK as seen by the bridge. Implementations own
// all network, device and matching logic.
type Client interface {
	Configure(ctx context.Context, cfg Config) error
	SendEvent(ctx context.Context, event Event) error
	EnableAppleAdsAttribution(ctx context.Context) error
	AppstackID(ctx context.Context) (string, error)
	IsSDKDisabled(ctx context.Context) (bool, error)
}

// NopClient accepts every call and does nothing.
type NopClient struct{}

var _ Client = NopClient{}

func (NopClient) Configure(context.Context, Config) error { return nil }
func (NopClient) SendEvent(context.Context, Event) error { return nil }
func (NopClient) EnableAppleAdsAttribution(context.Context) error { return nil }
func (NopClient) AppstackID(context.Context) (string, error) { return "", nil }
func (NopClient) IsSDKDisabled(context.Context) (bool, error) { return false, nil }
