package channelclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/PratikDhanave/appstack-bridge/internal/methodchannel"
)

// ConfigureArgs are the arguments of the configure method. Zero values are
// omitted from the call so the bridge applies its defaults.
type ConfigureArgs struct {
	APIKey          string
	IsDebug         bool
	EndpointBaseURL string
	LogLevel        *int
}

// EventArgs are the arguments of the sendEvent method.
type EventArgs struct {
	EventType  string
	EventName  string
	Revenue    *float64
	Parameters map[string]any
}

func (a ConfigureArgs) toMap() map[string]any {
	m := map[string]any{"apiKey": a.APIKey}
	if a.IsDebug {
		m["isDebug"] = true
	}
	if a.EndpointBaseURL != "" {
		m["endpointBaseUrl"] = a.EndpointBaseURL
	}
	if a.LogLevel != nil {
		m["logLevel"] = *a.LogLevel
	}
	return m
}

func (a EventArgs) toMap() map[string]any {
	m := map[string]any{"eventType": a.EventType}
	if a.EventName != "" {
		m["eventName"] = a.EventName
	}
	if a.Revenue != nil {
		m["revenue"] = *a.Revenue
	}
	if a.Parameters != nil {
		m["parameters"] = a.Parameters
	}
	return m
}

// Configure initialises the SDK and reports the bridge's answer.
func (c *Client) Configure(ctx context.Context, args ConfigureArgs) (bool, error) {
	return c.invokeBool(ctx, "configure", args.toMap())
}

// SendEvent forwards one event. A rejected event type comes back as
// *methodchannel.Error.
func (c *Client) SendEvent(ctx context.Context, args EventArgs) (bool, error) {
	return c.invokeBool(ctx, "sendEvent", args.toMap())
}

// EnableAppleAdsAttribution reports false on platforms without the feature.
func (c *Client) EnableAppleAdsAttribution(ctx context.Context) (bool, error) {
	return c.invokeBool(ctx, "enableAppleAdsAttribution", nil)
}

// AppstackID returns nil when the SDK had no identifier to give.
func (c *Client) AppstackID(ctx context.Context) (*string, error) {
	v, err := c.Invoke(ctx, "getAppstackId", nil)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("getAppstackId: unexpected reply %T", v)
	}
	return &s, nil
}

// IsSDKDisabled is answered only by the ios channel.
func (c *Client) IsSDKDisabled(ctx context.Context) (bool, error) {
	return c.invokeBool(ctx, "isSdkDisabled", nil)
}

func (c *Client) invokeBool(ctx context.Context, method string, args map[string]any) (bool, error) {
	v, err := c.Invoke(ctx, method, args)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s: unexpected reply %T", method, v)
	}
	return b, nil
}

// IsNotImplemented reports whether err means the platform lacks the method.
func IsNotImplemented(err error) bool {
	return errors.Is(err, methodchannel.ErrNotImplemented)
}
