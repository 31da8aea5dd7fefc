package plugin

import (
	"context"

	"github.com/PratikDhanave/appstack-bridge/internal/attribution"
	"github.com/PratikDhanave/appstack-bridge/internal/methodchannel"
)

func (p *Plugin) handleConfigure(ctx context.Context, call *methodchannel.MethodCall, result methodchannel.Result) {
	apiKey, _ := call.String(ArgAPIKey)
	if apiKey == "" {
		result.Error(CodeInvalidArguments, "API key is required", nil)
		return
	}

	isDebug, _ := call.Bool(ArgIsDebug)
	code, ok := call.Int(ArgLogLevel)
	if !ok {
		code = attribution.DefaultLogLevelCode
	}

	cfg := attribution.Config{
		APIKey:   apiKey,
		IsDebug:  isDebug,
		LogLevel: p.profile.LogLevels.Resolve(code),
	}
	if endpoint, ok := call.String(ArgEndpointBaseURL); ok {
		cfg.EndpointBaseURL = &endpoint
	}

	p.perform(ctx, MethodConfigure,
		func(ctx context.Context) error { return p.client.Configure(ctx, cfg) },
		func(err error) {
			if err != nil && p.profile.Errors == PropagateErrors {
				result.Error(CodeConfigurationError, "Failed to configure SDK: "+err.Error(), nil)
				return
			}
			result.Success(true)
		})
}

func (p *Plugin) handleSendEvent(ctx context.Context, call *methodchannel.MethodCall, result methodchannel.Result) {
	token, _ := call.String(ArgEventType)
	if token == "" {
		result.Error(CodeInvalidArguments, "Event type is required", nil)
		return
	}

	eventType, ok := attribution.ParseEventType(token)
	if !ok {
		result.Error(CodeInvalidEventType, "Invalid event type: "+token, nil)
		return
	}

	event := attribution.Event{Type: eventType}
	if name, ok := call.String(ArgEventName); ok {
		event.Name = &name
	}
	switch p.profile.Payload {
	case PayloadRevenue:
		if revenue, ok := call.Float(ArgRevenue); ok {
			event.Revenue = &revenue
		}
	case PayloadParameters:
		if params, ok := call.Map(ArgParameters); ok {
			event.Parameters = params
		}
	}

	p.perform(ctx, MethodSendEvent,
		func(ctx context.Context) error { return p.client.SendEvent(ctx, event) },
		func(err error) {
			if err != nil && p.profile.Errors == PropagateErrors {
				result.Error(CodeEventSendError, "Failed to send event: "+err.Error(), nil)
				return
			}
			result.Success(true)
		})
}

func (p *Plugin) handleEnableAppleAds(ctx context.Context, result methodchannel.Result) {
	if !p.profile.AppleAds {
		result.Success(false)
		return
	}

	p.perform(ctx, MethodEnableAppleAds,
		func(ctx context.Context) error {
			if !p.profile.appleAdsAvailable() {
				p.logger.Debug().Str("os_version", p.profile.OSVersion.String()).Msg("apple ads attribution unavailable")
				return nil
			}
			return p.client.EnableAppleAdsAttribution(ctx)
		},
		func(error) { result.Success(true) })
}

func (p *Plugin) handleGetAppstackID(ctx context.Context, result methodchannel.Result) {
	var id string
	p.perform(ctx, MethodGetAppstackID,
		func(ctx context.Context) error {
			v, err := p.client.AppstackID(ctx)
			id = v
			return err
		},
		func(err error) {
			if err != nil {
				result.Success(nil)
				return
			}
			result.Success(id)
		})
}

func (p *Plugin) handleIsSDKDisabled(ctx context.Context, result methodchannel.Result) {
	var disabled bool
	p.perform(ctx, MethodIsSDKDisabled,
		func(ctx context.Context) error {
			v, err := p.client.IsSDKDisabled(ctx)
			disabled = v
			return err
		},
		func(err error) {
			if err != nil {
				result.Success(false)
				return
			}
			result.Success(disabled)
		})
}
