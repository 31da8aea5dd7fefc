// Package plugin dispatches method-channel calls to the attribution SDK.
//
// One Plugin serves one platform profile. Every profile shares the same
// argument validation and event-type vocabulary; they differ only in
// log-level numbering, execution context, error policy, event payload and
// the optional methods they answer.
package plugin

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/PratikDhanave/appstack-bridge/internal/attribution"
	"github.com/PratikDhanave/appstack-bridge/internal/methodchannel"
)

// Method names.
const (
	MethodConfigure      = "configure"
	MethodSendEvent      = "sendEvent"
	MethodEnableAppleAds = "enableAppleAdsAttribution"
	MethodGetAppstackID  = "getAppstackId"
	MethodIsSDKDisabled  = "isSdkDisabled"
)

// Argument keys.
const (
	ArgAPIKey          = "apiKey"
	ArgIsDebug         = "isDebug"
	ArgEndpointBaseURL = "endpointBaseUrl"
	ArgLogLevel        = "logLevel"
	ArgEventType       = "eventType"
	ArgEventName       = "eventName"
	ArgRevenue         = "revenue"
	ArgParameters      = "parameters"
)

// Error codes.
const (
	CodeInvalidArguments   = "INVALID_ARGUMENTS"
	CodeInvalidEventType   = "INVALID_EVENT_TYPE"
	CodeConfigurationError = "CONFIGURATION_ERROR"
	CodeEventSendError     = "EVENT_SEND_ERROR"
)

// ErrCallTimeout is reported when a background SDK call outlives the
// configured call timeout.
var ErrCallTimeout = errors.New("sdk call timed out")

// Options tune a Plugin. The zero value is usable.
type Options struct {
	// Background runs SDK calls for profiles with Background set.
	// Defaults to a worker pool of 8.
	Background methodchannel.Executor
	// Caller receives every continuation of a background call.
	// Defaults to Inline.
	Caller methodchannel.Executor
	// Failures receives swallowed SDK errors. Defaults to a LogRecorder.
	Failures FailureRecorder
	// CallTimeout bounds background SDK calls. Zero means no bound.
	CallTimeout time.Duration
	Logger      *zerolog.Logger
}

// Plugin answers method calls for one platform.
type Plugin struct {
	profile    Profile
	client     attribution.Client
	background methodchannel.Executor
	caller     methodchannel.Executor
	failures   FailureRecorder
	timeout    time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// New builds a Plugin forwarding to client.
func New(profile Profile, client attribution.Client, opts Options) *Plugin {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger = logger.With().Str("platform", profile.Platform).Logger()

	p := &Plugin{
		profile:    profile,
		client:     client,
		background: opts.Background,
		caller:     opts.Caller,
		failures:   opts.Failures,
		timeout:    opts.CallTimeout,
		logger:     logger,
		now:        time.Now,
	}
	if !profile.Background {
		p.background = methodchannel.Inline{}
		p.caller = methodchannel.Inline{}
	}
	if p.background == nil {
		p.background = methodchannel.NewWorkerPool(8)
	}
	if p.caller == nil {
		p.caller = methodchannel.Inline{}
	}
	if p.failures == nil {
		p.failures = LogRecorder{Logger: logger}
	}
	return p
}

// Platform returns the profile's platform name.
func (p *Plugin) Platform() string {
	return p.profile.Platform
}

// Profile returns the plugin's profile.
func (p *Plugin) Profile() Profile {
	return p.profile
}

// OnMethodCall dispatches call. Unknown methods answer NotImplemented.
func (p *Plugin) OnMethodCall(ctx context.Context, call *methodchannel.MethodCall, result methodchannel.Result) {
	p.logger.Debug().Str("method", call.Method).Msg("method call")

	switch call.Method {
	case MethodConfigure:
		p.handleConfigure(ctx, call, result)
	case MethodSendEvent:
		p.handleSendEvent(ctx, call, result)
	case MethodEnableAppleAds:
		p.handleEnableAppleAds(ctx, result)
	case MethodGetAppstackID:
		if !p.profile.Queries {
			result.NotImplemented()
			return
		}
		p.handleGetAppstackID(ctx, result)
	case MethodIsSDKDisabled:
		if !p.profile.Queries {
			result.NotImplemented()
			return
		}
		p.handleIsSDKDisabled(ctx, result)
	default:
		result.NotImplemented()
	}
}

// perform runs op and hands its error to deliver. On background profiles op
// runs on the background executor and deliver on the caller executor; the
// call is detached from ctx cancellation since the SDK call cannot be
// interrupted once issued. Under SwallowErrors the failure is recorded
// before deliver runs.
func (p *Plugin) perform(ctx context.Context, method string, op func(context.Context) error, deliver func(error)) {
	run := func(ctx context.Context) error {
		err := p.invoke(ctx, op)
		if err != nil && p.profile.Errors == SwallowErrors {
			p.recordFailure(ctx, method, err)
		}
		return err
	}

	if !p.profile.Background {
		deliver(run(ctx))
		return
	}

	ctx = context.WithoutCancel(ctx)
	p.background.Post(func() {
		err := run(ctx)
		p.caller.Post(func() { deliver(err) })
	})
}

func (p *Plugin) invoke(ctx context.Context, op func(context.Context) error) error {
	if !p.profile.Background || p.timeout <= 0 {
		return safeCall(ctx, op)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- safeCall(ctx, op) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return errors.Wrapf(ErrCallTimeout, "after %s", p.timeout)
	}
}

// safeCall converts a panicking SDK call into an error.
func safeCall(ctx context.Context, op func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("sdk panic: %v", r)
		}
	}()
	return op(ctx)
}

func (p *Plugin) recordFailure(ctx context.Context, method string, err error) {
	p.failures.RecordFailure(ctx, Failure{
		Platform: p.profile.Platform,
		Method:   method,
		Err:      err,
		At:       p.now().UTC(),
	})
}
