// Package bridge assembles the platform plugins from configuration.
package bridge

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/PratikDhanave/appstack-bridge/internal/attribution"
	"github.com/PratikDhanave/appstack-bridge/internal/config"
	"github.com/PratikDhanave/appstack-bridge/internal/methodchannel"
	"github.com/PratikDhanave/appstack-bridge/internal/plugin"
)

// Bridge owns the registry and the execution contexts shared by its plugins.
type Bridge struct {
	Registry   *plugin.Registry
	background *methodchannel.WorkerPool
	caller     *methodchannel.SerialQueue
}

// New registers one plugin per configured platform, all forwarding to client.
func New(cfg config.Config, client attribution.Client, failures plugin.FailureRecorder, logger zerolog.Logger) (*Bridge, error) {
	b := &Bridge{
		Registry:   plugin.NewRegistry(),
		background: methodchannel.NewWorkerPool(cfg.Workers),
		caller:     methodchannel.NewSerialQueue(),
	}

	recorder := plugin.Recorders{plugin.LogRecorder{Logger: logger}}
	if failures != nil {
		recorder = append(recorder, failures)
	}

	for _, name := range cfg.Platforms {
		profile, err := plugin.ProfileFor(name, cfg.IOSVersion)
		if err != nil {
			b.caller.Close()
			return nil, err
		}
		b.Registry.Register(plugin.New(profile, client, plugin.Options{
			Background:  b.background,
			Caller:      b.caller,
			Failures:    recorder,
			CallTimeout: cfg.CallTimeout,
			Logger:      &logger,
		}))
	}
	return b, nil
}

// Close waits for in-flight background calls, then drains the caller queue.
// Calls still running when ctx ends are abandoned.
func (b *Bridge) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.background.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
	b.caller.Close()
	return ctx.Err()
}
