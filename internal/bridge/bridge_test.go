package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/appstack-bridge/internal/attribution"
	"github.com/PratikDhanave/appstack-bridge/internal/config"
	"github.com/PratikDhanave/appstack-bridge/internal/methodchannel"
	"github.com/PratikDhanave/appstack-bridge/internal/plugin"
)

type blockingClient struct {
	attribution.NopClient
	release chan struct{}
}

func (c blockingClient) SendEvent(context.Context, attribution.Event) error {
	<-c.release
	return nil
}

func testConfig(platforms ...string) config.Config {
	return config.Config{Workers: 2, IOSVersion: "16.4", Platforms: platforms}
}

func TestNew_RegistersConfiguredPlatforms(t *testing.T) {
	b, err := New(testConfig("ios", "android"), attribution.NopClient{}, nil, zerolog.Nop())
	require.NoError(t, err)
	defer b.Close(context.Background())

	assert.Equal(t, []string{"android", "ios"}, b.Registry.Platforms())

	_, ok := b.Registry.Lookup("ios_legacy", plugin.ChannelName)
	assert.False(t, ok)
}

func TestNew_UnknownPlatform(t *testing.T) {
	_, err := New(testConfig("web"), attribution.NopClient{}, nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestClose_WaitsForBackgroundCalls(t *testing.T) {
	client := blockingClient{release: make(chan struct{})}
	b, err := New(testConfig("ios"), client, nil, zerolog.Nop())
	require.NoError(t, err)

	p, ok := b.Registry.Lookup("ios", plugin.ChannelName)
	require.True(t, ok)

	result := methodchannel.NewCapture()
	p.OnMethodCall(context.Background(), &methodchannel.MethodCall{
		Method:    plugin.MethodSendEvent,
		Arguments: map[string]any{"eventType": "LOGIN"},
	}, result)

	closed := make(chan error, 1)
	go func() { closed <- b.Close(context.Background()) }()

	select {
	case <-closed:
		t.Fatal("Close returned while a call was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(client.release)
	require.NoError(t, <-closed)
	assert.Equal(t, methodchannel.Reply{Kind: methodchannel.ReplySuccess, Value: true}, result.Reply())
}

func TestClose_AbandonsHungCalls(t *testing.T) {
	client := blockingClient{release: make(chan struct{})}
	defer close(client.release)

	b, err := New(testConfig("ios"), client, nil, zerolog.Nop())
	require.NoError(t, err)

	p, _ := b.Registry.Lookup("ios", plugin.ChannelName)
	p.OnMethodCall(context.Background(), &methodchannel.MethodCall{
		Method:    plugin.MethodSendEvent,
		Arguments: map[string]any{"eventType": "LOGIN"},
	}, methodchannel.NewCapture())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, b.Close(ctx), context.DeadlineExceeded)
}
