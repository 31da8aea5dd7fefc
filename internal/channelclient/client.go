// Package channelclient calls the bridge's HTTP method channel, the way a
// host application would.
package channelclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/PratikDhanave/appstack-bridge/internal/methodchannel"
	"github.com/PratikDhanave/appstack-bridge/internal/models"
)

// Options configure a Client.
type Options struct {
	BaseURL  string
	Platform string
	Channel  string // defaults to appstack_plugin
	Token    string // X-API-Key presented to the bridge

	RetryMax int
	Timeout  time.Duration
	Logger   *zerolog.Logger
}

// Client sends method calls to one platform channel.
type Client struct {
	endpoint string
	token    string
	http     *retryablehttp.Client
}

// New builds a Client for one platform channel. Calls are retried up to
// opts.RetryMax times on transport failures and 5xx replies other than 501.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if opts.Platform == "" {
		return nil, errors.New("platform is required")
	}
	channel := opts.Channel
	if channel == "" {
		channel = "appstack_plugin"
	}
	endpoint, err := url.JoinPath(strings.TrimRight(opts.BaseURL, "/"), "channels", opts.Platform, channel)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if opts.Timeout > 0 {
		rc.HTTPClient.Timeout = opts.Timeout
	}
	if opts.Logger != nil {
		rc.Logger = leveledLogger{*opts.Logger}
	} else {
		rc.Logger = nil
	}

	return &Client{endpoint: endpoint, token: opts.Token, http: rc}, nil
}

// Invoke sends one method call and decodes the reply. Error envelopes come
// back as *methodchannel.Error and a missing handler as
// methodchannel.ErrNotImplemented.
func (c *Client) Invoke(ctx context.Context, method string, args map[string]any) (any, error) {
	body, err := json.Marshal(models.MethodCallRequest{Method: method, Args: args})
	if err != nil {
		return nil, fmt.Errorf("encode call: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	// One key per logical call; retryablehttp resends the same request, so
	// every retry repeats it and the bridge drops duplicate deliveries.
	req.Header.Set("Idempotency-Key", uuid.NewString())
	if c.token != "" {
		req.Header.Set("X-API-Key", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}

	return decodeResponse(resp.StatusCode, out)
}

func decodeResponse(status int, body []byte) (any, error) {
	switch status {
	case http.StatusOK:
		return methodchannel.DecodeReply(body)
	case http.StatusNotImplemented:
		return methodchannel.DecodeReply(nil)
	}

	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return nil, &StatusError{Status: status, Message: e.Error}
	}
	return nil, &StatusError{Status: status, Message: http.StatusText(status)}
}

// StatusError is a transport-level failure: the call never reached a plugin.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bridge returned %d: %s", e.Status, e.Message)
}

// leveledLogger adapts zerolog to retryablehttp.LeveledLogger.
type leveledLogger struct {
	l zerolog.Logger
}

var _ retryablehttp.LeveledLogger = leveledLogger{}

func (z leveledLogger) Error(msg string, kv ...interface{}) { z.l.Error().Fields(kv).Msg(msg) }
func (z leveledLogger) Warn(msg string, kv ...interface{}) { z.l.Warn().Fields(kv).Msg(msg) }
func (z leveledLogger) Info(msg string, kv ...interface{}) { z.l.Debug().Fields(kv).Msg(msg) }
func (z leveledLogger) Debug(msg string, kv ...interface{}) { z.l.Debug().Fields(kv).Msg(msg) }
