package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/appstack-bridge/internal/attribution"
	"github.com/PratikDhanave/appstack-bridge/internal/bridge"
	"github.com/PratikDhanave/appstack-bridge/internal/channelclient"
	"github.com/PratikDhanave/appstack-bridge/internal/config"
	"github.com/PratikDhanave/appstack-bridge/internal/journal"
	"github.com/PratikDhanave/appstack-bridge/internal/store"
)

const testKey = "tenant-key-123"

type errClient struct {
	attribution.NopClient
}

func (errClient) SendEvent(context.Context, attribution.Event) error {
	return assert.AnError
}

func newTestServer(t *testing.T, client func(store.Store) attribution.Client) (*httptest.Server, store.Store) {
	t.Helper()

	router, st := newTestRouter(t, client)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, st
}

func newTestRouter(t *testing.T, client func(store.Store) attribution.Client) (http.Handler, store.Store) {
	t.Helper()

	cfg := config.Config{
		APIKeys:    map[string]string{testKey: "tenant1"},
		Workers:    4,
		IOSVersion: "17.0",
		Platforms:  []string{"android", "ios", "ios_legacy"},
	}
	st := store.NewMemoryStore()
	logger := zerolog.Nop()

	var c attribution.Client = journal.NewClient(st, logger)
	if client != nil {
		c = client(st)
	}

	b, err := bridge.New(cfg, c, journal.NewFailureRecorder(st, logger), logger)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = b.Close(ctx)
	})
	return NewRouter(cfg, st, b.Registry, logger), st
}

func invoke(t *testing.T, srv *httptest.Server, platform, method string, args map[string]any) (int, []byte) {
	t.Helper()

	body, err := json.Marshal(map[string]any{"method": method, "args": args})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/channels/"+platform+"/appstack_plugin", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testKey)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.Bytes()
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestChannel_Unauthorized(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/channels/ios/appstack_plugin", "application/json",
		bytes.NewReader([]byte(`{"method":"configure"}`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChannel_UnknownPlatformAndBadBody(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	status, _ := invoke(t, srv, "web", "configure", nil)
	assert.Equal(t, http.StatusNotFound, status)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/channels/ios/appstack_plugin", bytes.NewReader([]byte(`{`)))
	req.Header.Set("X-API-Key", testKey)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChannel_NotImplemented(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	status, body := invoke(t, srv, "android", "getAppstackId", nil)
	assert.Equal(t, http.StatusNotImplemented, status)
	assert.Empty(t, body)

	status, _ = invoke(t, srv, "ios", "getPlatformVersion", nil)
	assert.Equal(t, http.StatusNotImplemented, status)
}

func TestChannel_ConfigureAndSendEvent(t *testing.T) {
	srv, st := newTestServer(t, nil)

	status, body := invoke(t, srv, "ios", "isSdkDisabled", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[true]`, string(body))

	status, body = invoke(t, srv, "ios", "configure", map[string]any{"apiKey": "abc123", "logLevel": 2})
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[true]`, string(body))

	cfg, err := st.TenantConfig(context.Background(), "tenant1")
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Nil(t, cfg.EndpointBaseURL)

	status, body = invoke(t, srv, "ios", "getAppstackId", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `["`+cfg.AppstackID+`"]`, string(body))

	status, body = invoke(t, srv, "android", "sendEvent", map[string]any{
		"eventType": "PURCHASE", "eventName": "checkout", "revenue": 9.99,
	})
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[true]`, string(body))

	status, body = invoke(t, srv, "android", "sendEvent", map[string]any{"eventType": "BOGUS"})
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `["INVALID_EVENT_TYPE","Invalid event type: BOGUS",null]`, string(body))

	status, body = invoke(t, srv, "android", "configure", map[string]any{"apiKey": ""})
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `["INVALID_ARGUMENTS","API key is required",null]`, string(body))

	status, body = invoke(t, srv, "android", "enableAppleAdsAttribution", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[false]`, string(body))

	now := time.Now().UTC()
	q := url.Values{}
	q.Set("event_type", "PURCHASE")
	q.Set("from", now.Add(-time.Hour).Format(time.RFC3339))
	q.Set("to", now.Add(time.Hour).Format(time.RFC3339))
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/journal/events?"+q.Encode(), nil)
	req.Header.Set("X-API-Key", testKey)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count struct {
		Count int64 `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&count))
	assert.Equal(t, int64(1), count.Count)
}

func TestChannel_SwallowedFailuresAreJournaled(t *testing.T) {
	srv, _ := newTestServer(t, func(store.Store) attribution.Client { return errClient{} })

	status, body := invoke(t, srv, "android", "sendEvent", map[string]any{"eventType": "LOGIN"})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "EVENT_SEND_ERROR")

	status, body = invoke(t, srv, "ios", "sendEvent", map[string]any{"eventType": "LOGIN"})
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[true]`, string(body))

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/journal/failures", nil)
	req.Header.Set("X-API-Key", testKey)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Failures []struct {
			Platform string `json:"platform"`
			Method   string `json:"method"`
			Error    string `json:"error"`
		} `json:"failures"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Failures, 1, "only the swallowed failure is journaled")
	assert.Equal(t, "ios", out.Failures[0].Platform)
	assert.Equal(t, "sendEvent", out.Failures[0].Method)
}

func TestJournal_Validation(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	for _, q := range []string{
		"",
		"event_type=BOGUS&from=2026-01-01T00:00:00Z&to=2026-01-02T00:00:00Z",
		"event_type=LOGIN&from=yesterday&to=2026-01-02T00:00:00Z",
		"event_type=LOGIN&from=2026-01-02T00:00:00Z&to=2026-01-01T00:00:00Z",
	} {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/journal/events?"+q, nil)
		req.Header.Set("X-API-Key", testKey)
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestChannel_RetriedSendEventJournaledOnce(t *testing.T) {
	router, st := newTestRouter(t, nil)

	// Request 1 is configure. Request 2, the first sendEvent delivery,
	// reaches the plugin but its reply is lost.
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 2 {
			router.ServeHTTP(httptest.NewRecorder(), r)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := channelclient.New(channelclient.Options{
		BaseURL: srv.URL, Platform: "android", Token: testKey, RetryMax: 2,
	})
	require.NoError(t, err)

	ctx := context.Background()
	ok, err := c.Configure(ctx, channelclient.ConfigureArgs{APIKey: "abc123"})
	require.NoError(t, err)
	require.True(t, ok)

	revenue := 9.99
	ok, err = c.SendEvent(ctx, channelclient.EventArgs{EventType: "PURCHASE", Revenue: &revenue})
	require.NoError(t, err)
	assert.True(t, ok)
	require.Equal(t, int32(3), hits.Load(), "the lost reply was retried")

	now := time.Now()
	n, err := st.CountEvents(ctx, "tenant1", "PURCHASE", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestChannel_DistinctIdempotencyKeysJournalSeparately(t *testing.T) {
	srv, st := newTestServer(t, nil)

	status, _ := invoke(t, srv, "android", "configure", map[string]any{"apiKey": "abc123"})
	require.Equal(t, http.StatusOK, status)

	send := func(key string) {
		body := []byte(`{"method":"sendEvent","args":{"eventType":"LOGIN"}}`)
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/channels/ios/appstack_plugin", bytes.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("X-API-Key", testKey)
		req.Header.Set("Idempotency-Key", key)
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	send("k1")
	send("k1")
	send("k2")

	now := time.Now()
	n, err := st.CountEvents(context.Background(), "tenant1", "LOGIN", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
