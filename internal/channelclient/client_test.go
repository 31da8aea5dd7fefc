package channelclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/appstack-bridge/internal/methodchannel"
	"github.com/PratikDhanave/appstack-bridge/internal/models"
)

type recorded struct {
	path           string
	key            string
	idempotencyKey string
	call           models.MethodCallRequest
}

func newServer(t *testing.T, status int, body string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.path = r.URL.Path
		rec.key = r.Header.Get("X-API-Key")
		rec.idempotencyKey = r.Header.Get("Idempotency-Key")
		_ = json.NewDecoder(r.Body).Decode(&rec.call)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func newClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(Options{BaseURL: baseURL, Platform: "ios", Token: "secret"})
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{Platform: "ios"})
	assert.Error(t, err)
	_, err = New(Options{BaseURL: "http://localhost:8080"})
	assert.Error(t, err)
}

func TestInvoke_Success(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `[true]`)
	c := newClient(t, srv.URL+"/")

	ok, err := c.Configure(context.Background(), ConfigureArgs{APIKey: "abc", IsDebug: true})
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, "/channels/ios/appstack_plugin", rec.path)
	assert.Equal(t, "secret", rec.key)
	assert.Equal(t, "configure", rec.call.Method)
	assert.Equal(t, map[string]any{"apiKey": "abc", "isDebug": true}, rec.call.Args)
}

func TestInvoke_ErrorEnvelope(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `["INVALID_EVENT_TYPE","Invalid event type: NOPE",null]`)
	c := newClient(t, srv.URL)

	revenue := 1.5
	_, err := c.SendEvent(context.Background(), EventArgs{EventType: "NOPE", Revenue: &revenue})
	require.Error(t, err)

	var me *methodchannel.Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "INVALID_EVENT_TYPE", me.Code)
	assert.Equal(t, "Invalid event type: NOPE", me.Message)
	assert.Equal(t, map[string]any{"eventType": "NOPE", "revenue": 1.5}, rec.call.Args)
}

func TestInvoke_NotImplemented(t *testing.T) {
	srv, _ := newServer(t, http.StatusNotImplemented, "")
	c := newClient(t, srv.URL)

	_, err := c.AppstackID(context.Background())
	assert.True(t, IsNotImplemented(err))
}

func TestInvoke_NullAppstackID(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `[null]`)
	c := newClient(t, srv.URL)

	id, err := c.AppstackID(context.Background())
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestInvoke_StatusError(t *testing.T) {
	srv, _ := newServer(t, http.StatusUnauthorized, `{"error":"invalid or missing X-API-Key"}`)
	c := newClient(t, srv.URL)

	_, err := c.IsSDKDisabled(context.Background())
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Status)
	assert.Equal(t, "invalid or missing X-API-Key", se.Message)
}

func TestInvoke_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	keys := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys <- r.Header.Get("Idempotency-Key")
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[false]`))
	}))
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL, Platform: "android", RetryMax: 2})
	require.NoError(t, err)

	ok, err := c.EnableAppleAdsAttribution(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	require.Equal(t, int32(2), hits.Load())

	first, retry := <-keys, <-keys
	assert.NotEmpty(t, first)
	assert.Equal(t, first, retry, "retries repeat the call's idempotency key")
}

func TestInvoke_FreshIdempotencyKeyPerCall(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `[true]`)
	c := newClient(t, srv.URL)

	_, err := c.SendEvent(context.Background(), EventArgs{EventType: "LOGIN"})
	require.NoError(t, err)
	first := rec.idempotencyKey

	_, err = c.SendEvent(context.Background(), EventArgs{EventType: "LOGIN"})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.idempotencyKey)
	assert.NotEqual(t, first, rec.idempotencyKey)
}

func TestInvoke_UnexpectedReply(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `["yes"]`)
	c := newClient(t, srv.URL)

	_, err := c.IsSDKDisabled(context.Background())
	assert.Error(t, err)
}
