package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/appstack-bridge/internal/models"
)

func bridgeStub(t *testing.T, reply string, calls *[]models.MethodCallRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.MethodCallRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		*calls = append(*calls, req)
		if reply == "" {
			w.WriteHeader(http.StatusNotImplemented)
			return
		}
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{"--server", srv.URL, "--retries", "0"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSendEvent(t *testing.T) {
	var calls []models.MethodCallRequest
	srv := bridgeStub(t, `[true]`, &calls)

	out, err := run(t, srv, "send-event", "PURCHASE", "--revenue", "4.5", "--params", `{"sku":"a1"}`)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	require.Len(t, calls, 1)
	assert.Equal(t, "sendEvent", calls[0].Method)
	assert.Equal(t, map[string]any{
		"eventType":  "PURCHASE",
		"revenue":    4.5,
		"parameters": map[string]any{"sku": "a1"},
	}, calls[0].Args)
}

func TestConfigure_LogLevelOnlyWhenSet(t *testing.T) {
	var calls []models.MethodCallRequest
	srv := bridgeStub(t, `[true]`, &calls)

	_, err := run(t, srv, "configure", "key-1")
	require.NoError(t, err)
	_, err = run(t, srv, "configure", "key-1", "--log-level", "3")
	require.NoError(t, err)

	require.Len(t, calls, 2)
	assert.Equal(t, map[string]any{"apiKey": "key-1"}, calls[0].Args)
	assert.Equal(t, map[string]any{"apiKey": "key-1", "logLevel": float64(3)}, calls[1].Args)
}

func TestErrorEnvelopeExitsNonZero(t *testing.T) {
	var calls []models.MethodCallRequest
	srv := bridgeStub(t, `["INVALID_EVENT_TYPE","Invalid event type: NOPE",null]`, &calls)

	out, err := run(t, srv, "send-event", "NOPE")
	require.Error(t, err)
	assert.Contains(t, out, `"code": "INVALID_EVENT_TYPE"`)
}

func TestNotImplemented(t *testing.T) {
	var calls []models.MethodCallRequest
	srv := bridgeStub(t, "", &calls)

	_, err := run(t, srv, "--platform", "android", "appstack-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not implemented")
}

func TestRawCall(t *testing.T) {
	var calls []models.MethodCallRequest
	srv := bridgeStub(t, `[null]`, &calls)

	out, err := run(t, srv, "call", "getAppstackId")
	require.NoError(t, err)
	assert.Equal(t, "null\n", out)

	_, err = run(t, srv, "call", "configure", "not-json")
	assert.Error(t, err)
}

func TestSendEvent_FlagHelp(t *testing.T) {
	cmd := sendEventCmd(&globalOptions{}, &bytes.Buffer{})

	assert.NotContains(t, cmd.Flags().Lookup("name").Usage, "required")
	assert.Contains(t, cmd.Flags().Lookup("revenue").Usage, "android")
	params := cmd.Flags().Lookup("params").Usage
	assert.Contains(t, params, "ios")
	assert.NotContains(t, params, "revenue")
}
