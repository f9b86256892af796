package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/intake/internal/logging"
)

func TestParseTransport(t *testing.T) {
	tg, web, err := ParseTransport("both")
	require.NoError(t, err)
	assert.True(t, tg)
	assert.True(t, web)

	_, _, err = ParseTransport("smtp")
	assert.Error(t, err)
}

func TestHTTPHandler_EndToEnd(t *testing.T) {
	var notes bytes.Buffer
	app, err := NewApp(context.Background(), newTestConfig(t, map[string]string{"LEDGER_BACKEND": "memory"}),
		Options{NotifyOutput: &notes, Logger: logging.NewNop()})
	require.NoError(t, err)

	srv := httptest.NewServer(app.HTTPHandler())
	defer srv.Close()

	for _, in := range []string{"start", "2m", "Classic", "MDF", "none", "confirm"} {
		resp, err := http.Post(srv.URL+"/v1/messages", "application/json",
			strings.NewReader(`{"session_key":"web-1","text":"`+in+`"}`))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, in)
	}
	require.NoError(t, app.Close(context.Background()))
	assert.Contains(t, notes.String(), "Style: Classic")

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body bytes.Buffer
	_, _ = body.ReadFrom(resp.Body)
	assert.Contains(t, body.String(), `intake_submissions_total{outcome="complete"} 1`)
}

func TestServe_TelegramWithoutBot(t *testing.T) {
	app, err := NewApp(context.Background(), newTestConfig(t, map[string]string{"LEDGER_BACKEND": "memory"}),
		Options{NotifyOutput: &bytes.Buffer{}, Logger: logging.NewNop()})
	require.NoError(t, err)
	defer app.Close(context.Background())

	assert.Error(t, app.Serve(context.Background(), true, false, ""))
}
