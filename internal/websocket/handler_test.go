package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdash/internal/config"
	"taskdash/internal/shared/testutil"
	"taskdash/pkg/contracts/events"
)

func newTestServer(t *testing.T, origins []string) (*Hub, *httptest.Server) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(logger, nil)
	hub.Start()

	cfg := config.Default().WebSocket
	server := httptest.NewServer(NewHandler(hub, cfg, origins, logger))
	t.Cleanup(func() {
		hub.Stop()
		server.Close()
	})
	return hub, server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestHandlerUpgradeAndBroadcast(t *testing.T) {
	hub, server := newTestServer(t, []string{"http://localhost:8080"})

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(waitTimeout))

	var welcome events.WebSocketMessage
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, events.MessageTypeConnect, welcome.Type)

	require.NoError(t, hub.BroadcastDatasetReloaded(context.Background(), events.DatasetReloaded{Version: "abc"}))

	var reloaded struct {
		Type events.MessageType     `json:"type"`
		Data events.DatasetReloaded `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&reloaded))
	assert.Equal(t, events.MessageTypeDatasetReloaded, reloaded.Type)
	assert.Equal(t, "abc", reloaded.Data.Version)
}

func TestHandlerRejectsForeignOrigin(t *testing.T) {
	_, server := newTestServer(t, []string{"http://localhost:8080"})

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHandlerAcceptsListedOrigin(t *testing.T) {
	hub, server := newTestServer(t, []string{"http://dashboard.example"})

	header := http.Header{"Origin": []string{"http://dashboard.example"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server), header)
	require.NoError(t, err)
	defer conn.Close()

	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, waitTimeout, 5*time.Millisecond)
}

func TestHandlerPlainHTTPRequest(t *testing.T) {
	_, server := newTestServer(t, nil)

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	http.DefaultClient.CloseIdleConnections()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
