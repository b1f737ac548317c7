package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/orbitclicker/internal/config"
	"github.com/tomz197/orbitclicker/internal/server"
	"github.com/tomz197/orbitclicker/internal/session"
)

const testPlayer = "0x00000000000000000000000000000000000000aB"

func newTestServer(t *testing.T) (*server.Hub, *httptest.Server) {
	t.Helper()
	hub := server.NewHub(config.Default().Game, session.DefaultCatalogs(), nil)
	srv := httptest.NewServer(NewHandler(hub, config.WebConfig{SnapshotRate: 50}, nil).Routes())
	t.Cleanup(func() {
		srv.Close()
		hub.Shutdown(time.Second)
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, player string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?player=" + player
	return websocket.DefaultDialer.Dial(url, nil)
}

func readUntil(t *testing.T, conn *websocket.Conn, kind string) serverMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, payload, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg struct {
			serverMessage
			Snapshot json.RawMessage `json:"snapshot"`
		}
		require.NoError(t, json.Unmarshal(payload, &msg))
		if msg.Type == kind {
			out := msg.serverMessage
			if kind == "snapshot" {
				var snap session.Snapshot
				require.NoError(t, json.Unmarshal(msg.Snapshot, &snap))
				out.Snapshot = &snap
			}
			return out
		}
	}
}

func TestServeWS_RejectsBadAddress(t *testing.T) {
	_, srv := newTestServer(t)
	_, resp, err := dial(t, srv, "not-an-address")
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServeWS_StreamsAndAcceptsInput(t *testing.T) {
	hub, srv := newTestServer(t)
	conn, resp, err := dial(t, srv, testPlayer)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	hello := readUntil(t, conn, "session")
	require.NotEmpty(t, hello.Session)
	s, ok := hub.Get(hello.Session)
	require.True(t, ok)
	assert.Equal(t, testPlayer, s.Player())

	snap := readUntil(t, conn, "snapshot")
	assert.Equal(t, hello.Session, snap.Snapshot.SessionID)
	assert.NotEmpty(t, snap.Snapshot.Blocks)

	require.NoError(t, conn.WriteJSON(clientMessage{Type: "purchase", ID: "packet-injection-1"}))
	res := readUntil(t, conn, "result")
	require.NotNil(t, res.Result)
	assert.True(t, res.Result.OK)
	assert.Equal(t, 50, s.Wallet().Soul)

	require.NoError(t, conn.WriteJSON(clientMessage{Type: "purchase", ID: "asic-farm"}))
	res = readUntil(t, conn, "result")
	assert.False(t, res.Result.OK)
	assert.NotEmpty(t, res.Result.Error)

	require.NoError(t, conn.WriteJSON(clientMessage{Type: "warp"}))
	res = readUntil(t, conn, "result")
	assert.Equal(t, errUnknownAction.Error(), res.Result.Error)
}

func TestServeWS_DisconnectEndsSession(t *testing.T) {
	hub, srv := newTestServer(t)
	conn, resp, err := dial(t, srv, testPlayer)
	require.NoError(t, err)
	defer resp.Body.Close()

	hello := readUntil(t, conn, "session")
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		s, ok := hub.Get(hello.Session)
		return ok && s.Phase() == session.PhaseEnded
	}, 5*time.Second, 10*time.Millisecond)
	assert.Zero(t, hub.Count())
}

func TestServeSummary(t *testing.T) {
	hub, srv := newTestServer(t)
	s, err := hub.Open(testPlayer)
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/api/sessions/" + s.ID() + "/summary")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body summaryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testPlayer, body.Summary.PlayerAddress)
	assert.True(t, strings.HasPrefix(body.Hash, "0x"))
	assert.Len(t, body.Hash, 66)
	// A session younger than the minimum duration fails pre-flight checks.
	assert.False(t, body.Valid)
	assert.NotEmpty(t, body.Error)
}

func TestServeSummary_UnknownSession(t *testing.T) {
	_, srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/sessions/nope/summary")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthAndIndex(t *testing.T) {
	_, srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestServeWS_SessionEndClosesSocket(t *testing.T) {
	hub, srv := newTestServer(t)
	conn, resp, err := dial(t, srv, testPlayer)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	hello := readUntil(t, conn, "session")
	require.True(t, hub.End(hello.Session))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, _, err = conn.ReadMessage()
		if err != nil {
			break
		}
	}
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
