package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/zeuscene/internal/core/scene"
	"github.com/zeusync/zeuscene/internal/editor"
	"github.com/zeusync/zeuscene/internal/export"
	"github.com/zeusync/zeuscene/internal/runtime"
)

type frameMessage struct {
	Type  string          `json:"type"`
	Frame editor.Snapshot `json:"frame"`
}

func newTestServer(t *testing.T) (*Server, *editor.Editor, *httptest.Server) {
	t.Helper()
	e, _ := newEditor(t)
	srv := NewServer(DefaultServerConfig(), e, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Hub().Close()
		ts.Close()
	})
	return srv, e, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestWebSocketSendsSnapshotOnConnect(t *testing.T) {
	_, e, ts := newTestServer(t)
	id, err := e.AddObject(scene.KindTorus, nil)
	require.NoError(t, err)

	conn := dial(t, ts)
	var msg frameMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, runtime.MessageFrame, msg.Type)
	require.Len(t, msg.Frame.Objects, 1)
	assert.Equal(t, id, msg.Frame.Objects[0].ID)
}

func TestWebSocketCommands(t *testing.T) {
	srv, e, ts := newTestServer(t)
	conn := dial(t, ts)

	var first frameMessage
	require.NoError(t, conn.ReadJSON(&first))
	assert.Empty(t, first.Frame.Objects)

	require.NoError(t, conn.WriteJSON(Command{Action: ActionAddObject, Kind: scene.KindBox, RequestID: "1"}))
	var ack Reply
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, MessageAck, ack.Type)
	assert.Equal(t, "1", ack.RequestID)
	assert.NotEmpty(t, ack.ID)
	_, ok := e.Object(ack.ID)
	assert.True(t, ok)

	require.NoError(t, conn.WriteJSON(Command{Action: "explode", RequestID: "2"}))
	var bad Reply
	require.NoError(t, conn.ReadJSON(&bad))
	assert.Equal(t, MessageError, bad.Type)
	assert.Equal(t, "2", bad.RequestID)
	assert.Contains(t, bad.Error, "unknown action")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	var garbled Reply
	require.NoError(t, conn.ReadJSON(&garbled))
	assert.Equal(t, MessageError, garbled.Type)

	f, err := runtime.EncodeFrame(e.Snapshot())
	require.NoError(t, err)
	require.NoError(t, srv.Hub().SendFrame(context.Background(), f))

	var frame frameMessage
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, runtime.MessageFrame, frame.Type)
	assert.Len(t, frame.Frame.Objects, 1)
}

func TestHubBroadcastsToAllClients(t *testing.T) {
	srv, e, ts := newTestServer(t)
	a := dial(t, ts)
	b := dial(t, ts)
	for _, c := range []*websocket.Conn{a, b} {
		var m frameMessage
		require.NoError(t, c.ReadJSON(&m))
	}
	require.Eventually(t, func() bool { return srv.Hub().Clients() == 2 }, time.Second, 5*time.Millisecond)

	_, _ = e.AddObject(scene.KindCylinder, nil)
	f, _ := runtime.EncodeFrame(e.Snapshot())
	require.NoError(t, srv.Hub().SendFrame(context.Background(), f))

	for _, c := range []*websocket.Conn{a, b} {
		var m frameMessage
		require.NoError(t, c.ReadJSON(&m))
		assert.Len(t, m.Frame.Objects, 1)
	}

	_ = a.Close()
	require.Eventually(t, func() bool { return srv.Hub().Clients() == 1 }, time.Second, 5*time.Millisecond)
}

func TestExportAndImportEndpoints(t *testing.T) {
	_, e, ts := newTestServer(t)
	id, _ := e.AddObject(scene.KindBox, nil)
	require.NoError(t, e.AddKeyframeSnapshot(id, nil))

	res, err := http.Get(ts.URL + "/export?format=yaml")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	_ = res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/yaml", res.Header.Get("Content-Type"))

	doc, err := export.ReadYAML(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Len(t, doc.Objects, 1)
	assert.Len(t, doc.Keyframes, 3)
	assert.Equal(t, 30, doc.Metadata.FPS)

	require.True(t, e.DeleteObject(id))

	res, err = http.Post(ts.URL+"/import?format=yaml", "application/yaml", bytes.NewReader(body))
	require.NoError(t, err)
	_ = res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	_, ok := e.Object(id)
	assert.True(t, ok, "import restores the exported scene")
	assert.Equal(t, []float64{0}, e.KeyTimes(id))
}

func TestImportRejectsBadDocuments(t *testing.T) {
	_, _, ts := newTestServer(t)

	res, err := http.Post(ts.URL+"/import", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, err = http.Post(ts.URL+"/import", "application/json", strings.NewReader(`{"version":"0.1"}`))
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	res, err = http.Get(ts.URL + "/import")
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)

	res, err = http.Get(ts.URL + "/export?format=xml")
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestHealth(t *testing.T) {
	_, e, ts := newTestServer(t)
	_, _ = e.AddObject(scene.KindBox, nil)

	res, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer res.Body.Close()

	var h health
	require.NoError(t, json.NewDecoder(res.Body).Decode(&h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, e.Revision(), h.Revision)
}

func TestRunAndStop(t *testing.T) {
	e, _ := newEditor(t)
	cfg := DefaultServerConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	srv := NewServer(cfg, e, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.ErrorIs(t, srv.Run(context.Background()), ErrServerClosed)
}
