package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inputcap/internal/capture"
	"inputcap/internal/config"
	"inputcap/internal/event"
	"inputcap/internal/sink"
)

type wireMessage struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

func streamServer(t *testing.T) (*Server, *sink.Sink, *httptest.Server) {
	t.Helper()
	snk := sink.New()
	s := NewServer(&config.Manager{}, capture.NewController(&fakeSource{}), &fakeControl{}, snk)
	srv := httptest.NewServer(http.HandlerFunc(s.stream.handleWebSocket))
	t.Cleanup(srv.Close)
	return s, snk, srv
}

func dialStream(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) wireMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg wireMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestStreamDeliversEvents(t *testing.T) {
	_, snk, srv := streamServer(t)
	conn := dialStream(t, srv)

	// Subscribing yields the current capture state first.
	msg := readMessage(t, conn)
	assert.Equal(t, "status", msg.Type)
	assert.Equal(t, false, msg.Payload["capturing"])

	snk.Send(event.NewMouseMove(12, 34))
	msg = readMessage(t, conn)
	require.Equal(t, "event", msg.Type)
	assert.Equal(t, "mouseMove", msg.Payload["type"])
	assert.Equal(t, 12.0, msg.Payload["x"])
	assert.Equal(t, 34.0, msg.Payload["y"])
}

func TestStreamReplacesSubscriber(t *testing.T) {
	_, snk, srv := streamServer(t)

	first := dialStream(t, srv)
	readMessage(t, first)

	// A second connection takes over; reading its status message proves the
	// swap has happened.
	second := dialStream(t, srv)
	readMessage(t, second)

	snk.Send(event.NewMouseMove(1, 2))
	msg := readMessage(t, second)
	assert.Equal(t, "event", msg.Type)

	// The replaced connection was closed by the server.
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	var stale wireMessage
	assert.Error(t, first.ReadJSON(&stale))
}

func TestStreamDetachClearsRegistration(t *testing.T) {
	s, snk, srv := streamServer(t)

	conn := dialStream(t, srv)
	readMessage(t, conn)
	conn.Close()

	require.Eventually(t, func() bool {
		return s.stream.current.Load() == nil
	}, 2*time.Second, 10*time.Millisecond)

	// Delivery without a subscriber is a silent no-op.
	snk.Send(event.NewMouseMove(1, 1))
}

func TestWindowErrorPushedToSubscriber(t *testing.T) {
	s, _, srv := streamServer(t)

	conn := dialStream(t, srv)
	readMessage(t, conn)

	rec := httptest.NewRecorder()
	s.windowResult(rec, errors.New("no active window"))
	assert.Equal(t, false, decodeBody(t, rec)["ok"])

	msg := readMessage(t, conn)
	require.Equal(t, "error", msg.Type)
	assert.Equal(t, "no active window", msg.Payload["message"])
}
