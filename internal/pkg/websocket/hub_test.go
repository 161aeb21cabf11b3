package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func receive(t *testing.T, ch <-chan []byte) Event {
	t.Helper()
	select {
	case data := <-ch:
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHub_DeliversToUserWithIncreasingSeq(t *testing.T) {
	hub := startHub(t)

	alice := &Client{hub: hub, send: make(chan []byte, 8), userID: 1}
	bob := &Client{hub: hub, send: make(chan []byte, 8), userID: 2}
	hub.register <- alice
	hub.register <- bob

	hub.Publish(1, EventNotification, map[string]string{"title": "first"})
	hub.Publish(2, EventMessage, map[string]string{"content": "hi bob"})
	hub.Publish(1, EventMessage, map[string]string{"content": "second"})

	first := receive(t, alice.send)
	second := receive(t, alice.send)
	bobs := receive(t, bob.send)

	assert.Equal(t, EventNotification, first.Type)
	assert.Equal(t, EventMessage, second.Type)
	assert.Less(t, first.Seq, second.Seq)
	assert.Equal(t, int64(2), bobs.Seq)
	assert.Empty(t, alice.send)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t)

	c := &Client{hub: hub, send: make(chan []byte, 1), userID: 7}
	hub.register <- c
	hub.unregister <- c

	_, ok := <-c.send
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ClientCount(7))
}

func TestHub_LeaveAfterShutdownDoesNotBlock(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	c := &Client{hub: hub, send: make(chan []byte, 1), userID: 3}
	require.True(t, hub.join(c))

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	left := make(chan struct{})
	go func() {
		hub.leave(c)
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(2 * time.Second):
		t.Fatal("leave blocked after the hub stopped")
	}

	assert.False(t, hub.join(&Client{hub: hub, send: make(chan []byte, 1), userID: 4}))
	assert.Equal(t, 0, hub.ClientCount(3))
}

func TestHandler_ServePushesEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := startHub(t)
	handler := NewHandler(hub, "", zerolog.Nop())

	router := gin.New()
	router.GET("/ws", func(c *gin.Context) { handler.Serve(c, 99) })
	srv := httptest.NewServer(router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount(99) == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(99, EventNotification, map[string]string{"title": "hello"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, EventNotification, ev.Type)
	assert.Equal(t, int64(1), ev.Seq)
}
