package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mizutanik/tasktree-api/internal/ws"
	"github.com/stretchr/testify/require"
)

func TestWSHandler_ConnectAndReceive(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	r := gin.New()
	handler := NewWSHandler(hub)
	r.GET("/ws", handler.Connect)

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	header := http.Header{}
	header.Set("Authorization", "Bearer test-token")

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	// The first frame is always the connection ack.
	var ack struct {
		Event   string           `json:"event"`
		Payload ws.ConnectionAck `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&ack))
	require.Equal(t, ws.EventConnected, ack.Event)
	require.NotEmpty(t, ack.Payload.ConnectionID)
	require.Equal(t, "Bearer test-token", ack.Payload.Authorization)

	hub.Publish(ws.EventTaskCreated, map[string]any{"id": 7, "name": "T1"})

	var msg struct {
		Event   string         `json:"event"`
		Payload map[string]any `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, ws.EventTaskCreated, msg.Event)
	require.EqualValues(t, 7, msg.Payload["id"])
	require.Equal(t, "T1", msg.Payload["name"])
}
