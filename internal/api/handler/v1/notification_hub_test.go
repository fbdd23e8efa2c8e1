package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrdesk/qr-admin-api/internal/domain"
)

func TestNotificationHub_PushesToUserConnections(t *testing.T) {
	hub := NewNotificationHub([]string{"http://localhost:3000"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, 7)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	n := domain.Notification{ID: "n-1", Type: domain.NotificationQrBatchReady, Data: map[string]interface{}{"batch_id": 4}}

	received := make(chan domain.Notification, 1)
	go func() {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var got domain.Notification
		if json.Unmarshal(msg, &got) == nil {
			received <- got
		}
	}()

	// Registration races the dial returning, so push until one arrives.
	var got domain.Notification
	timeout := time.After(3 * time.Second)
wait:
	for {
		select {
		case got = <-received:
			break wait
		case <-time.After(10 * time.Millisecond):
			hub.Push(7, n)
		case <-timeout:
			t.Fatal("notification was not delivered")
		}
	}

	assert.Equal(t, "n-1", got.ID)
	assert.Equal(t, domain.NotificationQrBatchReady, got.Type)

	cancel()
	assert.NoError(t, <-done)
}

func TestNotificationHub_RejectsForeignOrigin(t *testing.T) {
	hub := NewNotificationHub([]string{"http://localhost:3000"})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, 7)
	}))
	defer srv.Close()

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestNotificationHub_PushWithoutListenersDoesNotBlock(t *testing.T) {
	hub := NewNotificationHub(nil)

	for i := 0; i < hubPushSize+10; i++ {
		hub.Push(1, domain.Notification{ID: "x"})
	}
}
