package dashboard

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
	"go.uber.org/goleak"
)

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()
	event := WidgetEvent{Reason: ReasonAdded, WidgetID: "w1"}
	if err := hook.WidgetUpdated(context.Background(), event); err != nil {
		t.Fatalf("WidgetUpdated returned error: %v", err)
	}
	select {
	case e := <-ch:
		if e.WidgetID != event.WidgetID {
			t.Fatalf("expected widget %s, got %s", event.WidgetID, e.WidgetID)
		}
	default:
		t.Fatalf("expected event to be delivered")
	}
}

func TestBroadcastHookDropsWhenSubscriberIsFull(t *testing.T) {
	hook := NewBroadcastHook()
	_, cancel := hook.Subscribe()
	defer cancel()
	for range subscriberBuffer * 2 {
		require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{Reason: ReasonDeleted}))
	}
}

func TestBroadcastHookCancelAndClose(t *testing.T) {
	hook := NewBroadcastHook()
	_, cancel := hook.Subscribe()
	second, _ := hook.Subscribe()
	assert.Equal(t, 2, hook.Subscribers())

	cancel()
	cancel()
	assert.Equal(t, 1, hook.Subscribers())

	hook.Close()
	_, open := <-second
	assert.False(t, open)
	assert.Zero(t, hook.Subscribers())

	late, _ := hook.Subscribe()
	_, open = <-late
	assert.False(t, open, "subscriptions after close start closed")
}

func TestBroadcastHookServeSSE(t *testing.T) {
	defer goleak.VerifyNone(t)
	hook := NewBroadcastHook()
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		hook.ServeSSE(rec, req)
	}()
	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hook.WidgetUpdated(ctx, WidgetEvent{Reason: ReasonReordered, Order: []string{"b", "a"}}))
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "event: reordered\n")
	assert.Contains(t, body, `"order":["b","a"]`)
	assert.Zero(t, hook.Subscribers())
}

func TestBroadcastHookServeWebSocket(t *testing.T) {
	defer goleak.VerifyNone(t)
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{Reason: ReasonAdded, WidgetID: "w1"}))

	var got WidgetEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, ReasonAdded, got.Reason)
	assert.Equal(t, "w1", got.WidgetID)

	hook.Close()
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error %v", err)
}
