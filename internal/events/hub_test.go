package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skvortsovm/shop-backend/internal/models"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_BroadcastReachesObserver(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	go hub.Run()

	conn := dialHub(t, hub)
	// Registration goes through the hub loop; give it a beat.
	time.Sleep(50 * time.Millisecond)

	hub.Broadcast([]byte(`{"event":"order:new"}`))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"order:new"}`, string(msg))
}

func TestHub_BroadcastReachesAllObservers(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	go hub.Run()

	a := dialHub(t, hub)
	b := dialHub(t, hub)
	time.Sleep(50 * time.Millisecond)

	hub.Broadcast([]byte("hello"))

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, "hello", string(msg))
	}
}

func TestFanout_EnvelopeShape(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	go hub.Run()
	conn := dialHub(t, hub)
	time.Sleep(50 * time.Millisecond)

	f := &Fanout{Hub: hub}
	order := &models.Order{ID: uuid.New(), Number: "AB12", Status: models.OrderStatusPending}
	f.Publish(context.Background(), EventOrderNew, order)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got struct {
		Event string `json:"event"`
		Order struct {
			Number string `json:"number"`
			Status string `json:"status"`
		} `json:"order"`
		OccurredAt time.Time `json:"occurred_at"`
	}
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, EventOrderNew, got.Event)
	assert.Equal(t, "AB12", got.Order.Number)
	assert.Equal(t, models.OrderStatusPending, got.Order.Status)
	assert.WithinDuration(t, time.Now(), got.OccurredAt, 5*time.Second)
}

func TestFanout_NilSinks(t *testing.T) {
	t.Parallel()

	f := &Fanout{}
	// Must not panic with no sinks attached.
	f.Publish(context.Background(), EventOrderStatusUpdated, &models.Order{ID: uuid.New()})
}
