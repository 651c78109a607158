package live

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/guuukimama/shop-manager/internal/sales"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/live", hub.ServeWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/live"
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, hub.Clients())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastsSales(t *testing.T) {
	hub, url := startHub(t)

	a, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer a.Close()
	b, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer b.Close()

	waitForClients(t, hub, 2)

	hub.Publish(sales.SaleRecord{IdempotencyKey: "k1", Total: 1100, ServiceType: sales.DineIn})

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatal(err)
		}
		if ev.Type != "sale" || ev.Sale.Total != 1100 {
			t.Fatalf("unexpected event %s", data)
		}
	}
}

func TestHub_ClientLeaves(t *testing.T) {
	hub, url := startHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHub_PublishWithoutClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	// no Run loop: publish must not block once the backlog is full
	for i := 0; i < 100; i++ {
		hub.Publish(sales.SaleRecord{Total: int64(i)})
	}
}
