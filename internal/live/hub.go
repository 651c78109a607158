package live

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/guuukimama/shop-manager/internal/sales"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origin policy is enforced by the CORS layer
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event is pushed to every dashboard connected to /stats/live.
type Event struct {
	Type string           `json:"type"`
	Sale sales.SaleRecord `json:"sale"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans committed sales out to websocket clients. Only the Run
// goroutine touches the client set.
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	clients    atomic.Int64
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
		log:        log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	clients := make(map[*client]bool)
	defer func() {
		for c := range clients {
			close(c.send)
		}
		h.clients.Store(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			clients[c] = true
			h.clients.Store(int64(len(clients)))

		case c := <-h.unregister:
			if clients[c] {
				delete(clients, c)
				close(c.send)
				h.clients.Store(int64(len(clients)))
			}

		case msg := <-h.broadcast:
			for c := range clients {
				select {
				case c.send <- msg:
				default:
					// too slow, drop it
					delete(clients, c)
					close(c.send)
					h.log.Warn("dropping slow live client", zap.String("remote", c.conn.RemoteAddr().String()))
				}
			}
			h.clients.Store(int64(len(clients)))
		}
	}
}

// Clients is the number of connected dashboards.
func (h *Hub) Clients() int {
	return int(h.clients.Load())
}

// Publish implements checkout.Publisher. It never blocks the register.
func (h *Hub) Publish(rec sales.SaleRecord) {
	data, err := json.Marshal(Event{Type: "sale", Sale: rec})
	if err != nil {
		h.log.Error("marshal live event", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.log.Warn("live feed backlog full, event dropped", zap.Int64("sale_id", rec.ID.Int64()))
	}
}

// ServeWS upgrades the request and streams events until the client leaves.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	select {
	case h.register <- cl:
	case <-c.Request.Context().Done():
		conn.Close()
		return
	}

	go h.writePump(cl)
	h.readPump(cl)
}

// readPump only watches for disconnects and pongs.
func (h *Hub) readPump(c *client) {
	defer func() {
		// the hub may already have dropped us
		select {
		case h.unregister <- c:
		case <-time.After(time.Second):
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
