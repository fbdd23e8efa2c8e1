package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/qrdesk/qr-admin-api/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 32
	hubPushSize    = 256
)

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	userID uint
}

type delivery struct {
	userID  uint
	payload []byte
}

// NotificationHub fans notifications out to the open websocket connections
// of their user. A user may hold several connections, one per tab.
type NotificationHub struct {
	upgrader   websocket.Upgrader
	clients    map[uint]map[*client]struct{}
	register   chan *client
	unregister chan *client
	push       chan delivery
	done       chan struct{}
}

func NewNotificationHub(allowedOrigins []string) *NotificationHub {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &NotificationHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
		clients:    make(map[uint]map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		push:       make(chan delivery, hubPushSize),
		done:       make(chan struct{}),
	}
}

// Run owns the client registry until ctx is done, then closes every
// connection.
func (h *NotificationHub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, conns := range h.clients {
				for c := range conns {
					close(c.send)
				}
			}
			h.clients = map[uint]map[*client]struct{}{}

			return nil
		case c := <-h.register:
			if h.clients[c.userID] == nil {
				h.clients[c.userID] = make(map[*client]struct{})
			}
			h.clients[c.userID][c] = struct{}{}
		case c := <-h.unregister:
			h.drop(c)
		case d := <-h.push:
			for c := range h.clients[d.userID] {
				select {
				case c.send <- d.payload:
				default:
					// Too slow to keep up, the client reconnects and polls.
					h.drop(c)
				}
			}
		}
	}
}

func (h *NotificationHub) drop(c *client) {
	conns, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok = conns[c]; !ok {
		return
	}

	delete(conns, c)
	close(c.send)
	if len(conns) == 0 {
		delete(h.clients, c.userID)
	}
}

// Push queues n for every connection of userID. It never blocks: when the
// hub is backed up the notification is only available through the feed.
func (h *NotificationHub) Push(userID uint, n domain.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		zap.L().Error("notification not encoded", zap.String("id", n.ID), zap.Error(err))
		return
	}

	select {
	case h.push <- delivery{userID: userID, payload: payload}:
	default:
		zap.L().Warn("notification push dropped", zap.Uint("user_id", userID), zap.String("id", n.ID))
	}
}

// Serve upgrades the request and attaches the connection to userID.
func (h *NotificationHub) Serve(w http.ResponseWriter, r *http.Request, userID uint) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		conn:   conn,
		send:   make(chan []byte, clientSendSize),
		userID: userID,
	}

	select {
	case h.register <- c:
	case <-h.done:
		return conn.Close()
	case <-r.Context().Done():
		return conn.Close()
	}

	go c.writePump()
	go c.readPump(h)

	return nil
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the close and pong frames, clients never send
// anything meaningful.
func (c *client) readPump(h *NotificationHub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Warn("notification socket closed", zap.Uint("user_id", c.userID), zap.Error(err))
			}

			return
		}
	}
}
