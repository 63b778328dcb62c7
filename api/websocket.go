package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsClient is one connected WebSocket subscriber to the execution
// event feed.
type wsClient struct {
	conn         *websocket.Conn
	send         chan BroadcastEvent
	subscription *Subscription
	broadcaster  *Broadcaster
	mu           sync.Mutex
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := &wsClient{
		conn:        conn,
		send:        make(chan BroadcastEvent, 256),
		broadcaster: s.broadcaster,
	}

	go c.writePump()
	go c.readPump()
}

func (c *wsClient) readPump() {
	defer func() {
		c.cleanup()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			break
		}

		var req SubscriptionRequest
		if err := json.Unmarshal(message, &req); err != nil {
			log.Printf("bad subscription request: %v", err)
			continue
		}
		if req.Type == "subscribe" {
			c.handleSubscription(req)
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
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

func (c *wsClient) handleSubscription(req SubscriptionRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.subscription != nil {
		c.broadcaster.Unsubscribe(c.subscription)
	}

	eventTypes := make([]EventType, 0, len(req.EventTypes))
	for _, et := range req.EventTypes {
		eventTypes = append(eventTypes, EventType(et))
	}

	c.subscription = c.broadcaster.Subscribe(req.SessionID, eventTypes)
	go c.forwardEvents()
}

func (c *wsClient) forwardEvents() {
	if c.subscription == nil {
		return
	}
	for event := range c.subscription.Channel {
		select {
		case c.send <- event:
		default:
		}
	}
}

func (c *wsClient) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subscription != nil {
		c.broadcaster.Unsubscribe(c.subscription)
		c.subscription = nil
	}
}
