package orderControllers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/denookoyo/marketplace-api/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type orderEvent struct {
	Type  string       `json:"type"`
	Order models.Order `json:"order"`
}

var (
	feedMu      sync.Mutex
	feedClients = make(map[*websocket.Conn]bool)
)

// GET /orders/feed — seller console subscribes here for live order events.
func OrderFeedHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	feedMu.Lock()
	feedClients[conn] = true
	feedMu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			feedMu.Lock()
			delete(feedClients, conn)
			feedMu.Unlock()
			break
		}
	}
}

// broadcastOrderEvent fans an event out to connected consoles. Best effort:
// slow or dead clients are dropped on their next read.
func broadcastOrderEvent(eventType string, order models.Order) {
	data, err := json.Marshal(orderEvent{Type: eventType, Order: order})
	if err != nil {
		return
	}
	feedMu.Lock()
	defer feedMu.Unlock()
	for client := range feedClients {
		_ = client.WriteMessage(websocket.TextMessage, data)
	}
}
