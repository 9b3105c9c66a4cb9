package transport

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/thesrcielos/PadelTracker/pkg/logger"
	"go.uber.org/zap"
)

type OutgoingMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Conn serializes writes to one websocket connection.
type Conn struct {
	ws  *websocket.Conn
	log *logger.Logger
	mu  sync.Mutex
}

func NewConn(ws *websocket.Conn, log *logger.Logger) *Conn {
	return &Conn{ws: ws, log: log}
}

// Send writes one message; failures are logged since the read loop notices
// a dead connection on its own.
func (c *Conn) Send(msgType string, payload interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ws.WriteJSON(OutgoingMessage{Type: msgType, Payload: payload}); err != nil {
		c.log.Warn("error sending message", zap.String("type", msgType), zap.Error(err))
	}
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.Close()
}
