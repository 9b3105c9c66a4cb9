package websocket

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/thesrcielos/PadelTracker/internal/dashboard"
	"github.com/thesrcielos/PadelTracker/pkg/logger"
	"github.com/thesrcielos/PadelTracker/websocket/message"
	"github.com/thesrcielos/PadelTracker/websocket/router"
	"github.com/thesrcielos/PadelTracker/websocket/transport"
	"go.uber.org/zap"
)

func listenClientMessages(client *dashboard.Client, ws *websocket.Conn, conn *transport.Conn, registry *dashboard.Registry, log *logger.Logger) {
	defer func() {
		log.Info("dashboard disconnected", zap.String("client_id", client.ID))
		registry.Unregister(client.ID)
		client.Close()
		conn.Close()
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("error reading message", zap.String("client_id", client.ID), zap.Error(err))
			}
			break
		}

		var msg message.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn("error decoding message", zap.String("client_id", client.ID), zap.Error(err))
			continue
		}

		router.RouteMessage(client.Context(), client, msg, log)
	}
}
