package websocket

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/thesrcielos/PadelTracker/internal/dashboard"
	"github.com/thesrcielos/PadelTracker/pkg/logger"
	"github.com/thesrcielos/PadelTracker/websocket/transport"
	"go.uber.org/zap"
)

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
)

// Handler upgrades dashboard connections. Tokens are optional: a tab
// without them starts signed out.
type Handler struct {
	registry *dashboard.Registry
	services dashboard.Services
	log      *logger.Logger
}

func NewHandler(registry *dashboard.Registry, services dashboard.Services, log *logger.Logger) *Handler {
	return &Handler{registry: registry, services: services, log: log}
}

func (h *Handler) Serve(c echo.Context) error {
	accessToken := c.QueryParam("access_token")
	refreshToken := c.QueryParam("refresh_token")

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", err)
		return err
	}

	conn := transport.NewConn(ws, h.log)
	client := dashboard.NewClient(uuid.NewString(), h.services, conn, h.log)
	h.registry.Register(client)
	h.log.Info("dashboard connected", zap.String("client_id", client.ID), zap.Int("connections", h.registry.Len()))

	client.Start(context.Background(), accessToken, refreshToken)
	go listenClientMessages(client, ws, conn, h.registry, h.log)

	return nil
}
