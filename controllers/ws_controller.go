package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kendall-kelly/estate-inquiries-api/logger"
	"github.com/kendall-kelly/estate-inquiries-api/realtime"
	"github.com/kendall-kelly/estate-inquiries-api/services"
)

// WSHandler upgrades entitled callers to a websocket topic subscription
type WSHandler struct {
	hub            *realtime.Hub
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a handler; an empty origin list allows every origin
func NewWSHandler(hub *realtime.Hub, allowedOrigins []string) *WSHandler {
	h := &WSHandler{
		hub:            hub,
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WSHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.allowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// Subscribe handles GET /api/v1/ws?topic=...
func (h *WSHandler) Subscribe(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	topic := c.Query("topic")
	if topic == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "topic is required")
		return
	}
	if !services.TopicEntitled(caller, topic) {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "You may not subscribe to this topic")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		logger.Get().Warn().Err(err).Str("topic", topic).Msg("websocket upgrade failed")
		return
	}

	client := realtime.NewClient(h.hub, conn, topic)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
