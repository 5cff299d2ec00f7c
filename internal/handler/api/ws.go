package api

import (
	"github.com/uday68/VyaparMitra-sub000/internal/realtime"

	"github.com/gin-gonic/gin"
)

type WSHandler struct {
	hub *realtime.Hub
}

func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Negotiate upgrades the connection and hands it to the realtime hub. Token
// validation happens inside the hub so the upgrade handshake stays in one
// place.
func (h *WSHandler) Negotiate(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request)
}
