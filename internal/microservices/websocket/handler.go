package websocket

import (
	"context"
	"net/http"
	"strings"

	"coquiz/internal/attach"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HTTP upgrade handler to WebSocket connections

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// content is served from another origin; the attach token is the gate
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// TokenValidator checks an attach token and returns its subject.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

var _ TokenValidator = (*attach.TokenService)(nil)

// WSHandler: authenticate the attach token, then upgrade to WebSocket
func WSHandler(hub *Hub, tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: attach token required"})
			return
		}

		deviceID, err := tokens.ValidateToken(token)
		if err != nil {
			hub.logger.Warn("attach_token_rejected",
				"remote_addr", c.ClientIP(),
				"error", err.Error(),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: invalid attach token"})
			return
		}

		// upgrade HTTP connection to WebSocket
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// the upgrader has already written an error response
			hub.logger.Warn("websocket_upgrade_failed", "error", err.Error())
			return
		}

		// the request context ends when this handler returns
		hub.Serve(context.WithoutCancel(c.Request.Context()), conn, deviceID)
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
