package websocket

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"powerpulse/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventsHandler upgrades an authenticated connection and subscribes it to
// the hub until the client disconnects
func EventsHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Token from the Authorization header, with a query-parameter
		// fallback for browser websocket clients
		var tokenString string
		if authz := c.GetHeader("Authorization"); authz != "" {
			parts := strings.Split(authz, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "UNAUTHENTICATED", "message": "Authorization token required"}})
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "UNAUTHENTICATED", "message": "Invalid or expired token"}})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("Websocket upgrade failed: %v", err)
			return
		}

		client := &Client{
			ID:     uuid.NewString(),
			UserID: claims.Subject,
			Conn:   conn,
		}
		hub.Register(client)
		defer hub.Unregister(client)

		// Drain control frames until the peer goes away; events flow only
		// server to client
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
