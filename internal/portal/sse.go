package portal

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleSSEStub acknowledges the event stream connection. Live push is not
// wired yet; clients poll /api/activity in the meantime.
func handleSSEStub() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.String(http.StatusOK, "data: {\"type\":\"connected\"}\n\n")
	}
}
