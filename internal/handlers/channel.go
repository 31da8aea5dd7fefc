package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/appstack-bridge/internal/methodchannel"
	"github.com/PratikDhanave/appstack-bridge/internal/models"
	"github.com/PratikDhanave/appstack-bridge/internal/plugin"
)

// IdempotencyKeyHeader names the header that identifies one logical call
// across transport retries.
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLen = 128

// RegisterChannelRoutes registers the method-channel endpoint.
//
// POST /channels/:platform/:channel
// - Requires X-API-Key (tenant context)
// - Body: {"method": "...", "args": {...}}
// - Optional Idempotency-Key header; retries of one call must repeat it so
//   the SDK backend can drop duplicate deliveries
// - 200 with [value] or [code, message, details]; 501 with an empty body
//   when the platform has no handler for the method
func RegisterChannelRoutes(r gin.IRoutes, reg *plugin.Registry) {
	r.POST("/channels/:platform/:channel", func(c *gin.Context) {
		p, ok := reg.Lookup(c.Param("platform"), c.Param("channel"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown channel"})
			return
		}

		var req models.MethodCallRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Method == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid method call"})
			return
		}

		ctx := c.Request.Context()
		if key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)); key != "" {
			if len(key) > maxIdempotencyKeyLen {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key too long"})
				return
			}
			ctx = methodchannel.WithIdempotencyKey(ctx, key)
		}

		result := methodchannel.NewCapture()
		call := &methodchannel.MethodCall{Method: req.Method, Arguments: req.Args}
		p.OnMethodCall(ctx, call, result)

		// The plugin always answers; only a departed client stops the wait.
		reply, err := result.Wait(c.Request.Context())
		if err != nil {
			c.Abort()
			return
		}

		if reply.Kind == methodchannel.ReplyNotImplemented {
			c.Status(http.StatusNotImplemented)
			return
		}

		body, err := methodchannel.EncodeReply(reply)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "reply encoding failed"})
			return
		}
		c.Data(http.StatusOK, "application/json", body)
	})
}
