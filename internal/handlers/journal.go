package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/appstack-bridge/internal/attribution"
	"github.com/PratikDhanave/appstack-bridge/internal/auth"
	"github.com/PratikDhanave/appstack-bridge/internal/models"
	"github.com/PratikDhanave/appstack-bridge/internal/store"
)

const maxFailureLimit = 500

// RegisterJournalRoutes registers the read side of the call journal.
//
// GET /journal/events?event_type=...&from=...&to=...
// - Returns the count of journaled events for the window [from,to)
//
// GET /journal/failures?limit=...
// - Returns SDK failures that callers were not told about, newest first
func RegisterJournalRoutes(r gin.IRoutes, st store.Store) {
	r.GET("/journal/events", func(c *gin.Context) {
		tenantID := auth.TenantID(c)
		if tenantID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		eventType := c.Query("event_type")
		fromStr := c.Query("from")
		toStr := c.Query("to")

		if eventType == "" || fromStr == "" || toStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "event_type, from, to are required"})
			return
		}
		if _, ok := attribution.ParseEventType(eventType); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event type: " + eventType})
			return
		}

		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return
		}

		from = from.UTC()
		to = to.UTC()

		if !from.Before(to) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be < to"})
			return
		}

		count, err := st.CountEvents(c.Request.Context(), tenantID, eventType, from, to)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "journal query failed"})
			return
		}

		c.JSON(http.StatusOK, models.EventCountResponse{EventType: eventType, Count: count})
	})

	r.GET("/journal/failures", func(c *gin.Context) {
		tenantID := auth.TenantID(c)
		if tenantID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		limit := 50
		if s := c.Query("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > maxFailureLimit {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
				return
			}
			limit = n
		}

		failures, err := st.RecentFailures(c.Request.Context(), tenantID, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "journal query failed"})
			return
		}
		if failures == nil {
			failures = []models.Failure{}
		}
		c.JSON(http.StatusOK, gin.H{"failures": failures})
	})
}
