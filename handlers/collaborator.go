package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"benefits-backend/warehouse"

	"github.com/gin-gonic/gin"
)

// CollaboratorHandler exposes read-only passthrough lookups against the HR
// datawarehouse. Warehouse may be nil when no warehouse is configured; the
// endpoints then answer 503 instead of failing at startup.
type CollaboratorHandler struct {
	Warehouse *warehouse.Client
}

func (h *CollaboratorHandler) available(c *gin.Context) bool {
	if h.Warehouse == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Datawarehouse is not configured"})
		return false
	}
	return true
}

// ListCollaborators runs a filtered listing against the warehouse. Every
// query parameter that names a whitelisted column becomes an equality filter.
func (h *CollaboratorHandler) ListCollaborators(c *gin.Context) {
	if !h.available(c) {
		return
	}

	q := warehouse.CollaboratorQuery{
		Filters: map[string]interface{}{},
	}

	for key, values := range c.Request.URL.Query() {
		switch key {
		case "columns":
			for _, v := range values {
				for _, col := range strings.Split(v, ",") {
					if col = strings.TrimSpace(col); col != "" {
						q.Columns = append(q.Columns, col)
					}
				}
			}
		case "order_by":
			q.OrderBy = values[0]
		case "limit":
			q.Limit, _ = strconv.Atoi(values[0])
		case "offset":
			q.Offset, _ = strconv.Atoi(values[0])
		default:
			if !warehouse.CollaboratorColumns[key] {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown filter: " + key})
				return
			}
			q.Filters[key] = values[0]
		}
	}

	records, err := h.Warehouse.Collaborators(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Warehouse query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"collaborators": records,
		"count":         len(records),
	})
}

func (h *CollaboratorHandler) GetCollaborator(c *gin.Context) {
	if !h.available(c) {
		return
	}

	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil || userID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	record, err := h.Warehouse.CollaboratorByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, warehouse.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Collaborator not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Warehouse query failed"})
		return
	}

	c.JSON(http.StatusOK, record)
}
