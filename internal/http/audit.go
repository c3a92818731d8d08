package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bookbrief/bookbrief/internal/database/audit"
	"github.com/bookbrief/bookbrief/internal/entities"
)

type AuditController struct {
	events AuditLister
}

func NewAuditController(events AuditLister) *AuditController {
	return &AuditController{events: events}
}

// GET /api/admin/audit?page=&limit=&type=&entity_type=&entity_id=&user_id=
func (ac *AuditController) List(c *gin.Context) {
	q := parseAdminQuery(c)
	filter := audit.Filter{
		EventType:  entities.AuditEventType(c.Query("type")),
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
	}
	if raw := c.Query("user_id"); raw != "" {
		userID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondBadRequest(c, "invalid user_id")
			return
		}
		filter.UserID = uint(userID)
	}

	page, err := ac.events.List(c.Request.Context(), filter, q.request())
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}
	respondPage(c, page, "Audit events fetched successfully")
}
