package http

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bookbrief/bookbrief/internal/admin"
	"github.com/bookbrief/bookbrief/internal/entities"
)

// DashboardController serves the tabbed back-office overview.
type DashboardController struct {
	dashboard DashboardLoader
}

func NewDashboardController(dashboard DashboardLoader) *DashboardController {
	return &DashboardController{dashboard: dashboard}
}

// GET /api/admin/dashboard/:section?page=&limit=&search=&role=&active=&type=
func (dc *DashboardController) Show(c *gin.Context) {
	q := parseAdminQuery(c)
	section, err := admin.ParseSection(c.Param("section"), admin.Query{
		Page:   q.Page,
		Limit:  q.Limit,
		Search: q.Search,
	})
	if errors.Is(err, admin.ErrUnknownSection) {
		respondNotFound(c, "Section")
		return
	}

	switch s := section.(type) {
	case admin.UsersSection:
		s.Role = entities.UserRole(c.Query("role"))
		section = s
	case admin.CategoriesSection:
		if active, err := strconv.ParseBool(c.Query("active")); err == nil {
			s.Active = &active
		}
		section = s
	case admin.AuditSection:
		s.EventType = entities.AuditEventType(c.Query("type"))
		section = s
	}

	panel, err := dc.dashboard.Load(c.Request.Context(), section)
	if err != nil {
		respondInternalError(c, err, "load dashboard")
		return
	}
	respondData(c, panel, "")
}

// GET /api/admin/dashboard
func (dc *DashboardController) Sections(c *gin.Context) {
	respondData(c, admin.SectionNames(), "")
}
