package handler

import (
	"strconv"

	"github.com/aprovacrm/backend/internal/application/dashboard"
	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the home screen figures
type DashboardHandler struct {
	BaseHandler
	dashboardService *dashboard.Service
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// KPIs godoc
// @ID           dashboardKpis
// @Summary      Dashboard KPIs
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} APIResponse[dashboard.KPIs]
// @Security     BearerAuth
// @Router       /dashboard/kpis [get]
func (h *DashboardHandler) KPIs(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	kpis, err := h.dashboardService.KPIs(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, kpis)
}

// Trends godoc
// @ID           dashboardTrends
// @Summary      Propostas created per day
// @Description  One point per day, oldest first, days without propostas included
// @Tags         dashboard
// @Produce      json
// @Param        days query int false "Window in days" default(30) maximum(365)
// @Success      200 {object} APIResponse[[]crm.TrendPoint]
// @Security     BearerAuth
// @Router       /dashboard/trends [get]
func (h *DashboardHandler) Trends(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	days := queryInt(c, "days", dashboard.DefaultTrendDays)
	points, err := h.dashboardService.Trends(c.Request.Context(), tenantID, days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if points == nil {
		points = []crm.TrendPoint{}
	}
	h.Success(c, points)
}

// StatusBreakdown godoc
// @ID           dashboardStatus
// @Summary      Propostas per status
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} APIResponse[[]dashboard.StatusCount]
// @Security     BearerAuth
// @Router       /dashboard/status [get]
func (h *DashboardHandler) StatusBreakdown(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	counts, err := h.dashboardService.StatusBreakdown(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, counts)
}

// RecentPropostas godoc
// @ID           dashboardRecent
// @Summary      Latest propostas
// @Tags         dashboard
// @Produce      json
// @Param        limit query int false "How many" default(5) maximum(50)
// @Success      200 {object} APIResponse[[]crm.RecentProposta]
// @Security     BearerAuth
// @Router       /dashboard/recent [get]
func (h *DashboardHandler) RecentPropostas(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	limit := queryInt(c, "limit", dashboard.DefaultRecentLimit)
	recent, err := h.dashboardService.RecentPropostas(c.Request.Context(), tenantID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if recent == nil {
		recent = []crm.RecentProposta{}
	}
	h.Success(c, recent)
}

// queryInt reads an integer query parameter; the service clamps the range
func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}
