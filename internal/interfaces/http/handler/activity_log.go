package handler

import (
	activityapp "github.com/aprovacrm/backend/internal/application/activity"
	"github.com/aprovacrm/backend/internal/domain/activity"
	"github.com/gin-gonic/gin"
)

// ActivityLogHandler serves the audit trail of the empresa
type ActivityLogHandler struct {
	BaseHandler
	activityService *activityapp.Service
}

// NewActivityLogHandler creates a new ActivityLogHandler
func NewActivityLogHandler(activityService *activityapp.Service) *ActivityLogHandler {
	return &ActivityLogHandler{activityService: activityService}
}

// List godoc
// @ID           listActivityLogs
// @Summary      List activity logs
// @Description  Newest first. Dates are YYYY-MM-DD and inclusive.
// @Tags         activity-logs
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        start_date query string false "From date" format(date)
// @Param        end_date query string false "To date" format(date)
// @Param        user_id query string false "User ID" format(uuid)
// @Param        entity_type query string false "Entity type" Enums(cliente, banco, produto, promotora, proposta, comissao, documento, user)
// @Param        action query string false "Action" Enums(create, update, delete, login, logout)
// @Success      200 {object} APIResponse[activityapp.ListResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /activity-logs [get]
func (h *ActivityLogHandler) List(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	var req activityapp.ListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.activityService.List(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, page)
}

// Users godoc
// @ID           activityLogUsers
// @Summary      Users present in the activity log
// @Description  Feeds the user filter of the log screen
// @Tags         activity-logs
// @Produce      json
// @Success      200 {object} APIResponse[[]activity.UserRef]
// @Security     BearerAuth
// @Router       /activity-logs/users [get]
func (h *ActivityLogHandler) Users(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	users, err := h.activityService.Users(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if users == nil {
		users = []activity.UserRef{}
	}
	h.Success(c, users)
}
