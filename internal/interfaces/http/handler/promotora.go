package handler

import (
	crmapp "github.com/aprovacrm/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
)

// PromotoraHandler handles promotora API endpoints
type PromotoraHandler struct {
	BaseHandler
	promotoraService *crmapp.PromotoraService
}

// NewPromotoraHandler creates a new PromotoraHandler
func NewPromotoraHandler(promotoraService *crmapp.PromotoraService) *PromotoraHandler {
	return &PromotoraHandler{promotoraService: promotoraService}
}

// List godoc
// @ID           listPromotoras
// @Summary      List promotoras
// @Tags         promotoras
// @Produce      json
// @Param        search query string false "Search by nome, CNPJ or email"
// @Param        banco_id query string false "Banco ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]crmapp.PromotoraResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /promotoras [get]
func (h *PromotoraHandler) List(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	var filter crmapp.PromotoraListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.promotoraService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Options godoc
// @ID           promotoraOptions
// @Summary      Promotora options
// @Description  Id and nome of every promotora, for selects
// @Tags         promotoras
// @Produce      json
// @Success      200 {object} APIResponse[[]crm.Option]
// @Security     BearerAuth
// @Router       /promotoras/options [get]
func (h *PromotoraHandler) Options(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	options, err := h.promotoraService.Options(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, options)
}

// GetByID godoc
// @ID           getPromotora
// @Summary      Get a promotora
// @Tags         promotoras
// @Produce      json
// @Param        id path string true "Promotora ID" format(uuid)
// @Success      200 {object} APIResponse[crmapp.PromotoraResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /promotoras/{id} [get]
func (h *PromotoraHandler) GetByID(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	promotora, err := h.promotoraService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, promotora)
}

// Create godoc
// @ID           createPromotora
// @Summary      Create a promotora
// @Tags         promotoras
// @Accept       json
// @Produce      json
// @Param        request body crmapp.PromotoraRequest true "Promotora"
// @Success      201 {object} APIResponse[crmapp.PromotoraResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /promotoras [post]
func (h *PromotoraHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	var req crmapp.PromotoraRequest
	if !h.bindJSON(c, &req) {
		return
	}
	promotora, err := h.promotoraService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, promotora)
}

// Update godoc
// @ID           updatePromotora
// @Summary      Update a promotora
// @Tags         promotoras
// @Accept       json
// @Produce      json
// @Param        id path string true "Promotora ID" format(uuid)
// @Param        request body crmapp.PromotoraRequest true "Promotora"
// @Success      200 {object} APIResponse[crmapp.PromotoraResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /promotoras/{id} [put]
func (h *PromotoraHandler) Update(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req crmapp.PromotoraRequest
	if !h.bindJSON(c, &req) {
		return
	}
	promotora, err := h.promotoraService.Update(c.Request.Context(), tenantID, userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, promotora)
}

// Delete godoc
// @ID           deletePromotora
// @Summary      Delete a promotora
// @Tags         promotoras
// @Param        id path string true "Promotora ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /promotoras/{id} [delete]
func (h *PromotoraHandler) Delete(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.promotoraService.Delete(c.Request.Context(), tenantID, userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
