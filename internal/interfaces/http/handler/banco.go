package handler

import (
	"strconv"

	crmapp "github.com/aprovacrm/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
)

// BancoHandler handles banco API endpoints
type BancoHandler struct {
	BaseHandler
	bancoService *crmapp.BancoService
}

// NewBancoHandler creates a new BancoHandler
func NewBancoHandler(bancoService *crmapp.BancoService) *BancoHandler {
	return &BancoHandler{bancoService: bancoService}
}

// List godoc
// @ID           listBancos
// @Summary      List bancos
// @Tags         bancos
// @Produce      json
// @Param        search query string false "Search by nome or CNPJ"
// @Param        ativo query bool false "Only active (true) or inactive (false) bancos"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        order_by query string false "Sort field" default(created_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]crmapp.BancoResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bancos [get]
func (h *BancoHandler) List(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	var filter crmapp.BancoListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.bancoService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Options godoc
// @ID           bancoOptions
// @Summary      Banco options
// @Description  Id and nome of the active bancos, for selects
// @Tags         bancos
// @Produce      json
// @Param        include_inactive query bool false "Also list inactive bancos"
// @Success      200 {object} APIResponse[[]crm.Option]
// @Security     BearerAuth
// @Router       /bancos/options [get]
func (h *BancoHandler) Options(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	includeInactive, _ := strconv.ParseBool(c.Query("include_inactive"))
	options, err := h.bancoService.Options(c.Request.Context(), tenantID, includeInactive)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, options)
}

// GetByID godoc
// @ID           getBanco
// @Summary      Get a banco
// @Tags         bancos
// @Produce      json
// @Param        id path string true "Banco ID" format(uuid)
// @Success      200 {object} APIResponse[crmapp.BancoResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bancos/{id} [get]
func (h *BancoHandler) GetByID(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	banco, err := h.bancoService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, banco)
}

// Create godoc
// @ID           createBanco
// @Summary      Create a banco
// @Tags         bancos
// @Accept       json
// @Produce      json
// @Param        request body crmapp.BancoRequest true "Banco"
// @Success      201 {object} APIResponse[crmapp.BancoResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bancos [post]
func (h *BancoHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	var req crmapp.BancoRequest
	if !h.bindJSON(c, &req) {
		return
	}
	banco, err := h.bancoService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, banco)
}

// Update godoc
// @ID           updateBanco
// @Summary      Update a banco
// @Tags         bancos
// @Accept       json
// @Produce      json
// @Param        id path string true "Banco ID" format(uuid)
// @Param        request body crmapp.BancoRequest true "Banco"
// @Success      200 {object} APIResponse[crmapp.BancoResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bancos/{id} [put]
func (h *BancoHandler) Update(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req crmapp.BancoRequest
	if !h.bindJSON(c, &req) {
		return
	}
	banco, err := h.bancoService.Update(c.Request.Context(), tenantID, userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, banco)
}

// Delete godoc
// @ID           deleteBanco
// @Summary      Delete a banco
// @Description  A banco still referenced by produtos, promotoras or propostas is deactivated instead.
// @Description  The outcome field tells which one happened.
// @Tags         bancos
// @Produce      json
// @Param        id path string true "Banco ID" format(uuid)
// @Success      200 {object} APIResponse[crmapp.BancoDeleteResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bancos/{id} [delete]
func (h *BancoHandler) Delete(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.bancoService.Delete(c.Request.Context(), tenantID, userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
