package handler

import (
	crmapp "github.com/aprovacrm/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProdutoHandler handles produto API endpoints
type ProdutoHandler struct {
	BaseHandler
	produtoService *crmapp.ProdutoService
}

// NewProdutoHandler creates a new ProdutoHandler
func NewProdutoHandler(produtoService *crmapp.ProdutoService) *ProdutoHandler {
	return &ProdutoHandler{produtoService: produtoService}
}

// List godoc
// @ID           listProdutos
// @Summary      List produtos
// @Tags         produtos
// @Produce      json
// @Param        search query string false "Search by nome or tipo de crédito"
// @Param        status query string false "Status" Enums(ativo, inativo)
// @Param        banco_id query string false "Banco ID" format(uuid)
// @Param        tipo_credito query string false "Tipo de crédito"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]crmapp.ProdutoResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /produtos [get]
func (h *ProdutoHandler) List(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	var filter crmapp.ProdutoListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.produtoService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Options godoc
// @ID           produtoOptions
// @Summary      Produto options
// @Description  Active produtos, optionally restricted to one banco
// @Tags         produtos
// @Produce      json
// @Param        banco_id query string false "Banco ID" format(uuid)
// @Success      200 {object} APIResponse[[]crm.ProdutoOption]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /produtos/options [get]
func (h *ProdutoHandler) Options(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	var bancoID *uuid.UUID
	if raw := c.Query("banco_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Identificador inválido")
			return
		}
		bancoID = &id
	}
	options, err := h.produtoService.Options(c.Request.Context(), tenantID, bancoID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, options)
}

// GetByID godoc
// @ID           getProduto
// @Summary      Get a produto
// @Tags         produtos
// @Produce      json
// @Param        id path string true "Produto ID" format(uuid)
// @Success      200 {object} APIResponse[crmapp.ProdutoResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /produtos/{id} [get]
func (h *ProdutoHandler) GetByID(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	produto, err := h.produtoService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, produto)
}

// Create godoc
// @ID           createProduto
// @Summary      Create a produto
// @Tags         produtos
// @Accept       json
// @Produce      json
// @Param        request body crmapp.ProdutoRequest true "Produto"
// @Success      201 {object} APIResponse[crmapp.ProdutoResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /produtos [post]
func (h *ProdutoHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	var req crmapp.ProdutoRequest
	if !h.bindJSON(c, &req) {
		return
	}
	produto, err := h.produtoService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, produto)
}

// Update godoc
// @ID           updateProduto
// @Summary      Update a produto
// @Tags         produtos
// @Accept       json
// @Produce      json
// @Param        id path string true "Produto ID" format(uuid)
// @Param        request body crmapp.ProdutoRequest true "Produto"
// @Success      200 {object} APIResponse[crmapp.ProdutoResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /produtos/{id} [put]
func (h *ProdutoHandler) Update(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req crmapp.ProdutoRequest
	if !h.bindJSON(c, &req) {
		return
	}
	produto, err := h.produtoService.Update(c.Request.Context(), tenantID, userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, produto)
}

// Delete godoc
// @ID           deleteProduto
// @Summary      Delete a produto
// @Tags         produtos
// @Param        id path string true "Produto ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /produtos/{id} [delete]
func (h *ProdutoHandler) Delete(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.produtoService.Delete(c.Request.Context(), tenantID, userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
