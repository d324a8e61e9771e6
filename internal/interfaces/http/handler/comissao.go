package handler

import (
	crmapp "github.com/aprovacrm/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
)

// ComissaoHandler handles comissao API endpoints
type ComissaoHandler struct {
	BaseHandler
	comissaoService *crmapp.ComissaoService
}

// NewComissaoHandler creates a new ComissaoHandler
func NewComissaoHandler(comissaoService *crmapp.ComissaoService) *ComissaoHandler {
	return &ComissaoHandler{comissaoService: comissaoService}
}

// ListByProposta godoc
// @ID           listComissoes
// @Summary      List the comissões of a proposta
// @Tags         comissoes
// @Produce      json
// @Param        id path string true "Proposta ID" format(uuid)
// @Success      200 {object} APIResponse[[]crmapp.ComissaoResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /propostas/{id}/comissoes [get]
func (h *ComissaoHandler) ListByProposta(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	propostaID, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	comissoes, err := h.comissaoService.ListByProposta(c.Request.Context(), tenantID, propostaID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if comissoes == nil {
		comissoes = []crmapp.ComissaoResponse{}
	}
	h.Success(c, comissoes)
}

// Create godoc
// @ID           createComissao
// @Summary      Add a comissão to a proposta
// @Tags         comissoes
// @Accept       json
// @Produce      json
// @Param        id path string true "Proposta ID" format(uuid)
// @Param        request body crmapp.ComissaoRequest true "Comissão"
// @Success      201 {object} APIResponse[crmapp.ComissaoResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /propostas/{id}/comissoes [post]
func (h *ComissaoHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	propostaID, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req crmapp.ComissaoRequest
	if !h.bindJSON(c, &req) {
		return
	}
	comissao, err := h.comissaoService.Create(c.Request.Context(), tenantID, userID, propostaID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, comissao)
}

// Update godoc
// @ID           updateComissao
// @Summary      Update a comissão
// @Tags         comissoes
// @Accept       json
// @Produce      json
// @Param        id path string true "Comissão ID" format(uuid)
// @Param        request body crmapp.ComissaoRequest true "Comissão"
// @Success      200 {object} APIResponse[crmapp.ComissaoResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /comissoes/{id} [put]
func (h *ComissaoHandler) Update(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req crmapp.ComissaoRequest
	if !h.bindJSON(c, &req) {
		return
	}
	comissao, err := h.comissaoService.Update(c.Request.Context(), tenantID, userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, comissao)
}

// MarcarComoPago godoc
// @ID           pagarComissao
// @Summary      Mark a comissão as paid
// @Description  data_recebimento defaults to today
// @Tags         comissoes
// @Accept       json
// @Produce      json
// @Param        id path string true "Comissão ID" format(uuid)
// @Param        request body crmapp.MarcarPagoRequest false "Payout date"
// @Success      200 {object} APIResponse[crmapp.ComissaoResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /comissoes/{id}/pagar [post]
func (h *ComissaoHandler) MarcarComoPago(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req crmapp.MarcarPagoRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	comissao, err := h.comissaoService.MarcarComoPago(c.Request.Context(), tenantID, userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, comissao)
}

// Delete godoc
// @ID           deleteComissao
// @Summary      Delete a comissão
// @Tags         comissoes
// @Param        id path string true "Comissão ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /comissoes/{id} [delete]
func (h *ComissaoHandler) Delete(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.comissaoService.Delete(c.Request.Context(), tenantID, userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
