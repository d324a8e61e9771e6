package handler

import (
	crmapp "github.com/aprovacrm/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
)

// PropostaHandler handles proposta API endpoints
type PropostaHandler struct {
	BaseHandler
	propostaService *crmapp.PropostaService
}

// NewPropostaHandler creates a new PropostaHandler
func NewPropostaHandler(propostaService *crmapp.PropostaService) *PropostaHandler {
	return &PropostaHandler{propostaService: propostaService}
}

// List godoc
// @ID           listPropostas
// @Summary      List propostas
// @Tags         propostas
// @Produce      json
// @Param        search query string false "Search by finalidade or observações"
// @Param        status query string false "Status" Enums(rascunho, em_analise, aprovada, reprovada, cancelada)
// @Param        cliente_id query string false "Cliente ID" format(uuid)
// @Param        banco_id query string false "Banco ID" format(uuid)
// @Param        produto_id query string false "Produto ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        order_by query string false "Sort field" default(created_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]crmapp.PropostaResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /propostas [get]
func (h *PropostaHandler) List(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	var filter crmapp.PropostaListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.propostaService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Options godoc
// @ID           propostaOptions
// @Summary      Proposta form options
// @Description  Clientes, active bancos and active produtos in one call
// @Tags         propostas
// @Produce      json
// @Success      200 {object} APIResponse[crmapp.PropostaOptions]
// @Security     BearerAuth
// @Router       /propostas/options [get]
func (h *PropostaHandler) Options(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	options, err := h.propostaService.Options(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, options)
}

// GetByID godoc
// @ID           getProposta
// @Summary      Get a proposta
// @Tags         propostas
// @Produce      json
// @Param        id path string true "Proposta ID" format(uuid)
// @Success      200 {object} APIResponse[crmapp.PropostaResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /propostas/{id} [get]
func (h *PropostaHandler) GetByID(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	proposta, err := h.propostaService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, proposta)
}

// Create godoc
// @ID           createProposta
// @Summary      Create a proposta
// @Description  Cliente, banco and produto must belong to the empresa. Status defaults to rascunho.
// @Tags         propostas
// @Accept       json
// @Produce      json
// @Param        request body crmapp.PropostaRequest true "Proposta"
// @Success      201 {object} APIResponse[crmapp.PropostaResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /propostas [post]
func (h *PropostaHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	var req crmapp.PropostaRequest
	if !h.bindJSON(c, &req) {
		return
	}
	proposta, err := h.propostaService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, proposta)
}

// Update godoc
// @ID           updateProposta
// @Summary      Update a proposta
// @Tags         propostas
// @Accept       json
// @Produce      json
// @Param        id path string true "Proposta ID" format(uuid)
// @Param        request body crmapp.PropostaRequest true "Proposta"
// @Success      200 {object} APIResponse[crmapp.PropostaResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /propostas/{id} [put]
func (h *PropostaHandler) Update(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req crmapp.PropostaRequest
	if !h.bindJSON(c, &req) {
		return
	}
	proposta, err := h.propostaService.Update(c.Request.Context(), tenantID, userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, proposta)
}

// ChangeStatus godoc
// @ID           changePropostaStatus
// @Summary      Change the status of a proposta
// @Description  Moving to aprovada or reprovada stamps the decision date; moving back clears it
// @Tags         propostas
// @Accept       json
// @Produce      json
// @Param        id path string true "Proposta ID" format(uuid)
// @Param        request body crmapp.ChangeStatusRequest true "New status"
// @Success      200 {object} APIResponse[crmapp.PropostaResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /propostas/{id}/status [patch]
func (h *PropostaHandler) ChangeStatus(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req crmapp.ChangeStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	proposta, err := h.propostaService.ChangeStatus(c.Request.Context(), tenantID, userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, proposta)
}

// Delete godoc
// @ID           deleteProposta
// @Summary      Delete a proposta
// @Description  Also removes its comissões and documentos
// @Tags         propostas
// @Param        id path string true "Proposta ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /propostas/{id} [delete]
func (h *PropostaHandler) Delete(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.propostaService.Delete(c.Request.Context(), tenantID, userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
