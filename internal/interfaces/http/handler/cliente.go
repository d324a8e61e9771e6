package handler

import (
	"errors"
	"net/http"

	crmapp "github.com/aprovacrm/backend/internal/application/crm"
	importapp "github.com/aprovacrm/backend/internal/application/import"
	"github.com/gin-gonic/gin"
)

// ClienteHandler handles cliente API endpoints
type ClienteHandler struct {
	BaseHandler
	clienteService *crmapp.ClienteService
	importService  *importapp.ClienteImportService
	maxImportSize  int64
}

// NewClienteHandler creates a new ClienteHandler
func NewClienteHandler(
	clienteService *crmapp.ClienteService,
	importService *importapp.ClienteImportService,
	maxImportSize int64,
) *ClienteHandler {
	return &ClienteHandler{
		clienteService: clienteService,
		importService:  importService,
		maxImportSize:  maxImportSize,
	}
}

// List godoc
// @ID           listClientes
// @Summary      List clientes
// @Description  Paginated list of clientes, searchable by nome, CPF or email
// @Tags         clientes
// @Produce      json
// @Param        search query string false "Search term"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        order_by query string false "Sort field" default(created_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]crmapp.ClienteResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clientes [get]
func (h *ClienteHandler) List(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	var filter crmapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.clienteService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Options godoc
// @ID           clienteOptions
// @Summary      Cliente options
// @Description  Id, nome and CPF of every cliente, for selects
// @Tags         clientes
// @Produce      json
// @Success      200 {object} APIResponse[[]crm.ClienteOption]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clientes/options [get]
func (h *ClienteHandler) Options(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	options, err := h.clienteService.Options(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, options)
}

// GetByID godoc
// @ID           getCliente
// @Summary      Get a cliente
// @Tags         clientes
// @Produce      json
// @Param        id path string true "Cliente ID" format(uuid)
// @Success      200 {object} APIResponse[crmapp.ClienteResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clientes/{id} [get]
func (h *ClienteHandler) GetByID(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	cliente, err := h.clienteService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cliente)
}

// Create godoc
// @ID           createCliente
// @Summary      Create a cliente
// @Description  CPF must be valid and unique within the empresa
// @Tags         clientes
// @Accept       json
// @Produce      json
// @Param        request body crmapp.ClienteRequest true "Cliente"
// @Success      201 {object} APIResponse[crmapp.ClienteResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clientes [post]
func (h *ClienteHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	var req crmapp.ClienteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cliente, err := h.clienteService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cliente)
}

// Update godoc
// @ID           updateCliente
// @Summary      Update a cliente
// @Tags         clientes
// @Accept       json
// @Produce      json
// @Param        id path string true "Cliente ID" format(uuid)
// @Param        request body crmapp.ClienteRequest true "Cliente"
// @Success      200 {object} APIResponse[crmapp.ClienteResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clientes/{id} [put]
func (h *ClienteHandler) Update(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req crmapp.ClienteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cliente, err := h.clienteService.Update(c.Request.Context(), tenantID, userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cliente)
}

// Delete godoc
// @ID           deleteCliente
// @Summary      Delete a cliente
// @Description  Refused while the cliente still has propostas
// @Tags         clientes
// @Param        id path string true "Cliente ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clientes/{id} [delete]
func (h *ClienteHandler) Delete(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.clienteService.Delete(c.Request.Context(), tenantID, userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Import godoc
// @ID           importClientes
// @Summary      Import clientes from CSV
// @Description  Columns nome and cpf are required; email, telefone and endereco are optional.
// @Description  Rows with an existing CPF are skipped, invalid rows are reported.
// @Tags         clientes
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV file"
// @Success      200 {object} APIResponse[importapp.ClienteImportResult]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clientes/import [post]
func (h *ClienteHandler) Import(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.PayloadTooLarge(c, "Arquivo muito grande")
			return
		}
		h.BadRequest(c, "Arquivo CSV obrigatório")
		return
	}
	if h.maxImportSize > 0 && fileHeader.Size > h.maxImportSize {
		h.PayloadTooLarge(c, "Arquivo muito grande")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Não foi possível ler o arquivo")
		return
	}
	defer file.Close()

	result, err := h.importService.Import(c.Request.Context(), tenantID, userID, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
