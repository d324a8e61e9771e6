package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	crmapp "github.com/aprovacrm/backend/internal/application/crm"
	"github.com/aprovacrm/backend/internal/interfaces/http/dto"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// DocumentoHandler handles documento API endpoints
type DocumentoHandler struct {
	BaseHandler
	documentoService *crmapp.DocumentoService
}

// NewDocumentoHandler creates a new DocumentoHandler
func NewDocumentoHandler(documentoService *crmapp.DocumentoService) *DocumentoHandler {
	return &DocumentoHandler{documentoService: documentoService}
}

// ListByProposta godoc
// @ID           listDocumentos
// @Summary      List the documentos of a proposta
// @Description  Pending uploads are not listed
// @Tags         documentos
// @Produce      json
// @Param        id path string true "Proposta ID" format(uuid)
// @Success      200 {object} APIResponse[[]crmapp.DocumentoResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /propostas/{id}/documentos [get]
func (h *DocumentoHandler) ListByProposta(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	propostaID, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	docs, err := h.documentoService.ListByProposta(c.Request.Context(), tenantID, propostaID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if docs == nil {
		docs = []crmapp.DocumentoResponse{}
	}
	h.Success(c, docs)
}

// Upload godoc
// @ID           uploadDocumento
// @Summary      Upload a documento
// @Description  multipart/form-data streams the file through the API and activates it.
// @Description  A JSON body instead registers a pending documento and returns a presigned upload URL;
// @Description  the client PUTs the file there and then calls the confirm endpoint.
// @Tags         documentos
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Param        id path string true "Proposta ID" format(uuid)
// @Param        file formData file false "File (multipart upload)"
// @Param        request body crmapp.CreateDocumentoRequest false "File metadata (presigned upload)"
// @Success      201 {object} APIResponse[crmapp.DocumentoResponse]
// @Success      202 {object} APIResponse[crmapp.DocumentoUploadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /propostas/{id}/documentos [post]
func (h *DocumentoHandler) Upload(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	propostaID, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var req crmapp.CreateDocumentoRequest
		if !h.bindJSON(c, &req) {
			return
		}
		upload, err := h.documentoService.RequestUpload(c.Request.Context(), tenantID, userID, propostaID, req)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, dto.NewSuccessResponse(upload))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.PayloadTooLarge(c, "Arquivo muito grande")
			return
		}
		h.BadRequest(c, "Arquivo obrigatório")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Não foi possível ler o arquivo")
		return
	}
	defer file.Close()

	contentType, err := sniffContentType(file)
	if err != nil {
		h.BadRequest(c, "Não foi possível ler o arquivo")
		return
	}

	doc, err := h.documentoService.Upload(c.Request.Context(), tenantID, userID, propostaID,
		filepath.Base(fileHeader.Filename), contentType, fileHeader.Size, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// Confirm godoc
// @ID           confirmDocumento
// @Summary      Confirm a presigned upload
// @Description  Activates a pending documento once the object exists in storage
// @Tags         documentos
// @Produce      json
// @Param        id path string true "Documento ID" format(uuid)
// @Success      200 {object} APIResponse[crmapp.DocumentoResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documentos/{id}/confirm [post]
func (h *DocumentoHandler) Confirm(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	doc, err := h.documentoService.Confirm(c.Request.Context(), tenantID, userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Download godoc
// @ID           downloadDocumento
// @Summary      Download a documento
// @Description  Returns a short-lived presigned URL
// @Tags         documentos
// @Produce      json
// @Param        id path string true "Documento ID" format(uuid)
// @Success      200 {object} APIResponse[crmapp.DocumentoDownloadResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documentos/{id}/download [get]
func (h *DocumentoHandler) Download(c *gin.Context) {
	tenantID, _, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	link, err := h.documentoService.Download(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, link)
}

// Delete godoc
// @ID           deleteDocumento
// @Summary      Delete a documento
// @Tags         documentos
// @Param        id path string true "Documento ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documentos/{id} [delete]
func (h *DocumentoHandler) Delete(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.documentoService.Delete(c.Request.Context(), tenantID, userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// sniffContentType detects the media type from the file content and rewinds
// the file. The declared part header is ignored so a renamed file cannot pass
// as a PDF.
func sniffContentType(file io.ReadSeeker) (string, error) {
	detected, err := mimetype.DetectReader(file)
	if err != nil {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	mediaType, _, err := mime.ParseMediaType(detected.String())
	if err != nil {
		return detected.String(), nil
	}
	return mediaType, nil
}
