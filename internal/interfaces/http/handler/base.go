package handler

import (
	"errors"
	"net/http"

	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/aprovacrm/backend/internal/interfaces/http/dto"
	"github.com/aprovacrm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	errNoUser   = errors.New("user ID not found in context")
	errNoTenant = errors.New("tenant ID not found in context")
)

// BaseHandler is embedded by every handler for auth lookup, binding and
// the response envelope.
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDContextKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

func getUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr := middleware.GetJWTUserID(c)
	if userIDStr == "" {
		return uuid.Nil, errNoUser
	}
	return uuid.Parse(userIDStr)
}

// getTenantID returns the empresa resolved by the tenant middleware, or the
// one in the JWT claims on routes the tenant middleware does not cover
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	if id := middleware.GetTenantUUID(c); id != uuid.Nil {
		return id, nil
	}
	tenantIDStr := middleware.GetJWTTenantID(c)
	if tenantIDStr == "" {
		return uuid.Nil, errNoTenant
	}
	return uuid.Parse(tenantIDStr)
}

// authContext returns the tenant and user of an authenticated request. On
// failure it writes a 401 and returns ok=false.
func (h *BaseHandler) authContext(c *gin.Context) (tenantID, userID uuid.UUID, ok bool) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Unauthorized(c, "Empresa não identificada")
		return uuid.Nil, uuid.Nil, false
	}
	userID, err = getUserID(c)
	if err != nil || userID == uuid.Nil {
		h.Unauthorized(c, "Usuário não identificado")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, userID, true
}

// paramUUID parses a path parameter as a UUID. On failure it writes a 400
// and returns ok=false.
func (h *BaseHandler) paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Identificador inválido")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON and bindQuery write the validation error response on failure.
func (h *BaseHandler) bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paginated writes one page of a list. A nil page is sent as [] so clients
// never see data: null.
func Paginated[T any](h *BaseHandler, c *gin.Context, page shared.Paginated[T]) {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(items, page.Total, page.Page, page.PageSize))
}

// Error writes the error envelope with the request id attached.
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

func (h *BaseHandler) ServiceUnavailable(c *gin.Context, message string) {
	h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable, message)
}

func (h *BaseHandler) PayloadTooLarge(c *gin.Context, message string) {
	h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, message)
}

// HandleError writes a DomainError with the status its code maps to. An
// INVALID_INPUT error naming a field becomes ERR_VALIDATION with that field
// in details. Any other error is logged on the gin context and sent as a
// generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		_ = c.Error(err)
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "Erro interno, tente novamente")
		return
	}

	code := dto.NormalizeErrorCode(domainErr.Code)
	if code == dto.ErrCodeInvalidInput && domainErr.Field != "" {
		code = dto.ErrCodeValidation
	}
	resp := dto.NewErrorResponseWithRequestID(code, domainErr.Message, getRequestID(c))
	if domainErr.Field != "" {
		resp.Error.Details = []dto.ValidationDetail{{Field: domainErr.Field, Message: domainErr.Message}}
	}
	c.JSON(dto.GetHTTPStatus(code), resp)
}
