package handler

import "github.com/aprovacrm/backend/internal/interfaces/http/dto"

// Swagger-only envelopes. At runtime every handler writes dto.Response; these
// give the generated docs a typed data field.

// APIResponse is the success envelope
// @Description Envelope with the payload in data and pagination in meta on list endpoints
type APIResponse[T any] struct {
	Success bool           `json:"success" example:"true"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the failure envelope
// @Description Envelope with error.code (ERR_*), a Portuguese message and the request id
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}

// MessageData carries a confirmation message
type MessageData struct {
	Message string `json:"message" example:"Sessão encerrada"`
}
