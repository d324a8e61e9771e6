package handler

import (
	crmapp "github.com/aprovacrm/backend/internal/application/crm"
	"github.com/aprovacrm/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
)

// OnboardingProdutoRequest is the first produto created by the setup wizard
type OnboardingProdutoRequest struct {
	Nome        string  `json:"nome" binding:"required,min=1,max=100"`
	TipoCredito string  `json:"tipo_credito" binding:"required,max=100"`
	TaxaJuros   *string `json:"taxa_juros" binding:"omitempty,decimal_range=0:100"`
}

// OnboardingHandler drives the first-login setup wizard
type OnboardingHandler struct {
	BaseHandler
	onboardingService *identity.OnboardingService
}

// NewOnboardingHandler creates a new OnboardingHandler
func NewOnboardingHandler(onboardingService *identity.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboardingService: onboardingService}
}

// Status godoc
// @ID           onboardingStatus
// @Summary      Onboarding status
// @Tags         onboarding
// @Produce      json
// @Success      200 {object} APIResponse[identity.OnboardingStatus]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /onboarding/status [get]
func (h *OnboardingHandler) Status(c *gin.Context) {
	_, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	status, err := h.onboardingService.Status(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// CreateBanco godoc
// @ID           onboardingBanco
// @Summary      Create the first banco
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        request body crmapp.BancoRequest true "Banco"
// @Success      201 {object} APIResponse[crmapp.BancoResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /onboarding/banco [post]
func (h *OnboardingHandler) CreateBanco(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	var req crmapp.BancoRequest
	if !h.bindJSON(c, &req) {
		return
	}
	banco, err := h.onboardingService.CreateBanco(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, banco)
}

// CreateProduto godoc
// @ID           onboardingProduto
// @Summary      Create the first produto
// @Description  The produto is linked to the most recently created banco
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        request body OnboardingProdutoRequest true "Produto"
// @Success      201 {object} APIResponse[crmapp.ProdutoResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /onboarding/produto [post]
func (h *OnboardingHandler) CreateProduto(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	var req OnboardingProdutoRequest
	if !h.bindJSON(c, &req) {
		return
	}
	produto, err := h.onboardingService.CreateProduto(c.Request.Context(), tenantID, userID, identity.OnboardingProdutoInput{
		Nome:        req.Nome,
		TipoCredito: req.TipoCredito,
		TaxaJuros:   req.TaxaJuros,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, produto)
}

// Complete godoc
// @ID           onboardingComplete
// @Summary      Finish onboarding
// @Tags         onboarding
// @Produce      json
// @Success      200 {object} APIResponse[identity.OnboardingStatus]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /onboarding/complete [post]
func (h *OnboardingHandler) Complete(c *gin.Context) {
	_, userID, ok := h.authContext(c)
	if !ok {
		return
	}
	status, err := h.onboardingService.Complete(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}
