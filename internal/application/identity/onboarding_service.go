package identity

import (
	"context"
	"errors"
	"fmt"

	crmapp "github.com/aprovacrm/backend/internal/application/crm"
	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/identity"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OnboardingProdutoInput is wizard step 2. The banco is not chosen:
// the produto goes to the banco created in step 1.
type OnboardingProdutoInput struct {
	Nome        string
	TipoCredito string
	TaxaJuros   *string
}

// OnboardingService drives the first-login setup wizard
type OnboardingService struct {
	userRepo  identity.UserRepository
	bancoRepo crm.BancoRepository
	bancos    *crmapp.BancoService
	produtos  *crmapp.ProdutoService
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewOnboardingService creates a new OnboardingService
func NewOnboardingService(
	userRepo identity.UserRepository,
	bancoRepo crm.BancoRepository,
	bancos *crmapp.BancoService,
	produtos *crmapp.ProdutoService,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *OnboardingService {
	return &OnboardingService{
		userRepo:  userRepo,
		bancoRepo: bancoRepo,
		bancos:    bancos,
		produtos:  produtos,
		publisher: publisher,
		logger:    logger,
	}
}

// Status reports whether the user already finished the wizard
func (s *OnboardingService) Status(ctx context.Context, userID uuid.UUID) (*OnboardingStatus, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &OnboardingStatus{OnboardingCompleted: user.OnboardingCompleted}, nil
}

// CreateBanco is wizard step 1
func (s *OnboardingService) CreateBanco(ctx context.Context, tenantID, userID uuid.UUID, req crmapp.BancoRequest) (*crmapp.BancoResponse, error) {
	return s.bancos.Create(ctx, tenantID, userID, req)
}

// CreateProduto is wizard step 2. It fails when step 1 was skipped.
func (s *OnboardingService) CreateProduto(ctx context.Context, tenantID, userID uuid.UUID, input OnboardingProdutoInput) (*crmapp.ProdutoResponse, error) {
	banco, err := s.bancoRepo.FindLatest(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeInvalidState, "Cadastre um banco antes de cadastrar o produto")
		}
		return nil, fmt.Errorf("failed to load latest banco: %w", err)
	}

	bancoID := banco.ID
	return s.produtos.Create(ctx, tenantID, userID, crmapp.ProdutoRequest{
		Nome:        input.Nome,
		TipoCredito: input.TipoCredito,
		TaxaJuros:   input.TaxaJuros,
		Status:      string(crm.ProdutoAtivo),
		BancoID:     &bancoID,
	})
}

// Complete marks the wizard as done. Completing twice is harmless.
func (s *OnboardingService) Complete(ctx context.Context, userID uuid.UUID) (*OnboardingStatus, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.OnboardingCompleted {
		return &OnboardingStatus{OnboardingCompleted: true}, nil
	}

	user.CompleteOnboarding()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	events := user.GetDomainEvents()
	user.ClearDomainEvents()
	publishEvents(ctx, s.publisher, s.logger, events)

	s.logger.Info("Onboarding completed", zap.String("user_id", user.ID.String()))
	return &OnboardingStatus{OnboardingCompleted: true}, nil
}
