package crm

import (
	"context"
	"fmt"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PromotoraService handles promotora-related business operations
type PromotoraService struct {
	promotoraRepo crm.PromotoraRepository
	bancoRepo     crm.BancoRepository
	events        eventPublisher
	logger        *zap.Logger
}

// NewPromotoraService creates a new PromotoraService
func NewPromotoraService(
	promotoraRepo crm.PromotoraRepository,
	bancoRepo crm.BancoRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PromotoraService {
	return &PromotoraService{
		promotoraRepo: promotoraRepo,
		bancoRepo:     bancoRepo,
		events:        eventPublisher{publisher: publisher, logger: logger},
		logger:        logger,
	}
}

// Create registers a promotora working with a banco
func (s *PromotoraService) Create(ctx context.Context, tenantID, userID uuid.UUID, req PromotoraRequest) (*PromotoraResponse, error) {
	input, err := req.toInput()
	if err != nil {
		return nil, err
	}
	promotora, err := crm.NewPromotora(tenantID, input)
	if err != nil {
		return nil, err
	}
	if err := s.checkBanco(ctx, tenantID, promotora.BancoID); err != nil {
		return nil, err
	}
	if userID != uuid.Nil {
		promotora.SetCreatedBy(userID)
	}

	if err := s.promotoraRepo.Save(ctx, promotora); err != nil {
		return nil, fmt.Errorf("failed to save promotora: %w", err)
	}
	s.events.publish(ctx, userID, promotora)

	resp := ToPromotoraResponse(promotora)
	return &resp, nil
}

// GetByID retrieves a promotora by ID
func (s *PromotoraService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*PromotoraResponse, error) {
	promotora, err := s.promotoraRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToPromotoraResponse(promotora)
	return &resp, nil
}

// List searches promotoras, optionally for one banco
func (s *PromotoraService) List(ctx context.Context, tenantID uuid.UUID, filter PromotoraListFilter) (shared.Paginated[PromotoraResponse], error) {
	domainFilter := filter.toDomain(map[string]interface{}{"banco_id": filter.BancoID})

	promotoras, err := s.promotoraRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return shared.Paginated[PromotoraResponse]{}, err
	}
	total, err := s.promotoraRepo.Count(ctx, tenantID, domainFilter)
	if err != nil {
		return shared.Paginated[PromotoraResponse]{}, err
	}

	items := make([]PromotoraResponse, len(promotoras))
	for i := range promotoras {
		items[i] = ToPromotoraResponse(&promotoras[i])
	}
	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize), nil
}

// Options lists promotoras for selection inputs, ordered by nome
func (s *PromotoraService) Options(ctx context.Context, tenantID uuid.UUID) ([]crm.Option, error) {
	return s.promotoraRepo.FindOptions(ctx, tenantID)
}

// Update replaces the promotora fields
func (s *PromotoraService) Update(ctx context.Context, tenantID, userID, id uuid.UUID, req PromotoraRequest) (*PromotoraResponse, error) {
	input, err := req.toInput()
	if err != nil {
		return nil, err
	}
	promotora, err := s.promotoraRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := promotora.Update(input); err != nil {
		return nil, err
	}
	if err := s.checkBanco(ctx, tenantID, promotora.BancoID); err != nil {
		return nil, err
	}

	if err := s.promotoraRepo.Save(ctx, promotora); err != nil {
		return nil, fmt.Errorf("failed to save promotora: %w", err)
	}
	s.events.publish(ctx, userID, promotora)

	resp := ToPromotoraResponse(promotora)
	return &resp, nil
}

// Delete removes a promotora
func (s *PromotoraService) Delete(ctx context.Context, tenantID, userID, id uuid.UUID) error {
	promotora, err := s.promotoraRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.promotoraRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	promotora.MarkDeleted()
	s.events.publish(ctx, userID, promotora)
	return nil
}

func (s *PromotoraService) checkBanco(ctx context.Context, tenantID, bancoID uuid.UUID) error {
	return requireReference(ctx, "banco_id", "Banco não encontrado", func(ctx context.Context) error {
		_, err := s.bancoRepo.FindByID(ctx, tenantID, bancoID)
		return err
	})
}
