package crm

import (
	"context"
	"errors"
	"fmt"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProdutoService handles produto-related business operations
type ProdutoService struct {
	produtoRepo crm.ProdutoRepository
	bancoRepo   crm.BancoRepository
	events      eventPublisher
	logger      *zap.Logger
}

// NewProdutoService creates a new ProdutoService
func NewProdutoService(
	produtoRepo crm.ProdutoRepository,
	bancoRepo crm.BancoRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ProdutoService {
	return &ProdutoService{
		produtoRepo: produtoRepo,
		bancoRepo:   bancoRepo,
		events:      eventPublisher{publisher: publisher, logger: logger},
		logger:      logger,
	}
}

// Create registers a produto
func (s *ProdutoService) Create(ctx context.Context, tenantID, userID uuid.UUID, req ProdutoRequest) (*ProdutoResponse, error) {
	input, err := req.toInput()
	if err != nil {
		return nil, err
	}
	if err := s.checkBanco(ctx, tenantID, input.BancoID); err != nil {
		return nil, err
	}
	produto, err := crm.NewProduto(tenantID, input)
	if err != nil {
		return nil, err
	}
	if userID != uuid.Nil {
		produto.SetCreatedBy(userID)
	}

	if err := s.produtoRepo.Save(ctx, produto); err != nil {
		return nil, fmt.Errorf("failed to save produto: %w", err)
	}
	s.events.publish(ctx, userID, produto)

	resp := ToProdutoResponse(produto)
	return &resp, nil
}

// GetByID retrieves a produto by ID
func (s *ProdutoService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ProdutoResponse, error) {
	produto, err := s.produtoRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToProdutoResponse(produto)
	return &resp, nil
}

// List searches produtos by nome or credit type
func (s *ProdutoService) List(ctx context.Context, tenantID uuid.UUID, filter ProdutoListFilter) (shared.Paginated[ProdutoResponse], error) {
	filters := map[string]interface{}{
		"status":       filter.Status,
		"banco_id":     filter.BancoID,
		"tipo_credito": filter.TipoCredito,
	}
	domainFilter := filter.toDomain(filters)

	produtos, err := s.produtoRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return shared.Paginated[ProdutoResponse]{}, err
	}
	total, err := s.produtoRepo.Count(ctx, tenantID, domainFilter)
	if err != nil {
		return shared.Paginated[ProdutoResponse]{}, err
	}

	items := make([]ProdutoResponse, len(produtos))
	for i := range produtos {
		items[i] = ToProdutoResponse(&produtos[i])
	}
	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize), nil
}

// Options lists the ativo produtos, narrowed to one banco when bancoID is set
func (s *ProdutoService) Options(ctx context.Context, tenantID uuid.UUID, bancoID *uuid.UUID) ([]crm.ProdutoOption, error) {
	return s.produtoRepo.FindActiveOptions(ctx, tenantID, bancoID)
}

// Update replaces the produto fields
func (s *ProdutoService) Update(ctx context.Context, tenantID, userID, id uuid.UUID, req ProdutoRequest) (*ProdutoResponse, error) {
	input, err := req.toInput()
	if err != nil {
		return nil, err
	}
	produto, err := s.produtoRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkBanco(ctx, tenantID, input.BancoID); err != nil {
		return nil, err
	}
	if err := produto.Update(input); err != nil {
		return nil, err
	}

	if err := s.produtoRepo.Save(ctx, produto); err != nil {
		return nil, fmt.Errorf("failed to save produto: %w", err)
	}
	s.events.publish(ctx, userID, produto)

	resp := ToProdutoResponse(produto)
	return &resp, nil
}

// Delete removes a produto. Propostas that used it keep their history with no produto.
func (s *ProdutoService) Delete(ctx context.Context, tenantID, userID, id uuid.UUID) error {
	produto, err := s.produtoRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.produtoRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	produto.MarkDeleted()
	s.events.publish(ctx, userID, produto)
	return nil
}

// checkBanco verifies that an optional banco reference belongs to the tenant
func (s *ProdutoService) checkBanco(ctx context.Context, tenantID uuid.UUID, bancoID *uuid.UUID) error {
	if bancoID == nil || *bancoID == uuid.Nil {
		return nil
	}
	return requireReference(ctx, "banco_id", "Banco não encontrado", func(ctx context.Context) error {
		_, err := s.bancoRepo.FindByID(ctx, tenantID, *bancoID)
		return err
	})
}

// requireReference turns a not-found lookup of a referenced record into a field error
func requireReference(ctx context.Context, field, message string, find func(context.Context) error) error {
	err := find(ctx)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewFieldError(field, message)
	}
	return err
}
