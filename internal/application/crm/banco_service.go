package crm

import (
	"context"
	"fmt"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BancoService handles banco-related business operations
type BancoService struct {
	bancoRepo     crm.BancoRepository
	produtoRepo   crm.ProdutoRepository
	promotoraRepo crm.PromotoraRepository
	propostaRepo  crm.PropostaRepository
	events        eventPublisher
	logger        *zap.Logger
}

// NewBancoService creates a new BancoService
func NewBancoService(
	bancoRepo crm.BancoRepository,
	produtoRepo crm.ProdutoRepository,
	promotoraRepo crm.PromotoraRepository,
	propostaRepo crm.PropostaRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *BancoService {
	return &BancoService{
		bancoRepo:     bancoRepo,
		produtoRepo:   produtoRepo,
		promotoraRepo: promotoraRepo,
		propostaRepo:  propostaRepo,
		events:        eventPublisher{publisher: publisher, logger: logger},
		logger:        logger,
	}
}

// Create registers an active banco
func (s *BancoService) Create(ctx context.Context, tenantID, userID uuid.UUID, req BancoRequest) (*BancoResponse, error) {
	banco, err := crm.NewBanco(tenantID, req.toInput())
	if err != nil {
		return nil, err
	}
	if userID != uuid.Nil {
		banco.SetCreatedBy(userID)
	}

	if err := s.bancoRepo.Save(ctx, banco); err != nil {
		return nil, fmt.Errorf("failed to save banco: %w", err)
	}
	s.events.publish(ctx, userID, banco)

	resp := ToBancoResponse(banco)
	return &resp, nil
}

// GetByID retrieves a banco by ID
func (s *BancoService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*BancoResponse, error) {
	banco, err := s.bancoRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToBancoResponse(banco)
	return &resp, nil
}

// List searches bancos, optionally only active or inactive ones
func (s *BancoService) List(ctx context.Context, tenantID uuid.UUID, filter BancoListFilter) (shared.Paginated[BancoResponse], error) {
	filters := map[string]interface{}{}
	if filter.Ativo != nil {
		filters["ativo"] = *filter.Ativo
	}
	domainFilter := filter.toDomain(filters)

	bancos, err := s.bancoRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return shared.Paginated[BancoResponse]{}, err
	}
	total, err := s.bancoRepo.Count(ctx, tenantID, domainFilter)
	if err != nil {
		return shared.Paginated[BancoResponse]{}, err
	}

	items := make([]BancoResponse, len(bancos))
	for i := range bancos {
		items[i] = ToBancoResponse(&bancos[i])
	}
	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize), nil
}

// Options lists bancos for selection inputs. Inactive bancos are left out
// unless includeInactive is set.
func (s *BancoService) Options(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]crm.Option, error) {
	return s.bancoRepo.FindOptions(ctx, tenantID, !includeInactive)
}

// Update replaces the banco fields and toggles its active flag when given
func (s *BancoService) Update(ctx context.Context, tenantID, userID, id uuid.UUID, req BancoRequest) (*BancoResponse, error) {
	banco, err := s.bancoRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := banco.Update(req.toInput()); err != nil {
		return nil, err
	}
	if req.Ativo != nil {
		if *req.Ativo {
			banco.Activate()
		} else {
			banco.Deactivate()
		}
	}

	if err := s.bancoRepo.Save(ctx, banco); err != nil {
		return nil, fmt.Errorf("failed to save banco: %w", err)
	}
	s.events.publish(ctx, userID, banco)

	resp := ToBancoResponse(banco)
	return &resp, nil
}

// Delete removes the banco, or only deactivates it when produtos,
// promotoras or propostas still reference it.
func (s *BancoService) Delete(ctx context.Context, tenantID, userID, id uuid.UUID) (*BancoDeleteResponse, error) {
	banco, err := s.bancoRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	linked, err := s.countLinks(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if linked > 0 {
		banco.Deactivate()
		if err := s.bancoRepo.Save(ctx, banco); err != nil {
			return nil, fmt.Errorf("failed to deactivate banco: %w", err)
		}
		s.events.publish(ctx, userID, banco)
		s.logger.Info("Banco deactivated instead of deleted",
			zap.String("banco_id", id.String()),
			zap.Int64("linked_records", linked))
		return &BancoDeleteResponse{ID: id, Outcome: crm.BancoDeactivated}, nil
	}

	if err := s.bancoRepo.Delete(ctx, tenantID, id); err != nil {
		return nil, err
	}
	banco.MarkDeleted()
	s.events.publish(ctx, userID, banco)
	return &BancoDeleteResponse{ID: id, Outcome: crm.BancoDeleted}, nil
}

func (s *BancoService) countLinks(ctx context.Context, tenantID, bancoID uuid.UUID) (int64, error) {
	counters := []func(context.Context, uuid.UUID, uuid.UUID) (int64, error){
		s.produtoRepo.CountByBanco,
		s.promotoraRepo.CountByBanco,
		s.propostaRepo.CountByBanco,
	}
	var total int64
	for _, count := range counters {
		n, err := count(ctx, tenantID, bancoID)
		if err != nil {
			return 0, err
		}
		total += n
		if total > 0 {
			break
		}
	}
	return total, nil
}
