package crm

import (
	"context"
	"fmt"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClienteService handles cliente-related business operations
type ClienteService struct {
	clienteRepo  crm.ClienteRepository
	propostaRepo crm.PropostaRepository
	events       eventPublisher
	logger       *zap.Logger
}

// NewClienteService creates a new ClienteService
func NewClienteService(
	clienteRepo crm.ClienteRepository,
	propostaRepo crm.PropostaRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ClienteService {
	return &ClienteService{
		clienteRepo:  clienteRepo,
		propostaRepo: propostaRepo,
		events:       eventPublisher{publisher: publisher, logger: logger},
		logger:       logger,
	}
}

// Create registers a cliente. The CPF must be unique within the tenant.
func (s *ClienteService) Create(ctx context.Context, tenantID, userID uuid.UUID, req ClienteRequest) (*ClienteResponse, error) {
	cliente, err := crm.NewCliente(tenantID, req.toInput())
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueCPF(ctx, tenantID, cliente.CPF, uuid.Nil); err != nil {
		return nil, err
	}
	if userID != uuid.Nil {
		cliente.SetCreatedBy(userID)
	}

	if err := s.clienteRepo.Save(ctx, cliente); err != nil {
		return nil, fmt.Errorf("failed to save cliente: %w", err)
	}
	s.events.publish(ctx, userID, cliente)

	s.logger.Info("Cliente created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("cliente_id", cliente.ID.String()))

	resp := ToClienteResponse(cliente)
	return &resp, nil
}

// GetByID retrieves a cliente by ID
func (s *ClienteService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ClienteResponse, error) {
	cliente, err := s.clienteRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToClienteResponse(cliente)
	return &resp, nil
}

// List searches clientes by nome, CPF, email or telefone
func (s *ClienteService) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) (shared.Paginated[ClienteResponse], error) {
	domainFilter := filter.toDomain(nil)

	clientes, err := s.clienteRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return shared.Paginated[ClienteResponse]{}, err
	}
	total, err := s.clienteRepo.Count(ctx, tenantID, domainFilter)
	if err != nil {
		return shared.Paginated[ClienteResponse]{}, err
	}

	items := make([]ClienteResponse, len(clientes))
	for i := range clientes {
		items[i] = ToClienteResponse(&clientes[i])
	}
	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize), nil
}

// Options lists clientes for selection inputs, ordered by nome
func (s *ClienteService) Options(ctx context.Context, tenantID uuid.UUID) ([]crm.ClienteOption, error) {
	return s.clienteRepo.FindOptions(ctx, tenantID)
}

// Update replaces the cliente fields
func (s *ClienteService) Update(ctx context.Context, tenantID, userID, id uuid.UUID, req ClienteRequest) (*ClienteResponse, error) {
	cliente, err := s.clienteRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := cliente.Update(req.toInput()); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueCPF(ctx, tenantID, cliente.CPF, cliente.ID); err != nil {
		return nil, err
	}

	if err := s.clienteRepo.Save(ctx, cliente); err != nil {
		return nil, fmt.Errorf("failed to save cliente: %w", err)
	}
	s.events.publish(ctx, userID, cliente)

	resp := ToClienteResponse(cliente)
	return &resp, nil
}

// Delete removes a cliente that has no propostas
func (s *ClienteService) Delete(ctx context.Context, tenantID, userID, id uuid.UUID) error {
	cliente, err := s.clienteRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}

	count, err := s.propostaRepo.CountByCliente(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cliente possui %d proposta(s) vinculada(s) e não pode ser excluído", count))
	}

	if err := s.clienteRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	cliente.MarkDeleted()
	s.events.publish(ctx, userID, cliente)

	s.logger.Info("Cliente deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("cliente_id", id.String()))
	return nil
}

func (s *ClienteService) ensureUniqueCPF(ctx context.Context, tenantID uuid.UUID, cpf string, excludeID uuid.UUID) error {
	exists, err := s.clienteRepo.ExistsByCPF(ctx, tenantID, cpf, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return &shared.DomainError{Code: shared.CodeAlreadyExists, Message: "Já existe um cliente com este CPF", Field: "cpf"}
	}
	return nil
}
