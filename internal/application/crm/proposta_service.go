package crm

import (
	"context"
	"fmt"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/aprovacrm/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PropostaRepositories groups the repositories a PropostaService reads and writes
type PropostaRepositories struct {
	Propostas  crm.PropostaRepository
	Clientes   crm.ClienteRepository
	Bancos     crm.BancoRepository
	Produtos   crm.ProdutoRepository
	Comissoes  crm.ComissaoRepository
	Documentos crm.DocumentoRepository
}

// PropostaService handles proposta-related business operations
type PropostaService struct {
	repos   PropostaRepositories
	storage ObjectStorage
	events  eventPublisher
	logger  *zap.Logger
}

// NewPropostaService creates a new PropostaService. storage may be nil, in
// which case stored documentos are left behind when a proposta is deleted.
func NewPropostaService(
	repos PropostaRepositories,
	storage ObjectStorage,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PropostaService {
	return &PropostaService{
		repos:   repos,
		storage: storage,
		events:  eventPublisher{publisher: publisher, logger: logger},
		logger:  logger,
	}
}

// Create registers a proposta for a cliente of the tenant
func (s *PropostaService) Create(ctx context.Context, tenantID, userID uuid.UUID, req PropostaRequest) (*PropostaResponse, error) {
	input, err := req.toInput()
	if err != nil {
		return nil, err
	}
	proposta, err := crm.NewProposta(tenantID, input)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, tenantID, proposta); err != nil {
		return nil, err
	}
	if userID != uuid.Nil {
		proposta.SetCreatedBy(userID)
	}

	if err := s.repos.Propostas.Save(ctx, proposta); err != nil {
		return nil, fmt.Errorf("failed to save proposta: %w", err)
	}
	s.events.publish(ctx, userID, proposta)

	s.logger.Info("Proposta created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("proposta_id", proposta.ID.String()),
		zap.String("status", string(proposta.Status)))

	resp := ToPropostaResponse(proposta)
	return &resp, nil
}

// GetByID retrieves a proposta by ID
func (s *PropostaService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*PropostaResponse, error) {
	proposta, err := s.repos.Propostas.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToPropostaResponse(proposta)
	return &resp, nil
}

// List searches propostas by finalidade, observacoes or cliente nome
func (s *PropostaService) List(ctx context.Context, tenantID uuid.UUID, filter PropostaListFilter) (shared.Paginated[PropostaResponse], error) {
	domainFilter := filter.toDomain(map[string]interface{}{
		"status":     filter.Status,
		"cliente_id": filter.ClienteID,
		"banco_id":   filter.BancoID,
		"produto_id": filter.ProdutoID,
	})

	propostas, err := s.repos.Propostas.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return shared.Paginated[PropostaResponse]{}, err
	}
	total, err := s.repos.Propostas.Count(ctx, tenantID, domainFilter)
	if err != nil {
		return shared.Paginated[PropostaResponse]{}, err
	}

	items := make([]PropostaResponse, len(propostas))
	for i := range propostas {
		items[i] = ToPropostaResponse(&propostas[i])
	}
	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize), nil
}

// Options lists the form options a proposta needs: clientes, active bancos
// and active produtos
func (s *PropostaService) Options(ctx context.Context, tenantID uuid.UUID) (*PropostaOptions, error) {
	clientes, err := s.repos.Clientes.FindOptions(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	bancos, err := s.repos.Bancos.FindOptions(ctx, tenantID, true)
	if err != nil {
		return nil, err
	}
	produtos, err := s.repos.Produtos.FindActiveOptions(ctx, tenantID, nil)
	if err != nil {
		return nil, err
	}
	return &PropostaOptions{Clientes: clientes, Bancos: bancos, Produtos: produtos}, nil
}

// Update replaces the proposta fields, status included
func (s *PropostaService) Update(ctx context.Context, tenantID, userID, id uuid.UUID, req PropostaRequest) (*PropostaResponse, error) {
	input, err := req.toInput()
	if err != nil {
		return nil, err
	}
	proposta, err := s.repos.Propostas.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := proposta.Update(input); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, tenantID, proposta); err != nil {
		return nil, err
	}

	if err := s.repos.Propostas.Save(ctx, proposta); err != nil {
		return nil, fmt.Errorf("failed to save proposta: %w", err)
	}
	s.events.publish(ctx, userID, proposta)

	resp := ToPropostaResponse(proposta)
	return &resp, nil
}

// ChangeStatus moves the proposta to another pipeline status
func (s *PropostaService) ChangeStatus(ctx context.Context, tenantID, userID, id uuid.UUID, req ChangeStatusRequest) (*PropostaResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "proposta", "change_status")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPropostaID, id.String(),
		telemetry.SpanAttrStatus, req.Status,
	)

	proposta, err := s.repos.Propostas.FindByID(ctx, tenantID, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	previous := proposta.Status
	if err := proposta.ChangeStatus(crm.PropostaStatus(req.Status)); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if previous == proposta.Status {
		resp := ToPropostaResponse(proposta)
		return &resp, nil
	}

	if err := s.repos.Propostas.Save(ctx, proposta); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save proposta: %w", err)
	}
	s.events.publish(ctx, userID, proposta)

	s.logger.Info("Proposta status changed",
		zap.String("proposta_id", id.String()),
		zap.String("from", string(previous)),
		zap.String("to", string(proposta.Status)))

	resp := ToPropostaResponse(proposta)
	return &resp, nil
}

// Delete removes a proposta together with its comissoes and documentos. The
// rows go in one repository call; comissao events and object removal follow
// only once it succeeded.
func (s *PropostaService) Delete(ctx context.Context, tenantID, userID, id uuid.UUID) error {
	proposta, err := s.repos.Propostas.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	comissoes, err := s.repos.Comissoes.FindByProposta(ctx, tenantID, id)
	if err != nil {
		return err
	}

	var storageKeys []string
	if s.storage != nil && s.repos.Documentos != nil {
		docs, err := s.repos.Documentos.FindActiveByProposta(ctx, tenantID, id)
		if err != nil {
			return err
		}
		for _, d := range docs {
			storageKeys = append(storageKeys, d.StorageKey)
		}
	}

	if err := s.repos.Propostas.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	for i := range comissoes {
		comissoes[i].MarkDeleted()
		s.events.publish(ctx, userID, &comissoes[i])
	}
	proposta.MarkDeleted()
	s.events.publish(ctx, userID, proposta)

	for _, key := range storageKeys {
		if err := s.storage.DeleteObject(ctx, key); err != nil {
			s.logger.Warn("Failed to remove documento object",
				zap.String("proposta_id", id.String()),
				zap.String("key", key),
				zap.Error(err))
		}
	}
	return nil
}

// checkReferences verifies that the cliente, banco and produto belong to the
// tenant and that the produto is offered by the chosen banco
func (s *PropostaService) checkReferences(ctx context.Context, tenantID uuid.UUID, p *crm.Proposta) error {
	err := requireReference(ctx, "cliente_id", "Cliente não encontrado", func(ctx context.Context) error {
		_, err := s.repos.Clientes.FindByID(ctx, tenantID, p.ClienteID)
		return err
	})
	if err != nil {
		return err
	}

	if p.BancoID != nil {
		err := requireReference(ctx, "banco_id", "Banco não encontrado", func(ctx context.Context) error {
			_, err := s.repos.Bancos.FindByID(ctx, tenantID, *p.BancoID)
			return err
		})
		if err != nil {
			return err
		}
	}

	if p.ProdutoID != nil {
		var produto *crm.Produto
		err := requireReference(ctx, "produto_id", "Produto não encontrado", func(ctx context.Context) error {
			var err error
			produto, err = s.repos.Produtos.FindByID(ctx, tenantID, *p.ProdutoID)
			return err
		})
		if err != nil {
			return err
		}
		if p.BancoID != nil && produto.BancoID != nil && *produto.BancoID != *p.BancoID {
			return shared.NewFieldError("produto_id", "Produto não pertence ao banco selecionado")
		}
	}
	return nil
}
