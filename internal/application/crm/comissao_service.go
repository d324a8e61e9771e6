package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ComissaoService handles the commissions of a proposta
type ComissaoService struct {
	comissaoRepo crm.ComissaoRepository
	propostaRepo crm.PropostaRepository
	events       eventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewComissaoService creates a new ComissaoService
func NewComissaoService(
	comissaoRepo crm.ComissaoRepository,
	propostaRepo crm.PropostaRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ComissaoService {
	return &ComissaoService{
		comissaoRepo: comissaoRepo,
		propostaRepo: propostaRepo,
		events:       eventPublisher{publisher: publisher, logger: logger},
		logger:       logger,
		now:          time.Now,
	}
}

// ListByProposta lists the commissions of a proposta, newest first
func (s *ComissaoService) ListByProposta(ctx context.Context, tenantID, propostaID uuid.UUID) ([]ComissaoResponse, error) {
	if _, err := s.propostaRepo.FindByID(ctx, tenantID, propostaID); err != nil {
		return nil, err
	}
	comissoes, err := s.comissaoRepo.FindByProposta(ctx, tenantID, propostaID)
	if err != nil {
		return nil, err
	}
	items := make([]ComissaoResponse, len(comissoes))
	for i := range comissoes {
		items[i] = ToComissaoResponse(&comissoes[i])
	}
	return items, nil
}

// Create adds a pending commission to a proposta, owned by the acting user
func (s *ComissaoService) Create(ctx context.Context, tenantID, userID, propostaID uuid.UUID, req ComissaoRequest) (*ComissaoResponse, error) {
	input, err := req.toInput()
	if err != nil {
		return nil, err
	}
	if _, err := s.propostaRepo.FindByID(ctx, tenantID, propostaID); err != nil {
		return nil, err
	}

	comissao, err := crm.NewComissao(tenantID, propostaID, actorPtr(userID), input)
	if err != nil {
		return nil, err
	}

	if err := s.comissaoRepo.Save(ctx, comissao); err != nil {
		return nil, fmt.Errorf("failed to save comissao: %w", err)
	}
	s.events.publish(ctx, userID, comissao)

	resp := ToComissaoResponse(comissao)
	return &resp, nil
}

// Update changes the amounts, forecast date and note of a commission
func (s *ComissaoService) Update(ctx context.Context, tenantID, userID, id uuid.UUID, req ComissaoRequest) (*ComissaoResponse, error) {
	input, err := req.toInput()
	if err != nil {
		return nil, err
	}
	comissao, err := s.comissaoRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := comissao.Update(input); err != nil {
		return nil, err
	}

	if err := s.comissaoRepo.Save(ctx, comissao); err != nil {
		return nil, fmt.Errorf("failed to save comissao: %w", err)
	}
	s.events.publish(ctx, userID, comissao)

	resp := ToComissaoResponse(comissao)
	return &resp, nil
}

// MarcarComoPago records the payout of a commission
func (s *ComissaoService) MarcarComoPago(ctx context.Context, tenantID, userID, id uuid.UUID, req MarcarPagoRequest) (*ComissaoResponse, error) {
	data, err := parseOptionalDate("data_recebimento", req.DataRecebimento)
	if err != nil {
		return nil, err
	}
	if data == nil {
		y, m, d := s.now().Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		data = &today
	}

	comissao, err := s.comissaoRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := comissao.MarcarComoPago(*data); err != nil {
		return nil, err
	}

	if err := s.comissaoRepo.Save(ctx, comissao); err != nil {
		return nil, fmt.Errorf("failed to save comissao: %w", err)
	}
	s.events.publish(ctx, userID, comissao)

	s.logger.Info("Comissao marked as received",
		zap.String("comissao_id", id.String()),
		zap.String("valor", comissao.ValorComissao.StringFixed(2)))

	resp := ToComissaoResponse(comissao)
	return &resp, nil
}

// Delete removes a commission
func (s *ComissaoService) Delete(ctx context.Context, tenantID, userID, id uuid.UUID) error {
	comissao, err := s.comissaoRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.comissaoRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	comissao.MarkDeleted()
	s.events.publish(ctx, userID, comissao)
	return nil
}
