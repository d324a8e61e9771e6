package identity

import (
	"context"
	"fmt"

	"github.com/aprovacrm/backend/internal/domain/identity"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EmpresaService registers new tenants
type EmpresaService struct {
	empresaRepo identity.EmpresaRepository
	userRepo    identity.UserRepository
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewEmpresaService creates a new EmpresaService
func NewEmpresaService(
	empresaRepo identity.EmpresaRepository,
	userRepo identity.UserRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *EmpresaService {
	return &EmpresaService{
		empresaRepo: empresaRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// Register creates an empresa and its first admin user
func (s *EmpresaService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	empresa, err := identity.NewEmpresa(input.EmpresaNome, input.EmpresaCNPJ)
	if err != nil {
		return nil, err
	}
	admin, err := identity.NewUser(empresa.ID, input.Nome, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, admin.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, &shared.DomainError{
			Code:    shared.CodeAlreadyExists,
			Message: "Este e-mail já está cadastrado",
			Field:   "email",
		}
	}

	if err := s.empresaRepo.Register(ctx, empresa, admin); err != nil {
		return nil, fmt.Errorf("failed to register empresa: %w", err)
	}

	events := append(empresa.GetDomainEvents(), admin.GetDomainEvents()...)
	empresa.ClearDomainEvents()
	admin.ClearDomainEvents()
	publishEvents(ctx, s.publisher, s.logger, events)

	s.logger.Info("Empresa registered",
		zap.String("tenant_id", empresa.ID.String()),
		zap.String("user_id", admin.ID.String()))

	return &RegisterResult{
		EmpresaID: empresa.ID,
		User:      toUserInfo(admin, empresa),
	}, nil
}

func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, events []shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Error("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.String("first_type", events[0].EventType()),
			zap.Error(err))
	}
}

// ValidateTenant fails when the empresa no longer exists or was deactivated
func (s *EmpresaService) ValidateTenant(ctx context.Context, tenantID uuid.UUID) error {
	empresa, err := s.empresaRepo.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if !empresa.Ativo {
		return shared.NewDomainError(CodeAccountInactive, "Empresa desativada")
	}
	return nil
}
