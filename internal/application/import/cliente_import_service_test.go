package importapp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	csvimport "github.com/aprovacrm/backend/internal/infrastructure/import"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockClienteRepository mocks the cliente lookups used by the import
type MockClienteRepository struct {
	mock.Mock
	crm.ClienteRepository
}

func (m *MockClienteRepository) ExistsByCPF(ctx context.Context, tenantID uuid.UUID, cpf string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, cpf, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockClienteRepository) Save(ctx context.Context, c *crm.Cliente) error {
	return m.Called(ctx, c).Error(0)
}

type countingPublisher struct {
	count int
}

func (p *countingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.count += len(events)
	return nil
}

func TestClienteImportService_Import(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("imports, skips duplicates and reports invalid rows", func(t *testing.T) {
		repo := new(MockClienteRepository)
		pub := &countingPublisher{}
		svc := NewClienteImportService(repo, pub, 0, zap.NewNop())

		csv := "Nome;CPF;E-mail;Telefone;Endereço\n" +
			"Ana Souza;529.982.247-25;ana@example.com;(11) 99999-0000;Rua A, 1\n" +
			"Bruno Lima;111.444.777-35;;;\n" +
			"Ana Repetida;52998224725;;;\n" +
			"Jo;123;;;\n" +
			";;;;\n"

		repo.On("ExistsByCPF", ctx, tenantID, "52998224725", uuid.Nil).Return(false, nil)
		repo.On("ExistsByCPF", ctx, tenantID, "11144477735", uuid.Nil).Return(true, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*crm.Cliente")).Return(nil)

		result, err := svc.Import(ctx, tenantID, uuid.New(), strings.NewReader(csv))

		require.NoError(t, err)
		assert.Equal(t, 4, result.TotalRows)
		assert.Equal(t, 1, result.ImportedRows)
		assert.Equal(t, 2, result.SkippedRows)
		assert.Equal(t, 1, result.ErrorRows)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, 5, result.Errors[0].Row)
		assert.Equal(t, "nome", result.Errors[0].Column)
		assert.Equal(t, 1, pub.count)
		repo.AssertNumberOfCalls(t, "Save", 1)
	})

	t.Run("missing required column", func(t *testing.T) {
		svc := NewClienteImportService(new(MockClienteRepository), nil, 0, zap.NewNop())

		_, err := svc.Import(ctx, tenantID, uuid.New(), strings.NewReader("nome,email\nAna,ana@example.com\n"))

		assert.True(t, errors.Is(err, &shared.DomainError{Code: shared.CodeInvalidInput, Field: "file"}))
	})

	t.Run("empty file", func(t *testing.T) {
		svc := NewClienteImportService(new(MockClienteRepository), nil, 0, zap.NewNop())
		_, err := svc.Import(ctx, tenantID, uuid.New(), strings.NewReader("  \n"))
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("row limit", func(t *testing.T) {
		svc := NewClienteImportService(new(MockClienteRepository), nil, 1, zap.NewNop())
		csv := "nome,cpf\nAna Souza,52998224725\nBruno Lima,11144477735\n"

		_, err := svc.Import(ctx, tenantID, uuid.New(), strings.NewReader(csv))
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("save failure aborts", func(t *testing.T) {
		repo := new(MockClienteRepository)
		svc := NewClienteImportService(repo, nil, 0, zap.NewNop())
		repo.On("ExistsByCPF", ctx, tenantID, "52998224725", uuid.Nil).Return(false, nil)
		repo.On("Save", ctx, mock.Anything).Return(errors.New("db down"))

		_, err := svc.Import(ctx, tenantID, uuid.New(), strings.NewReader("nome,cpf\nAna Souza,52998224725\n"))
		assert.Error(t, err)
	})
}

func TestValidationRowError_RequiredField(t *testing.T) {
	row := &csvimport.Row{LineNumber: 3, Data: map[string]string{"nome": "Ana Souza", "cpf": ""}}
	rowErr := validationRowError(row, shared.NewFieldError("cpf", "CPF é obrigatório"))

	assert.Equal(t, csvimport.ErrCodeImportRequiredField, rowErr.Code)
	assert.Equal(t, "cpf", rowErr.Column)
	assert.Equal(t, 3, rowErr.Row)
}
