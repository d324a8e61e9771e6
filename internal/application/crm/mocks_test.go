package crm

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockClienteRepository is a mock implementation of crm.ClienteRepository
type MockClienteRepository struct {
	mock.Mock
}

func (m *MockClienteRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Cliente, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Cliente), args.Error(1)
}

func (m *MockClienteRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Cliente, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]crm.Cliente), args.Error(1)
}

func (m *MockClienteRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClienteRepository) Save(ctx context.Context, c *crm.Cliente) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockClienteRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockClienteRepository) ExistsByCPF(ctx context.Context, tenantID uuid.UUID, cpf string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, cpf, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockClienteRepository) FindOptions(ctx context.Context, tenantID uuid.UUID) ([]crm.ClienteOption, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]crm.ClienteOption), args.Error(1)
}

// MockBancoRepository is a mock implementation of crm.BancoRepository
type MockBancoRepository struct {
	mock.Mock
}

func (m *MockBancoRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Banco, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Banco), args.Error(1)
}

func (m *MockBancoRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Banco, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]crm.Banco), args.Error(1)
}

func (m *MockBancoRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBancoRepository) Save(ctx context.Context, b *crm.Banco) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBancoRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockBancoRepository) FindOptions(ctx context.Context, tenantID uuid.UUID, onlyActive bool) ([]crm.Option, error) {
	args := m.Called(ctx, tenantID, onlyActive)
	return args.Get(0).([]crm.Option), args.Error(1)
}

func (m *MockBancoRepository) FindLatest(ctx context.Context, tenantID uuid.UUID) (*crm.Banco, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Banco), args.Error(1)
}

// MockProdutoRepository is a mock implementation of crm.ProdutoRepository
type MockProdutoRepository struct {
	mock.Mock
}

func (m *MockProdutoRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Produto, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Produto), args.Error(1)
}

func (m *MockProdutoRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Produto, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]crm.Produto), args.Error(1)
}

func (m *MockProdutoRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProdutoRepository) Save(ctx context.Context, p *crm.Produto) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProdutoRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockProdutoRepository) FindActiveOptions(ctx context.Context, tenantID uuid.UUID, bancoID *uuid.UUID) ([]crm.ProdutoOption, error) {
	args := m.Called(ctx, tenantID, bancoID)
	return args.Get(0).([]crm.ProdutoOption), args.Error(1)
}

func (m *MockProdutoRepository) CountByBanco(ctx context.Context, tenantID, bancoID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, bancoID)
	return args.Get(0).(int64), args.Error(1)
}

// MockPromotoraRepository is a mock implementation of crm.PromotoraRepository
type MockPromotoraRepository struct {
	mock.Mock
}

func (m *MockPromotoraRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Promotora, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Promotora), args.Error(1)
}

func (m *MockPromotoraRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Promotora, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]crm.Promotora), args.Error(1)
}

func (m *MockPromotoraRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPromotoraRepository) Save(ctx context.Context, p *crm.Promotora) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPromotoraRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockPromotoraRepository) FindOptions(ctx context.Context, tenantID uuid.UUID) ([]crm.Option, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]crm.Option), args.Error(1)
}

func (m *MockPromotoraRepository) CountByBanco(ctx context.Context, tenantID, bancoID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, bancoID)
	return args.Get(0).(int64), args.Error(1)
}

// MockPropostaRepository is a mock implementation of crm.PropostaRepository
type MockPropostaRepository struct {
	mock.Mock
}

func (m *MockPropostaRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Proposta, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Proposta), args.Error(1)
}

func (m *MockPropostaRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Proposta, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]crm.Proposta), args.Error(1)
}

func (m *MockPropostaRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPropostaRepository) Save(ctx context.Context, p *crm.Proposta) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPropostaRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockPropostaRepository) CountByBanco(ctx context.Context, tenantID, bancoID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, bancoID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPropostaRepository) CountByCliente(ctx context.Context, tenantID, clienteID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, clienteID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPropostaRepository) Stats(ctx context.Context, tenantID uuid.UUID) (*crm.PropostaStats, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.PropostaStats), args.Error(1)
}

func (m *MockPropostaRepository) DailyTrend(ctx context.Context, tenantID uuid.UUID, since, until time.Time) ([]crm.TrendPoint, error) {
	args := m.Called(ctx, tenantID, since, until)
	return args.Get(0).([]crm.TrendPoint), args.Error(1)
}

func (m *MockPropostaRepository) FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]crm.RecentProposta, error) {
	args := m.Called(ctx, tenantID, limit)
	return args.Get(0).([]crm.RecentProposta), args.Error(1)
}

// MockComissaoRepository is a mock implementation of crm.ComissaoRepository
type MockComissaoRepository struct {
	mock.Mock
}

func (m *MockComissaoRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Comissao, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Comissao), args.Error(1)
}

func (m *MockComissaoRepository) FindByProposta(ctx context.Context, tenantID, propostaID uuid.UUID) ([]crm.Comissao, error) {
	args := m.Called(ctx, tenantID, propostaID)
	return args.Get(0).([]crm.Comissao), args.Error(1)
}

func (m *MockComissaoRepository) Save(ctx context.Context, c *crm.Comissao) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockComissaoRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

// MockDocumentoRepository is a mock implementation of crm.DocumentoRepository
type MockDocumentoRepository struct {
	mock.Mock
}

func (m *MockDocumentoRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*crm.Documento, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Documento), args.Error(1)
}

func (m *MockDocumentoRepository) FindActiveByProposta(ctx context.Context, tenantID, propostaID uuid.UUID) ([]crm.Documento, error) {
	args := m.Called(ctx, tenantID, propostaID)
	return args.Get(0).([]crm.Documento), args.Error(1)
}

func (m *MockDocumentoRepository) Save(ctx context.Context, d *crm.Documento) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDocumentoRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

// MockObjectStorage is a mock implementation of ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, key, fileName string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, fileName, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	return m.Called(ctx, key, body, size, contentType).Error(0)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.EventType()
	}
	return types
}

func (p *recordingPublisher) last() *crm.RecordChangedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil
	}
	e, _ := p.events[len(p.events)-1].(*crm.RecordChangedEvent)
	return e
}
