package identity

import (
	"context"
	"sync"

	"github.com/aprovacrm/backend/internal/domain/activity"
	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/identity"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

// MockEmpresaRepository is a mock implementation of identity.EmpresaRepository
type MockEmpresaRepository struct {
	mock.Mock
}

func (m *MockEmpresaRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Empresa, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Empresa), args.Error(1)
}

func (m *MockEmpresaRepository) Save(ctx context.Context, empresa *identity.Empresa) error {
	return m.Called(ctx, empresa).Error(0)
}

func (m *MockEmpresaRepository) Register(ctx context.Context, empresa *identity.Empresa, admin *identity.User) error {
	return m.Called(ctx, empresa, admin).Error(0)
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

// recordingAuthActivity keeps every RecordAuth call
type recordingAuthActivity struct {
	mu      sync.Mutex
	actions []activity.Action
	actors  []activity.Actor
}

func (r *recordingAuthActivity) RecordAuth(_ context.Context, _ uuid.UUID, action activity.Action, actor activity.Actor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
	r.actors = append(r.actors, actor)
}

// loginCounter counts RecordLogin outcomes
type loginCounter struct {
	ok, failed int
}

func (c *loginCounter) RecordLogin(_ context.Context, success bool) {
	if success {
		c.ok++
		return
	}
	c.failed++
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.EventType()
	}
	return types
}
