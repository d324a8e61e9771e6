package crm

import (
	"context"
	"errors"
	"testing"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type propostaFixture struct {
	svc        *PropostaService
	propostas  *MockPropostaRepository
	clientes   *MockClienteRepository
	bancos     *MockBancoRepository
	produtos   *MockProdutoRepository
	comissoes  *MockComissaoRepository
	documentos *MockDocumentoRepository
	storage    *MockObjectStorage
	pub        *recordingPublisher
}

func newPropostaFixture() propostaFixture {
	f := propostaFixture{
		propostas:  new(MockPropostaRepository),
		clientes:   new(MockClienteRepository),
		bancos:     new(MockBancoRepository),
		produtos:   new(MockProdutoRepository),
		comissoes:  new(MockComissaoRepository),
		documentos: new(MockDocumentoRepository),
		storage:    new(MockObjectStorage),
		pub:        &recordingPublisher{},
	}
	f.svc = NewPropostaService(PropostaRepositories{
		Propostas:  f.propostas,
		Clientes:   f.clientes,
		Bancos:     f.bancos,
		Produtos:   f.produtos,
		Comissoes:  f.comissoes,
		Documentos: f.documentos,
	}, f.storage, f.pub, zap.NewNop())
	return f
}

func newTestProposta(t *testing.T, tenantID uuid.UUID, status crm.PropostaStatus) *crm.Proposta {
	t.Helper()
	p, err := crm.NewProposta(tenantID, crm.PropostaInput{
		ClienteID: uuid.New(),
		Valor:     decimal.RequireFromString("15000"),
		Status:    status,
	})
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func TestPropostaService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	clienteID := uuid.New()
	bancoID := uuid.New()
	produtoID := uuid.New()

	t.Run("validates references and saves", func(t *testing.T) {
		f := newPropostaFixture()
		f.clientes.On("FindByID", ctx, tenantID, clienteID).Return(&crm.Cliente{}, nil)
		f.bancos.On("FindByID", ctx, tenantID, bancoID).Return(&crm.Banco{}, nil)
		f.produtos.On("FindByID", ctx, tenantID, produtoID).Return(&crm.Produto{BancoID: &bancoID}, nil)
		f.propostas.On("Save", ctx, mock.AnythingOfType("*crm.Proposta")).Return(nil)

		userID := uuid.New()
		resp, err := f.svc.Create(ctx, tenantID, userID, PropostaRequest{
			ClienteID:  clienteID,
			BancoID:    &bancoID,
			ProdutoID:  &produtoID,
			Valor:      "25000.50",
			Finalidade: "Reforma",
		})

		require.NoError(t, err)
		assert.Equal(t, "rascunho", resp.Status)
		assert.Equal(t, "25000.5", resp.Valor.String())
		require.NotNil(t, resp.CreatedBy)
		assert.Equal(t, userID, *resp.CreatedBy)
		assert.Equal(t, []string{"proposta.created"}, f.pub.types())
	})

	t.Run("rejects produto of another banco", func(t *testing.T) {
		f := newPropostaFixture()
		other := uuid.New()
		f.clientes.On("FindByID", ctx, tenantID, clienteID).Return(&crm.Cliente{}, nil)
		f.bancos.On("FindByID", ctx, tenantID, bancoID).Return(&crm.Banco{}, nil)
		f.produtos.On("FindByID", ctx, tenantID, produtoID).Return(&crm.Produto{BancoID: &other}, nil)

		_, err := f.svc.Create(ctx, tenantID, uuid.New(), PropostaRequest{
			ClienteID: clienteID, BancoID: &bancoID, ProdutoID: &produtoID, Valor: "1000",
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, &shared.DomainError{Code: shared.CodeInvalidInput, Field: "produto_id"}))
		f.propostas.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unknown cliente", func(t *testing.T) {
		f := newPropostaFixture()
		f.clientes.On("FindByID", ctx, tenantID, clienteID).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Create(ctx, tenantID, uuid.New(), PropostaRequest{ClienteID: clienteID, Valor: "1000"})
		assert.True(t, errors.Is(err, &shared.DomainError{Code: shared.CodeInvalidInput, Field: "cliente_id"}))
	})

	t.Run("zero valor", func(t *testing.T) {
		f := newPropostaFixture()
		_, err := f.svc.Create(ctx, tenantID, uuid.New(), PropostaRequest{ClienteID: clienteID, Valor: "0"})
		assert.True(t, errors.Is(err, &shared.DomainError{Code: shared.CodeInvalidInput, Field: "valor"}))
	})
}

func TestPropostaService_ChangeStatus(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("publishes update with status details", func(t *testing.T) {
		f := newPropostaFixture()
		p := newTestProposta(t, tenantID, crm.PropostaEmAnalise)
		f.propostas.On("FindByID", ctx, tenantID, p.ID).Return(p, nil)
		f.propostas.On("Save", ctx, p).Return(nil)

		resp, err := f.svc.ChangeStatus(ctx, tenantID, uuid.New(), p.ID, ChangeStatusRequest{Status: "aprovada"})

		require.NoError(t, err)
		assert.Equal(t, "aprovada", resp.Status)
		assert.NotNil(t, resp.DataDecisao)
		ev := f.pub.last()
		require.NotNil(t, ev)
		assert.Equal(t, "em_analise", ev.Details["status_anterior"])
		assert.Equal(t, "aprovada", ev.Details["status_novo"])
	})

	t.Run("any status can follow any other", func(t *testing.T) {
		f := newPropostaFixture()
		p := newTestProposta(t, tenantID, crm.PropostaCancelada)
		f.propostas.On("FindByID", ctx, tenantID, p.ID).Return(p, nil)
		f.propostas.On("Save", ctx, p).Return(nil)

		resp, err := f.svc.ChangeStatus(ctx, tenantID, uuid.New(), p.ID, ChangeStatusRequest{Status: "rascunho"})

		require.NoError(t, err)
		assert.Equal(t, "rascunho", resp.Status)
		assert.Nil(t, resp.DataDecisao)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		f := newPropostaFixture()
		p := newTestProposta(t, tenantID, crm.PropostaRascunho)
		f.propostas.On("FindByID", ctx, tenantID, p.ID).Return(p, nil)

		_, err := f.svc.ChangeStatus(ctx, tenantID, uuid.New(), p.ID, ChangeStatusRequest{Status: "rascunho"})

		require.NoError(t, err)
		f.propostas.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, f.pub.types())
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newPropostaFixture()
		p := newTestProposta(t, tenantID, crm.PropostaRascunho)
		f.propostas.On("FindByID", ctx, tenantID, p.ID).Return(p, nil)

		_, err := f.svc.ChangeStatus(ctx, tenantID, uuid.New(), p.ID, ChangeStatusRequest{Status: "arquivada"})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestPropostaService_Delete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newPropostaFixture()
	p := newTestProposta(t, tenantID, crm.PropostaRascunho)

	doc, err := crm.NewDocumento(tenantID, p.ID, "rg.pdf", "application/pdf", 1024, nil)
	require.NoError(t, err)

	comissao, err := crm.NewComissao(tenantID, p.ID, nil, crm.ComissaoInput{ValorComissao: decimal.NewFromInt(150)})
	require.NoError(t, err)
	comissao.ClearDomainEvents()

	f.propostas.On("FindByID", ctx, tenantID, p.ID).Return(p, nil)
	f.comissoes.On("FindByProposta", ctx, tenantID, p.ID).Return([]crm.Comissao{*comissao}, nil)
	f.documentos.On("FindActiveByProposta", ctx, tenantID, p.ID).Return([]crm.Documento{*doc}, nil)
	f.propostas.On("Delete", ctx, tenantID, p.ID).Return(nil)
	f.storage.On("DeleteObject", ctx, doc.StorageKey).Return(errors.New("bucket unavailable"))

	require.NoError(t, f.svc.Delete(ctx, tenantID, uuid.New(), p.ID))

	assert.Equal(t, []string{"comissao.deleted", "proposta.deleted"}, f.pub.types())
	f.comissoes.AssertExpectations(t)
	f.storage.AssertExpectations(t)
}

func TestPropostaService_Delete_RepositoryFailure(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newPropostaFixture()
	p := newTestProposta(t, tenantID, crm.PropostaRascunho)

	doc, err := crm.NewDocumento(tenantID, p.ID, "rg.pdf", "application/pdf", 1024, nil)
	require.NoError(t, err)
	comissao, err := crm.NewComissao(tenantID, p.ID, nil, crm.ComissaoInput{ValorComissao: decimal.NewFromInt(150)})
	require.NoError(t, err)
	comissao.ClearDomainEvents()

	f.propostas.On("FindByID", ctx, tenantID, p.ID).Return(p, nil)
	f.comissoes.On("FindByProposta", ctx, tenantID, p.ID).Return([]crm.Comissao{*comissao}, nil)
	f.documentos.On("FindActiveByProposta", ctx, tenantID, p.ID).Return([]crm.Documento{*doc}, nil)
	f.propostas.On("Delete", ctx, tenantID, p.ID).Return(errors.New("connection reset"))

	err = f.svc.Delete(ctx, tenantID, uuid.New(), p.ID)

	require.Error(t, err)
	assert.Empty(t, f.pub.types())
	f.comissoes.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	f.storage.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything)
}

func TestPropostaService_Options(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	f := newPropostaFixture()
	f.clientes.On("FindOptions", ctx, tenantID).Return([]crm.ClienteOption{{Nome: "Ana"}}, nil)
	f.bancos.On("FindOptions", ctx, tenantID, true).Return([]crm.Option{{Nome: "Itaú"}}, nil)
	f.produtos.On("FindActiveOptions", ctx, tenantID, (*uuid.UUID)(nil)).Return([]crm.ProdutoOption{}, nil)

	opts, err := f.svc.Options(ctx, tenantID)

	require.NoError(t, err)
	assert.Len(t, opts.Clientes, 1)
	assert.Len(t, opts.Bancos, 1)
	assert.Empty(t, opts.Produtos)
}
