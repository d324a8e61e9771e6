package crm

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestNewProduto(t *testing.T) {
	tenantID := uuid.New()
	bancoID := uuid.New()

	t.Run("defaults to ativo", func(t *testing.T) {
		p, err := NewProduto(tenantID, ProdutoInput{Nome: "Consignado INSS", TipoCredito: "consignado", BancoID: &bancoID})
		require.NoError(t, err)
		assert.Equal(t, ProdutoAtivo, p.Status)
		assert.True(t, p.IsActive())
		assert.Equal(t, bancoID, *p.BancoID)
	})

	t.Run("nil banco id is dropped", func(t *testing.T) {
		nilID := uuid.Nil
		p, err := NewProduto(tenantID, ProdutoInput{Nome: "Pessoal", TipoCredito: "pessoal", BancoID: &nilID})
		require.NoError(t, err)
		assert.Nil(t, p.BancoID)
	})

	t.Run("taxa bounds are inclusive", func(t *testing.T) {
		_, err := NewProduto(tenantID, ProdutoInput{Nome: "A", TipoCredito: "x", TaxaJuros: decPtr("0")})
		assert.NoError(t, err)
		_, err = NewProduto(tenantID, ProdutoInput{Nome: "A", TipoCredito: "x", TaxaJuros: decPtr("100")})
		assert.NoError(t, err)
	})

	tests := []struct {
		name  string
		input ProdutoInput
		field string
	}{
		{"missing nome", ProdutoInput{TipoCredito: "x"}, "nome"},
		{"missing tipo", ProdutoInput{Nome: "Produto"}, "tipo_credito"},
		{"negative taxa", ProdutoInput{Nome: "Produto", TipoCredito: "x", TaxaJuros: decPtr("-0.01")}, "taxa_juros"},
		{"taxa above 100", ProdutoInput{Nome: "Produto", TipoCredito: "x", TaxaJuros: decPtr("100.5")}, "taxa_juros"},
		{"unknown status", ProdutoInput{Nome: "Produto", TipoCredito: "x", Status: "suspenso"}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProduto(tenantID, tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.field, fieldOf(t, err))
		})
	}
}

func TestNewPromotora(t *testing.T) {
	tenantID := uuid.New()
	bancoID := uuid.New()

	p, err := NewPromotora(tenantID, PromotoraInput{
		Nome:           "Promotora Sul",
		BancoID:        bancoID,
		Email:          "contato@promotora.com.br",
		ComissaoPadrao: decPtr("3.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, "3.5", p.ComissaoPadrao.String())

	tests := []struct {
		name  string
		input PromotoraInput
		field string
	}{
		{"missing banco", PromotoraInput{Nome: "P", Email: "a@b.com"}, "banco_id"},
		{"missing email", PromotoraInput{Nome: "P", BancoID: bancoID}, "email"},
		{"invalid email", PromotoraInput{Nome: "P", BancoID: bancoID, Email: "a@"}, "email"},
		{"comissao above 100", PromotoraInput{Nome: "P", BancoID: bancoID, Email: "a@b.com", ComissaoPadrao: decPtr("101")}, "comissao_padrao"},
		{"invalid cnpj", PromotoraInput{Nome: "P", BancoID: bancoID, Email: "a@b.com", CNPJ: "123"}, "cnpj"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPromotora(tenantID, tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.field, fieldOf(t, err))
		})
	}
}
