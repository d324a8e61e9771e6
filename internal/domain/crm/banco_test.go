package crm

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBanco(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates active banco", func(t *testing.T) {
		b, err := NewBanco(tenantID, BancoInput{Nome: "Banco Parceiro", CNPJ: "11.222.333/0001-81"})
		require.NoError(t, err)
		assert.True(t, b.Ativo)
		assert.Equal(t, "11222333000181", b.CNPJ)
	})

	t.Run("cnpj is optional", func(t *testing.T) {
		b, err := NewBanco(tenantID, BancoInput{Nome: "Banco Parceiro"})
		require.NoError(t, err)
		assert.Empty(t, b.CNPJ)
	})

	tests := []struct {
		name  string
		input BancoInput
		field string
	}{
		{"empty nome", BancoInput{Nome: "   "}, "nome"},
		{"nome too long", BancoInput{Nome: strings.Repeat("b", 101)}, "nome"},
		{"invalid cnpj", BancoInput{Nome: "Banco", CNPJ: "11.222.333/0001-80"}, "cnpj"},
		{"invalid email", BancoInput{Nome: "Banco", Email: "nope"}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBanco(tenantID, tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.field, fieldOf(t, err))
		})
	}
}

func TestBancoDeactivate(t *testing.T) {
	b, err := NewBanco(uuid.New(), BancoInput{Nome: "Banco"})
	require.NoError(t, err)
	b.ClearDomainEvents()

	b.Deactivate()
	assert.False(t, b.Ativo)
	assert.Len(t, b.GetDomainEvents(), 1)

	b.Deactivate()
	assert.Len(t, b.GetDomainEvents(), 1, "deactivating twice is a no-op")

	b.Activate()
	assert.True(t, b.Ativo)
}
