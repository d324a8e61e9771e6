package crm

import (
	"testing"
	"time"

	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewComissao(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()

	c, err := NewComissao(tenantID, uuid.New(), &userID, ComissaoInput{
		ValorComissao:      decimal.NewFromInt(450),
		PercentualComissao: decPtr("3"),
	})
	require.NoError(t, err)
	assert.Equal(t, RecebimentoPendente, c.StatusRecebimento)
	assert.Equal(t, userID, *c.UsuarioID)
	assert.Equal(t, userID, *c.CreatedBy)
	assert.False(t, c.IsPaid())

	_, err = NewComissao(tenantID, uuid.Nil, nil, ComissaoInput{ValorComissao: decimal.NewFromInt(1)})
	assert.Equal(t, "proposta_id", fieldOf(t, err))

	_, err = NewComissao(tenantID, uuid.New(), nil, ComissaoInput{ValorComissao: decimal.Zero})
	assert.Equal(t, "valor_comissao", fieldOf(t, err))

	_, err = NewComissao(tenantID, uuid.New(), nil, ComissaoInput{ValorComissao: decimal.NewFromInt(1), PercentualComissao: decPtr("120")})
	assert.Equal(t, "percentual_comissao", fieldOf(t, err))
}

func TestComissaoMarcarComoPago(t *testing.T) {
	c, err := NewComissao(uuid.New(), uuid.New(), nil, ComissaoInput{ValorComissao: decimal.NewFromInt(100)})
	require.NoError(t, err)

	paidAt := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.MarcarComoPago(paidAt))
	assert.Equal(t, RecebimentoRecebido, c.StatusRecebimento)
	assert.Equal(t, paidAt, *c.DataRecebimento)
	assert.Equal(t, "2024-03-15", c.Snapshot()["data_recebimento"])

	err = c.MarcarComoPago(paidAt)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestNewDocumento(t *testing.T) {
	tenantID, propostaID := uuid.New(), uuid.New()

	d, err := NewDocumento(tenantID, propostaID, "comprovante renda.pdf", "application/pdf", 2048, nil)
	require.NoError(t, err)
	assert.Equal(t, DocumentoPending, d.Status)
	assert.Contains(t, d.StorageKey, propostaID.String())
	assert.Contains(t, d.StorageKey, "comprovante_renda.pdf")
	assert.Empty(t, d.GetDomainEvents())

	require.NoError(t, d.Confirm())
	assert.Equal(t, DocumentoActive, d.Status)
	assert.Len(t, d.GetDomainEvents(), 1)
	assert.Error(t, d.Confirm())

	_, err = NewDocumento(tenantID, propostaID, "script.sh", "application/x-sh", 10, nil)
	assert.Equal(t, "content_type", fieldOf(t, err))

	_, err = NewDocumento(tenantID, propostaID, "big.pdf", "application/pdf", MaxDocumentoSize+1, nil)
	assert.Equal(t, "size", fieldOf(t, err))
}

func TestAllEventTypes(t *testing.T) {
	types := AllEventTypes()
	assert.Contains(t, types, "proposta.updated")
	assert.Contains(t, types, "comissao.deleted")
	assert.Equal(t, "comissoes", EntityComissao.Table())
	assert.Equal(t, "clientes", EntityCliente.Table())
}
