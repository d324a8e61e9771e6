package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveVersioned_ComissaoPaidTwice(t *testing.T) {
	db := setupCRMTestDB(t)
	repo := NewGormComissaoRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	comissao, err := crm.NewComissao(tenantID, uuid.New(), nil, crm.ComissaoInput{ValorComissao: decimal.NewFromInt(150)})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, comissao))

	first, err := repo.FindByID(ctx, tenantID, comissao.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, tenantID, comissao.ID)
	require.NoError(t, err)

	require.NoError(t, first.MarcarComoPago(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, second.MarcarComoPago(time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)))

	require.NoError(t, repo.Save(ctx, first))
	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	stored, err := repo.FindByID(ctx, tenantID, comissao.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Version, stored.Version)
	require.NotNil(t, stored.DataRecebimento)
	assert.Equal(t, "2024-06-10", stored.DataRecebimento.Format(time.DateOnly))
}

func TestSaveVersioned_Banco(t *testing.T) {
	db := setupCRMTestDB(t)
	repo := NewGormBancoRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	banco, err := crm.NewBanco(tenantID, crm.BancoInput{Nome: "Itaú"})
	require.NoError(t, err)
	assert.Zero(t, banco.PersistedVersion())
	require.NoError(t, repo.Save(ctx, banco))
	assert.Equal(t, banco.Version, banco.PersistedVersion())

	t.Run("several changes in one save", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, tenantID, banco.ID)
		require.NoError(t, err)
		require.NoError(t, loaded.Update(crm.BancoInput{Nome: "Itaú Unibanco"}))
		loaded.Deactivate()
		require.NoError(t, repo.Save(ctx, loaded))

		stored, err := repo.FindByID(ctx, tenantID, banco.ID)
		require.NoError(t, err)
		assert.Equal(t, "Itaú Unibanco", stored.Nome)
		assert.False(t, stored.Ativo)
		assert.Equal(t, loaded.Version, stored.Version)
	})

	t.Run("unchanged aggregate saves again", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, tenantID, banco.ID)
		require.NoError(t, err)
		loaded.Deactivate()
		require.NoError(t, repo.Save(ctx, loaded))
		require.NoError(t, repo.Save(ctx, loaded))
	})

	t.Run("copy loaded before another save is stale", func(t *testing.T) {
		require.NoError(t, banco.Update(crm.BancoInput{Nome: "Banco Itaú"}))
		assert.ErrorIs(t, repo.Save(ctx, banco), shared.ErrConcurrencyConflict)
	})

	t.Run("deleted row", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, tenantID, banco.ID)
		require.NoError(t, err)
		require.NoError(t, repo.Delete(ctx, tenantID, banco.ID))
		loaded.Activate()
		assert.ErrorIs(t, repo.Save(ctx, loaded), shared.ErrConcurrencyConflict)
	})

	t.Run("other tenant cannot overwrite", func(t *testing.T) {
		mine, err := crm.NewBanco(tenantID, crm.BancoInput{Nome: "Bradesco"})
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, mine))

		mine.TenantID = uuid.New()
		require.NoError(t, mine.Update(crm.BancoInput{Nome: "Sequestrado"}))
		assert.ErrorIs(t, repo.Save(ctx, mine), shared.ErrConcurrencyConflict)

		stored, err := repo.FindByID(ctx, tenantID, mine.ID)
		require.NoError(t, err)
		assert.Equal(t, "Bradesco", stored.Nome)
	})
}
