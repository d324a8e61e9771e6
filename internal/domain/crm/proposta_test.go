package crm

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPropostaInput() PropostaInput {
	return PropostaInput{
		ClienteID:  uuid.New(),
		Valor:      decimal.NewFromInt(15000),
		Finalidade: "Reforma",
	}
}

func TestNewProposta(t *testing.T) {
	tenantID := uuid.New()

	t.Run("defaults to rascunho", func(t *testing.T) {
		p, err := NewProposta(tenantID, validPropostaInput())
		require.NoError(t, err)
		assert.Equal(t, PropostaRascunho, p.Status)
		assert.Nil(t, p.DataDecisao)
		assert.Contains(t, p.Label(), "Reforma")
	})

	t.Run("minimum valor is one cent", func(t *testing.T) {
		in := validPropostaInput()
		in.Valor = decimal.RequireFromString("0.01")
		_, err := NewProposta(tenantID, in)
		assert.NoError(t, err)
	})

	tests := []struct {
		name   string
		mutate func(*PropostaInput)
		field  string
	}{
		{"missing cliente", func(in *PropostaInput) { in.ClienteID = uuid.Nil }, "cliente_id"},
		{"zero valor", func(in *PropostaInput) { in.Valor = decimal.Zero }, "valor"},
		{"below one cent", func(in *PropostaInput) { in.Valor = decimal.RequireFromString("0.009") }, "valor"},
		{"finalidade too long", func(in *PropostaInput) { in.Finalidade = strings.Repeat("f", 201) }, "finalidade"},
		{"observacoes too long", func(in *PropostaInput) { in.Observacoes = strings.Repeat("o", 501) }, "observacoes"},
		{"unknown status", func(in *PropostaInput) { in.Status = "aberta" }, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validPropostaInput()
			tt.mutate(&in)
			_, err := NewProposta(tenantID, in)
			require.Error(t, err)
			assert.Equal(t, tt.field, fieldOf(t, err))
		})
	}
}

func TestPropostaChangeStatus(t *testing.T) {
	p, err := NewProposta(uuid.New(), validPropostaInput())
	require.NoError(t, err)
	p.ClearDomainEvents()

	require.NoError(t, p.ChangeStatus(PropostaAprovada))
	assert.Equal(t, PropostaAprovada, p.Status)
	require.NotNil(t, p.DataDecisao)
	assert.WithinDuration(t, time.Now(), *p.DataDecisao, time.Second)

	events := p.GetDomainEvents()
	require.Len(t, events, 1)
	changed := events[0].(*RecordChangedEvent)
	assert.Equal(t, "rascunho", changed.Details["status_anterior"])
	assert.Equal(t, "aprovada", changed.Details["status_novo"])

	// labels are not a state machine: a decided proposta can be reopened
	require.NoError(t, p.ChangeStatus(PropostaEmAnalise))
	assert.Nil(t, p.DataDecisao)

	require.NoError(t, p.ChangeStatus(PropostaEmAnalise))
	assert.Len(t, p.GetDomainEvents(), 2, "same status does not emit")

	assert.Error(t, p.ChangeStatus("pendente"))
}
