package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/aprovacrm/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockIdempotencyStore struct {
	mock.Mock
}

func (m *mockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotencyStore) Close() error { return m.Called().Error(0) }

func TestIdempotentHandler_SkipsRedelivery(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := newRecordingHandler("cliente.created")
	h := NewIdempotentHandler(inner, store, zap.NewNop())
	ev := newTestEvent("cliente.created")

	require.NoError(t, h.Handle(context.Background(), ev))
	require.NoError(t, h.Handle(context.Background(), ev))

	assert.Equal(t, 1, inner.count())
	stats := h.Metrics().Stats()
	assert.Equal(t, int64(1), stats.EventsProcessed)
	assert.Equal(t, int64(1), stats.EventsDuplicate)
	assert.Equal(t, []string{"cliente.created"}, h.EventTypes())
	assert.Same(t, inner, h.Unwrap())
}

func TestIdempotentHandler_HandlersSharingAStore(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	recorder := &namedHandler{}
	other := newRecordingHandler()
	h1 := NewIdempotentHandler(recorder, store, nil)
	h2 := NewIdempotentHandler(other, store, nil)
	ev := newTestEvent("proposta.created")

	require.NoError(t, h1.Handle(context.Background(), ev))
	require.NoError(t, h2.Handle(context.Background(), ev))

	assert.Equal(t, 1, recorder.count())
	assert.Equal(t, 1, other.count())
}

func TestIdempotentHandler_StoreErrorStillProcesses(t *testing.T) {
	store := new(mockIdempotencyStore)
	store.On("MarkProcessed", mock.Anything, mock.Anything, 24*time.Hour).
		Return(false, errors.New("redis down"))

	inner := newRecordingHandler()
	h := NewIdempotentHandler(inner, store, zap.NewNop())

	require.NoError(t, h.Handle(context.Background(), newTestEvent("banco.created")))
	assert.Equal(t, 1, inner.count())
	store.AssertExpectations(t)
}

func TestIdempotentHandler_KeyIncludesHandlerName(t *testing.T) {
	store := new(mockIdempotencyStore)
	ev := newTestEvent("banco.created")
	store.On("MarkProcessed", mock.Anything, "activity-recorder:"+ev.EventID().String(), time.Hour).
		Return(true, nil)

	h := NewIdempotentHandler(&namedHandler{}, store, nil,
		WithIdempotencyConfig(shared.IdempotencyConfig{TTL: time.Hour, Enabled: true}))

	require.NoError(t, h.Handle(context.Background(), ev))
	assert.Equal(t, "activity-recorder", h.Name())
	store.AssertExpectations(t)
}

func TestIdempotentHandler_FailureCounted(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := newRecordingHandler()
	inner.err = errors.New("insert failed")
	metrics := &IdempotencyMetrics{}
	h := NewIdempotentHandler(inner, store, nil, WithIdempotencyMetrics(metrics))

	err := h.Handle(context.Background(), newTestEvent("comissao.created"))
	assert.EqualError(t, err, "insert failed")
	assert.Equal(t, int64(1), metrics.Stats().EventsFailed)
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	store := new(mockIdempotencyStore)
	inner := newRecordingHandler()
	h := NewIdempotentHandler(inner, store, nil,
		WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}))
	ev := newTestEvent("cliente.deleted")

	require.NoError(t, h.Handle(context.Background(), ev))
	require.NoError(t, h.Handle(context.Background(), ev))

	assert.Equal(t, 2, inner.count())
	store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}
