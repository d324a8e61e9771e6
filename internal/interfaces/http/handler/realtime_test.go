package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/interfaces/http/dto"
	"github.com/aprovacrm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingRealtimeMetrics struct {
	mu     sync.Mutex
	counts []int
}

func (m *recordingRealtimeMetrics) RecordRealtimeClients(_ context.Context, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts = append(m.counts, n)
}

func (m *recordingRealtimeMetrics) snapshot() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.counts...)
}

// sseEvent is one parsed server-sent event
type sseEvent struct {
	Event string
	Data  string
}

func readSSEEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return ev
		case strings.HasPrefix(line, "event: "):
			ev.Event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.Data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func newRealtimeServer(h *RealtimeHandler, tenantID, userID uuid.UUID) *httptest.Server {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/realtime/stream", func(c *gin.Context) {
		c.Set(middleware.TenantIDKey, tenantID)
		c.Set(middleware.JWTUserIDKey, userID.String())
		c.Next()
	}, h.Stream)
	return httptest.NewServer(r)
}

func TestNewRealtimeHandler_Options(t *testing.T) {
	logger := zap.NewNop()
	h := NewRealtimeHandler(
		WithRealtimeLogger(logger),
		WithRealtimeHeartbeat(5*time.Second),
		WithRealtimeMaxClients(3),
	)

	assert.Equal(t, logger, h.logger)
	assert.Equal(t, 5*time.Second, h.heartbeat)
	assert.Equal(t, 3, h.maxClients)
	assert.Equal(t, "realtime-stream", h.Name())
	assert.ElementsMatch(t, crm.AllEventTypes(), h.EventTypes())
}

func TestRealtimeHandler_StartStop(t *testing.T) {
	h := NewRealtimeHandler()
	require.NoError(t, h.Start())
	assert.Error(t, h.Start())
	h.Stop()
}

func TestRealtimeHandler_StreamDeliversTenantChanges(t *testing.T) {
	tenantID := uuid.New()
	otherTenant := uuid.New()
	metrics := &recordingRealtimeMetrics{}
	h := NewRealtimeHandler(WithRealtimeMetrics(metrics))
	defer h.Stop()

	srv := newRealtimeServer(h, tenantID, uuid.New())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/realtime/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	assert.Equal(t, "connected", readSSEEvent(t, reader).Event)
	assert.Equal(t, 1, h.ClientCount())

	foreign := crm.NewRecordChangedEvent(crm.EntityCliente, crm.ActionCreated, uuid.New(), otherTenant, "Outro", nil, nil)
	require.NoError(t, h.Handle(ctx, foreign))

	propostaID := uuid.New()
	own := crm.NewRecordChangedEvent(crm.EntityProposta, crm.ActionUpdated, propostaID, tenantID, "Proposta", nil, nil)
	require.NoError(t, h.Handle(ctx, own))

	ev := readSSEEvent(t, reader)
	assert.Equal(t, "change", ev.Event)
	var change RealtimeChange
	require.NoError(t, json.Unmarshal([]byte(ev.Data), &change))
	assert.Equal(t, RealtimeChange{Table: "propostas", Event: RealtimeUpdate, ID: propostaID}, change)

	cancel()
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		counts := metrics.snapshot()
		return len(counts) == 2 && counts[0] == 1 && counts[1] == 0
	}, time.Second, 10*time.Millisecond)
}

func TestRealtimeHandler_MaxClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewRealtimeHandler(WithRealtimeMaxClients(1))
	h.active.Store(1)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/realtime/stream", nil)
	c.Set(middleware.TenantIDKey, uuid.New())
	c.Set(middleware.JWTUserIDKey, uuid.New().String())

	h.Stream(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeServiceUnavailable, resp.Error.Code)
	assert.Equal(t, 1, h.ClientCount())
}

func TestRealtimeHandler_StreamRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewRealtimeHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/realtime/stream", nil)

	h.Stream(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, h.ClientCount())
}

func TestRealtimeHandler_HandleMapsActions(t *testing.T) {
	tenantID := uuid.New()
	h := NewRealtimeHandler()
	client := &SSEClient{ID: "c1", TenantID: tenantID, Chan: make(chan SSEMessage, 10)}
	h.clients.Store(client.ID, client)

	tests := []struct {
		entity crm.EntityType
		action crm.ChangeAction
		table  string
		event  string
	}{
		{crm.EntityCliente, crm.ActionCreated, "clientes", RealtimeInsert},
		{crm.EntityBanco, crm.ActionUpdated, "bancos", RealtimeUpdate},
		{crm.EntityComissao, crm.ActionDeleted, "comissoes", RealtimeDelete},
		{crm.EntityDocumento, crm.ActionCreated, "documentos", RealtimeInsert},
	}
	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			id := uuid.New()
			require.NoError(t, h.Handle(context.Background(),
				crm.NewRecordChangedEvent(tt.entity, tt.action, id, tenantID, "x", nil, nil)))

			msg := <-client.Chan
			var change RealtimeChange
			require.NoError(t, json.Unmarshal([]byte(msg.Data), &change))
			assert.Equal(t, tt.table, change.Table)
			assert.Equal(t, tt.event, change.Event)
			assert.Equal(t, id, change.ID)
		})
	}
}

func TestWriteSSE(t *testing.T) {
	var sb strings.Builder
	writeSSE(&sb, SSEMessage{Event: "change", ID: "42", Data: `{"a":1}`})
	assert.Equal(t, "event: change\nid: 42\ndata: {\"a\":1}\n\n", sb.String())

	sb.Reset()
	writeSSE(&sb, SSEMessage{Data: "x"})
	assert.Equal(t, "data: x\n\n", sb.String())
}
