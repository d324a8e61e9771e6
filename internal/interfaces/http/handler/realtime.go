package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aprovacrm/backend/internal/domain/crm"
	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const realtimeBufferSize = 100

// Change kinds sent on the realtime stream
const (
	RealtimeInsert = "INSERT"
	RealtimeUpdate = "UPDATE"
	RealtimeDelete = "DELETE"
)

var realtimeTables = map[crm.EntityType]string{
	crm.EntityCliente:   "clientes",
	crm.EntityBanco:     "bancos",
	crm.EntityProduto:   "produtos",
	crm.EntityPromotora: "promotoras",
	crm.EntityProposta:  "propostas",
	crm.EntityComissao:  "comissoes",
	crm.EntityDocumento: "documentos",
}

var realtimeEvents = map[crm.ChangeAction]string{
	crm.ActionCreated: RealtimeInsert,
	crm.ActionUpdated: RealtimeUpdate,
	crm.ActionDeleted: RealtimeDelete,
}

// RealtimeMetrics reports the number of connected stream clients
type RealtimeMetrics interface {
	RecordRealtimeClients(ctx context.Context, n int)
}

// SSEClient represents a connected stream client
type SSEClient struct {
	ID       string
	UserID   uuid.UUID
	TenantID uuid.UUID
	Chan     chan SSEMessage
}

// SSEMessage is one server-sent event
type SSEMessage struct {
	Event string `json:"event"`
	Data  string `json:"data"`
	ID    string `json:"id,omitempty"`
}

// RealtimeChange tells the client which table changed so it can refetch
type RealtimeChange struct {
	Table string    `json:"table"`
	Event string    `json:"event"`
	ID    uuid.UUID `json:"id"`
}

// RealtimeHandler streams record changes of the caller's empresa over SSE.
// It is registered on the event bus and fans each crm change event out to
// the clients of the same tenant.
type RealtimeHandler struct {
	BaseHandler
	logger     *zap.Logger
	metrics    RealtimeMetrics
	clients    sync.Map // map[string]*SSEClient
	active     atomic.Int64
	ctx        context.Context
	cancel     context.CancelFunc
	heartbeat  time.Duration
	maxClients int
	started    bool
	startMu    sync.Mutex
}

// RealtimeOption configures a RealtimeHandler
type RealtimeOption func(*RealtimeHandler)

// WithRealtimeLogger sets the logger
func WithRealtimeLogger(logger *zap.Logger) RealtimeOption {
	return func(h *RealtimeHandler) {
		h.logger = logger
	}
}

// WithRealtimeHeartbeat sets the heartbeat interval
func WithRealtimeHeartbeat(interval time.Duration) RealtimeOption {
	return func(h *RealtimeHandler) {
		if interval > 0 {
			h.heartbeat = interval
		}
	}
}

// WithRealtimeMaxClients caps concurrent streams; zero means no cap
func WithRealtimeMaxClients(max int) RealtimeOption {
	return func(h *RealtimeHandler) {
		h.maxClients = max
	}
}

// WithRealtimeMetrics reports the client count on connect and disconnect
func WithRealtimeMetrics(m RealtimeMetrics) RealtimeOption {
	return func(h *RealtimeHandler) {
		h.metrics = m
	}
}

// NewRealtimeHandler creates a new RealtimeHandler
func NewRealtimeHandler(opts ...RealtimeOption) *RealtimeHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &RealtimeHandler{
		logger:     zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
		heartbeat:  30 * time.Second,
		maxClients: 1000,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start begins sending heartbeats
func (h *RealtimeHandler) Start() error {
	h.startMu.Lock()
	defer h.startMu.Unlock()

	if h.started {
		return errors.New("realtime handler already started")
	}
	go h.sendHeartbeats()
	h.started = true
	h.logger.Info("Realtime handler started", zap.Duration("heartbeat", h.heartbeat))
	return nil
}

// Stop disconnects every client
func (h *RealtimeHandler) Stop() {
	h.cancel()
	h.logger.Info("Realtime handler stopped")
}

// Name identifies the handler on the event bus
func (h *RealtimeHandler) Name() string {
	return "realtime-stream"
}

// EventTypes returns the event types this handler is interested in
func (h *RealtimeHandler) EventTypes() []string {
	return crm.AllEventTypes()
}

// Handle broadcasts a crm change to the clients of its tenant
func (h *RealtimeHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*crm.RecordChangedEvent)
	if !ok {
		return nil
	}
	table, ok := realtimeTables[changed.Entity]
	if !ok {
		return nil
	}
	kind, ok := realtimeEvents[changed.Action]
	if !ok {
		return nil
	}

	data, err := json.Marshal(RealtimeChange{Table: table, Event: kind, ID: changed.AggregateID()})
	if err != nil {
		return fmt.Errorf("failed to marshal realtime change: %w", err)
	}
	h.broadcast(changed.TenantID(), SSEMessage{
		Event: "change",
		Data:  string(data),
		ID:    changed.EventID().String(),
	})
	return nil
}

// broadcast sends a message to the clients of one tenant; uuid.Nil reaches everybody
func (h *RealtimeHandler) broadcast(tenantID uuid.UUID, msg SSEMessage) {
	h.clients.Range(func(_, value any) bool {
		client, ok := value.(*SSEClient)
		if !ok {
			return true
		}
		if tenantID != uuid.Nil && client.TenantID != tenantID {
			return true
		}
		select {
		case client.Chan <- msg:
		default:
			h.logger.Warn("Realtime client channel full, dropping message",
				zap.String("client_id", client.ID),
				zap.String("event", msg.Event))
		}
		return true
	})
}

func (h *RealtimeHandler) sendHeartbeats() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.broadcast(uuid.Nil, SSEMessage{
				Event: "heartbeat",
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			})
		}
	}
}

// Stream godoc
// @ID           realtimeStream
// @Summary      Subscribe to record changes
// @Description  Server-sent events. Each change event carries {table, event, id} with event INSERT, UPDATE or DELETE.
// @Description  Browsers may pass the access token in the access_token query parameter.
// @Tags         realtime
// @Produce      text/event-stream
// @Param        access_token query string false "Access token, for EventSource clients"
// @Success      200 {string} string "SSE stream"
// @Failure      401 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /realtime/stream [get]
func (h *RealtimeHandler) Stream(c *gin.Context) {
	tenantID, userID, ok := h.authContext(c)
	if !ok {
		return
	}

	n := h.active.Add(1)
	if h.maxClients > 0 && n > int64(h.maxClients) {
		h.active.Add(-1)
		h.ServiceUnavailable(c, "Limite de conexões em tempo real atingido")
		return
	}

	client := &SSEClient{
		ID:       uuid.New().String(),
		UserID:   userID,
		TenantID: tenantID,
		Chan:     make(chan SSEMessage, realtimeBufferSize),
	}
	h.clients.Store(client.ID, client)
	h.recordClients(c.Request.Context(), n)
	defer func() {
		h.clients.Delete(client.ID)
		h.recordClients(context.Background(), h.active.Add(-1))
		h.logger.Debug("Realtime client disconnected", zap.String("client_id", client.ID))
	}()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	h.logger.Debug("Realtime client connected",
		zap.String("client_id", client.ID),
		zap.String("tenant_id", tenantID.String()),
		zap.String("user_id", userID.String()))

	writeSSE(c.Writer, SSEMessage{
		Event: "connected",
		Data:  fmt.Sprintf(`{"client_id":%q,"timestamp":%d}`, client.ID, time.Now().Unix()),
	})
	c.Writer.Flush()

	reqCtx := c.Request.Context()
	for {
		select {
		case <-reqCtx.Done():
			return
		case <-h.ctx.Done():
			return
		case msg := <-client.Chan:
			writeSSE(c.Writer, msg)
			c.Writer.Flush()
		}
	}
}

// ClientCount returns the number of connected stream clients
func (h *RealtimeHandler) ClientCount() int {
	return int(h.active.Load())
}

func (h *RealtimeHandler) recordClients(ctx context.Context, n int64) {
	if h.metrics != nil {
		h.metrics.RecordRealtimeClients(ctx, int(n))
	}
}

func writeSSE(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}
