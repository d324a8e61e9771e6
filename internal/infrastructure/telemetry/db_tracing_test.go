package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/aprovacrm/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedBanco struct {
	ID   uint   `gorm:"primaryKey"`
	Nome string `gorm:"size:100"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedBanco{}))
	return db
}

func setupSpanRecorder(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, recorder
}

func TestDBTracingConfigFrom(t *testing.T) {
	cfg := DBTracingConfigFrom(config.TelemetryConfig{Enabled: true, DBTraceEnabled: true})
	assert.True(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)

	cfg = DBTracingConfigFrom(config.TelemetryConfig{Enabled: false, DBTraceEnabled: true, DBSlowQueryThresh: time.Second})
	assert.False(t, cfg.Enabled)
	assert.Equal(t, time.Second, cfg.SlowQueryThresh)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := setupTestDB(t)
	_, recorder := setupSpanRecorder(t)

	plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())
	require.NoError(t, plugin.RegisterOtelGorm(db))

	require.NoError(t, db.Create(&tracedBanco{Nome: "Banco do Brasil"}).Error)
	assert.Empty(t, recorder.Ended())
}

func TestDBTracingPlugin_RecordsSpans(t *testing.T) {
	db := setupTestDB(t)
	tp, recorder := setupSpanRecorder(t)

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"
	plugin := NewDBTracingPlugin(cfg, zap.NewNop()).WithTracerProvider(tp)
	require.NoError(t, plugin.RegisterOtelGorm(db))

	ctx, parent := tp.Tracer("test").Start(context.Background(), "banco.create")
	require.NoError(t, db.WithContext(ctx).Create(&tracedBanco{Nome: "Caixa"}).Error)

	var found tracedBanco
	require.NoError(t, db.WithContext(ctx).First(&found, "nome = ?", "Caixa").Error)
	parent.End()

	names := make([]string, 0)
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.Contains(t, names, "gorm.Create")
	assert.Contains(t, names, "gorm.Query")
	assert.Contains(t, names, "banco.create")
}

func TestSlowQueryCallback_MarksSpanAndLogs(t *testing.T) {
	db := setupTestDB(t)
	tp, recorder := setupSpanRecorder(t)
	core, logs := observer.New(zapcore.WarnLevel)

	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Nanosecond}, zap.New(core))

	ctx, span := tp.Tracer("test").Start(context.Background(), "slow")
	ctx = WithQueryStartTime(ctx)
	time.Sleep(time.Millisecond)

	stmt := db.WithContext(ctx).Table("traced_bancos")
	plugin.slowQueryCallback(stmt)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)

	var slow bool
	for _, attr := range ended[0].Attributes() {
		if attr.Key == "db.slow_query" {
			slow = attr.Value.AsBool()
		}
	}
	assert.True(t, slow)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "slow_query_warning", ended[0].Events()[0].Name)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Slow database query", logs.All()[0].Message)
	assert.Equal(t, "traced_bancos", logs.All()[0].ContextMap()["table"])
}

func TestSlowQueryCallback_FastQueryIgnored(t *testing.T) {
	db := setupTestDB(t)
	core, logs := observer.New(zapcore.WarnLevel)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Hour}, zap.New(core))

	plugin.slowQueryCallback(db.WithContext(WithQueryStartTime(context.Background())))
	plugin.slowQueryCallback(db.WithContext(context.Background()))

	assert.Zero(t, logs.Len())
}
