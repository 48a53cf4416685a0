package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedShipper struct {
	ShipperID   uint   `gorm:"primaryKey"`
	CompanyName string `gorm:"size:40"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedShipper{}))
	return db
}

func setupTracerWithRecorder() (*trace.TracerProvider, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	return trace.NewTracerProvider(trace.WithSpanProcessor(recorder)), recorder
}

func attributesOf(span trace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	return attrs
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "sqlite", cfg.DBSystem)
}

func TestDBSystemFor(t *testing.T) {
	assert.Equal(t, "postgresql", DBSystemFor("postgres"))
	assert.Equal(t, "sqlite", DBSystemFor("sqlite"))
}

func TestDBTracingPlugin_Register(t *testing.T) {
	tests := []struct {
		name string
		cfg  DBTracingConfig
	}{
		{"disabled", DefaultDBTracingConfig()},
		{"enabled", DBTracingConfig{Enabled: true, SlowQueryThresh: time.Second, DBSystem: "sqlite"}},
		{"enabled with full sql", DBTracingConfig{Enabled: true, LogFullSQL: true, SlowQueryThresh: time.Second, DBSystem: "sqlite"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			require.NoError(t, NewDBTracingPlugin(tt.cfg, zap.NewNop()).Register(db))

			require.NoError(t, db.Create(&tracedShipper{CompanyName: "Speedy Express"}).Error)
			var count int64
			require.NoError(t, db.Model(&tracedShipper{}).Count(&count).Error)
			assert.Equal(t, int64(1), count)
		})
	}
}

func TestDBTracingPlugin_Register_Twice(t *testing.T) {
	db := setupTestDB(t)
	cfg := DBTracingConfig{Enabled: true, SlowQueryThresh: time.Second, DBSystem: "sqlite"}

	require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).Register(db))
	assert.Error(t, NewDBTracingPlugin(cfg, zap.NewNop()).Register(db))
}

func TestAnnotateSpan(t *testing.T) {
	tp, recorder := setupTracerWithRecorder()
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: 50 * time.Millisecond}, nil)

	tests := []struct {
		name      string
		startedAt time.Time
		err       error
		slow      bool
		failed    bool
	}{
		{"fast query", time.Now(), nil, false, false},
		{"slow query", time.Now().Add(-time.Second), nil, true, false},
		{"failed query", time.Now(), errors.New("no such table: shippers"), false, true},
		{"record not found is not an error", time.Now(), gorm.ErrRecordNotFound, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder.Reset()
			ctx, span := tp.Tracer("test").Start(context.Background(), tt.name)
			ctx = context.WithValue(ctx, queryStartTimeKey, tt.startedAt)

			db := setupTestDB(t)
			db.Statement.Context = ctx
			db.Statement.Table = "shippers"
			db.Statement.RowsAffected = 3
			db.Error = tt.err

			plugin.annotateSpan(db)
			span.End()

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			attrs := attributesOf(spans[0])

			assert.Equal(t, "shippers", attrs["db.sql.table"].AsString())
			assert.Equal(t, int64(3), attrs["db.rows_affected"].AsInt64())
			_, marked := attrs["db.slow_query"]
			assert.Equal(t, tt.slow, marked)
			if tt.slow {
				require.Len(t, spans[0].Events(), 1)
				assert.Equal(t, "slow_query_warning", spans[0].Events()[0].Name)
			}
			if tt.failed {
				assert.Equal(t, codes.Error, spans[0].Status().Code)
			} else {
				assert.NotEqual(t, codes.Error, spans[0].Status().Code)
			}
		})
	}
}

func TestAnnotateSpan_NonRecording(t *testing.T) {
	plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())
	db := setupTestDB(t)

	db.Statement.Context = context.Background()
	assert.NotPanics(t, func() { plugin.annotateSpan(db) })

	db.Statement.Context = nil
	assert.NotPanics(t, func() { plugin.annotateSpan(db) })
}

func TestWithQueryStartTime(t *testing.T) {
	before := time.Now()
	ctx := WithQueryStartTime(context.Background())

	started, ok := ctx.Value(queryStartTimeKey).(time.Time)
	require.True(t, ok)
	assert.False(t, started.Before(before))
}
