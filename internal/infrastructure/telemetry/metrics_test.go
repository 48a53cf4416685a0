package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap/zaptest"

	"github.com/masoud-shayan/northwind/internal/infrastructure/telemetry"
	"github.com/masoud-shayan/northwind/internal/infrastructure/telemetry/telemetrytest"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:     false,
		ServiceName: "northwind-test",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("northwind"))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestNewMeterProvider_Enabled(t *testing.T) {
	ctx := context.Background()

	// The gRPC exporter connects lazily, so no collector is required.
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		ExportInterval:    time.Hour,
		ServiceName:       "northwind-test",
		Insecure:          true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, mp.IsEnabled())

	m, err := telemetry.NewCatalogMetrics(mp.Meter("northwind"))
	require.NoError(t, err)
	m.RecordRoutine(ctx, "ListProducts", time.Millisecond, nil)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_ = mp.Shutdown(cancelled)
}

func TestNewCatalogMetrics_NilMeter(t *testing.T) {
	m, err := telemetry.NewCatalogMetrics(nil)
	require.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, m)
}

func TestCatalogMetrics_NilRecordsNothing(t *testing.T) {
	var m *telemetry.CatalogMetrics

	assert.NotPanics(t, func() {
		m.RecordRoutine(context.Background(), "ListProducts", time.Millisecond, nil)
		m.RecordRowsAffected(context.Background(), telemetry.OperationInsert, 1)
	})
}

func TestCatalogMetrics_NoopMeter(t *testing.T) {
	m, err := telemetry.NewCatalogMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		m.RecordRowsAffected(context.Background(), telemetry.OperationDelete, 3)
	})
}

func TestCatalogMetrics_Record(t *testing.T) {
	m, reader := telemetrytest.NewCatalogMetrics(t)
	ctx := context.Background()

	m.RecordRowsAffected(ctx, telemetry.OperationInsert, 1)
	m.RecordRowsAffected(ctx, telemetry.OperationDelete, 3)
	m.RecordRowsAffected(ctx, telemetry.OperationDelete, 2)
	m.RecordRowsAffected(ctx, telemetry.OperationUpdate, 0)
	m.RecordRoutine(ctx, "AddProduct", 5*time.Millisecond, nil)
	m.RecordRoutine(ctx, "AddProduct", 7*time.Millisecond, assert.AnError)

	assert.Equal(t, map[string]int64{
		telemetry.OperationInsert: 1,
		telemetry.OperationDelete: 5,
	}, telemetrytest.RowsAffected(t, reader))
	assert.Equal(t, map[string]uint64{
		"AddProduct/ok":    1,
		"AddProduct/error": 1,
	}, telemetrytest.RoutineRuns(t, reader))
}
