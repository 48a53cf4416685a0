// Package telemetrytest records catalog metrics in memory for tests.
package telemetrytest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/masoud-shayan/northwind/internal/infrastructure/telemetry"
)

// NewCatalogMetrics returns catalog metrics read by a manual reader.
func NewCatalogMetrics(t *testing.T) (*telemetry.CatalogMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := telemetry.NewCatalogMetrics(provider.Meter("northwind-test"))
	require.NoError(t, err)
	return m, reader
}

// RowsAffected sums the rows counter by db.operation.
func RowsAffected(t *testing.T, reader sdkmetric.Reader) map[string]int64 {
	t.Helper()

	out := map[string]int64{}
	for _, m := range collect(t, reader) {
		if m.Name != "northwind_rows_affected_total" {
			continue
		}
		sum, ok := m.Data.(metricdata.Sum[int64])
		require.True(t, ok, "unexpected aggregation %T", m.Data)
		for _, dp := range sum.DataPoints {
			op, _ := dp.Attributes.Value(telemetry.AttrDBOperation)
			out[op.AsString()] += dp.Value
		}
	}
	return out
}

// RoutineRuns counts recorded routine durations keyed by "routine/outcome".
func RoutineRuns(t *testing.T, reader sdkmetric.Reader) map[string]uint64 {
	t.Helper()

	out := map[string]uint64{}
	for _, m := range collect(t, reader) {
		if m.Name != "northwind_routine_duration_seconds" {
			continue
		}
		hist, ok := m.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "unexpected aggregation %T", m.Data)
		for _, dp := range hist.DataPoints {
			routine, _ := dp.Attributes.Value(telemetry.AttrRoutine)
			outcome, _ := dp.Attributes.Value(telemetry.AttrOutcome)
			out[routine.AsString()+"/"+outcome.AsString()] += dp.Count
		}
	}
	return out
}

func collect(t *testing.T, reader sdkmetric.Reader) []metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var out []metricdata.Metrics
	for _, sm := range rm.ScopeMetrics {
		out = append(out, sm.Metrics...)
	}
	return out
}
