package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("NewCatalogMetrics: meter cannot be nil")

// Write operations reported by RecordRowsAffected.
const (
	OperationInsert = "insert"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// CatalogMetrics records how long catalog routines take and how many rows
// their saves write. A nil *CatalogMetrics records nothing.
type CatalogMetrics struct {
	routineDuration *Histogram
	rowsAffected    *Counter
}

// NewCatalogMetrics registers the catalog instruments on meter.
func NewCatalogMetrics(meter metric.Meter) (*CatalogMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "northwind_routine_duration_seconds",
		Description: "Duration of catalog routines",
		Unit:        "s",
		Boundaries:  RoutineDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	rows, err := NewCounter(meter,
		"northwind_rows_affected_total",
		"Rows written by SaveChanges",
		"{rows}",
	)
	if err != nil {
		return nil, err
	}

	return &CatalogMetrics{routineDuration: duration, rowsAffected: rows}, nil
}

// RecordRoutine records one routine run with its outcome.
func (m *CatalogMetrics) RecordRoutine(ctx context.Context, routine string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.routineDuration.RecordDuration(ctx, elapsed, AttrRoutine.String(routine), AttrOutcome.String(outcome))
}

// RecordRowsAffected adds rows written by one kind of statement.
func (m *CatalogMetrics) RecordRowsAffected(ctx context.Context, operation string, rows int64) {
	if m == nil || rows <= 0 {
		return
	}
	m.rowsAffected.Add(ctx, rows, AttrDBOperation.String(operation))
}
