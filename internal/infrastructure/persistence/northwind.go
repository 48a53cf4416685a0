package persistence

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/masoud-shayan/northwind/internal/domain/catalog"
	"github.com/masoud-shayan/northwind/internal/infrastructure/logger"
	"github.com/masoud-shayan/northwind/internal/infrastructure/telemetry"
)

// ErrContextClosed is returned by any operation on a closed Northwind.
var ErrContextClosed = errors.New("northwind data context is closed")

// Factory opens a fresh data context. Callers own the result and must Close it.
type Factory func(ctx context.Context) (*Northwind, error)

// Northwind is a unit of work over the catalog tables. Entities loaded
// through its sets are tracked until Close; SaveChanges writes every staged
// insert, column change and removal in one transaction.
//
// A Northwind is not safe for concurrent use.
type Northwind struct {
	db      *gorm.DB
	tracker *changeTracker
	metrics *telemetry.CatalogMetrics
	closed  bool
}

// NewNorthwind wraps db in a new data context.
func NewNorthwind(db *gorm.DB) *Northwind {
	return &Northwind{
		db:      db,
		tracker: newChangeTracker(),
	}
}

// Categories is the query root for the categories table.
func (n *Northwind) Categories() Set[catalog.Category] {
	return newSet[catalog.Category](n, CategorySortFields)
}

// Products is the query root for the products table.
func (n *Northwind) Products() Set[catalog.Product] {
	return newSet[catalog.Product](n, ProductSortFields)
}

// SaveChanges persists pending work and returns the number of rows affected.
// Nothing is written when any statement fails.
func (n *Northwind) SaveChanges(ctx context.Context) (int64, error) {
	if n.closed {
		return 0, ErrContextClosed
	}

	plan, err := n.tracker.plan(n.db)
	if err != nil {
		return 0, err
	}
	if plan.empty() {
		return 0, nil
	}

	var inserted, updated, deleted int64
	err = n.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range plan.inserts {
			result := tx.Omit(clause.Associations).Create(e.entity)
			if result.Error != nil {
				return fmt.Errorf("failed to insert %T: %w", e.entity, result.Error)
			}
			inserted += result.RowsAffected
		}
		for _, u := range plan.updates {
			result := tx.Model(u.entry.entity).Omit(clause.Associations).Updates(u.columns)
			if result.Error != nil {
				return fmt.Errorf("failed to update %T: %w", u.entry.entity, result.Error)
			}
			updated += result.RowsAffected
		}
		for _, e := range plan.deletes {
			result := tx.Delete(e.entity)
			if result.Error != nil {
				return fmt.Errorf("failed to delete %T: %w", e.entity, result.Error)
			}
			deleted += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	n.metrics.RecordRowsAffected(ctx, telemetry.OperationInsert, inserted)
	n.metrics.RecordRowsAffected(ctx, telemetry.OperationUpdate, updated)
	n.metrics.RecordRowsAffected(ctx, telemetry.OperationDelete, deleted)
	affected := inserted + updated + deleted

	if err := n.tracker.accept(n.db, plan); err != nil {
		return affected, err
	}

	logger.L(ctx).Debug("Changes saved",
		zap.Int("inserted", len(plan.inserts)),
		zap.Int("updated", len(plan.updates)),
		zap.Int("deleted", len(plan.deletes)),
		zap.Int64("rows_affected", affected),
	)
	return affected, nil
}

// Close discards tracked state. Subsequent calls on n fail with
// ErrContextClosed; the shared connection pool stays open.
func (n *Northwind) Close() error {
	if n.closed {
		return nil
	}
	n.closed = true
	n.tracker = newChangeTracker()
	return nil
}
