package persistence

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"gorm.io/gorm"

	"github.com/masoud-shayan/northwind/internal/domain/shared"
)

// Scope narrows or shapes a query.
type Scope = func(*gorm.DB) *gorm.DB

// Set is an immutable, lazily evaluated query over one table. Composition
// methods return a new Set and never touch the store; ToList, First, Count
// and Project execute it.
type Set[T any] struct {
	owner      *Northwind
	sortFields map[string]bool
	scopes     []Scope
	err        error
}

func newSet[T any](owner *Northwind, sortFields map[string]bool) Set[T] {
	return Set[T]{owner: owner, sortFields: sortFields}
}

func (s Set[T]) with(scopes ...Scope) Set[T] {
	next := s
	next.scopes = append(slices.Clone(s.scopes), scopes...)
	return next
}

// Where filters rows with a gorm condition.
func (s Set[T]) Where(query any, args ...any) Set[T] {
	return s.with(func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	})
}

// Scopes applies reusable predicates such as PriceAbove.
func (s Set[T]) Scopes(scopes ...Scope) Set[T] {
	return s.with(scopes...)
}

// OrderBy appends an ascending sort key. NULLs sort after every value in
// both directions, whatever the store's default.
func (s Set[T]) OrderBy(column string) Set[T] {
	return s.order(column, "ASC")
}

// OrderByDescending appends a descending sort key.
func (s Set[T]) OrderByDescending(column string) Set[T] {
	return s.order(column, "DESC")
}

func (s Set[T]) order(column, direction string) Set[T] {
	field := ValidateSortField(column, s.sortFields, "")
	if field == "" {
		next := s
		next.err = errors.Join(s.err, shared.InvalidInput("order by", fmt.Sprintf("%q is not a sortable column", column)))
		return next
	}
	clause := field + " " + ValidateSortOrder(direction) + " NULLS LAST"
	return s.with(func(db *gorm.DB) *gorm.DB {
		return db.Order(clause)
	})
}

// Include eager loads a navigation collection with the results.
func (s Set[T]) Include(association string, conds ...any) Set[T] {
	return s.with(func(db *gorm.DB) *gorm.DB {
		return db.Preload(association, conds...)
	})
}

// Joins adds a join clause, evaluated by the store.
func (s Set[T]) Joins(query string, args ...any) Set[T] {
	return s.with(func(db *gorm.DB) *gorm.DB {
		return db.Joins(query, args...)
	})
}

// Select restricts the selected columns, typically before Project.
func (s Set[T]) Select(query any, args ...any) Set[T] {
	return s.with(func(db *gorm.DB) *gorm.DB {
		return db.Select(query, args...)
	})
}

func (s Set[T]) query(ctx context.Context) (*gorm.DB, error) {
	if s.owner == nil || s.owner.closed {
		return nil, ErrContextClosed
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.owner.db.WithContext(ctx).Model(new(T)).Scopes(s.scopes...), nil
}

// ToList runs the query and tracks every returned entity.
func (s Set[T]) ToList(ctx context.Context) ([]*T, error) {
	q, err := s.query(ctx)
	if err != nil {
		return nil, err
	}

	var rows []*T
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query %T: %w", *new(T), err)
	}
	for _, row := range rows {
		if err := s.owner.tracker.attach(s.owner.db, row); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// First returns the first row ordered by the set's sort keys, then the
// primary key. It fails with shared.ErrNotFound when nothing matches.
func (s Set[T]) First(ctx context.Context) (*T, error) {
	q, err := s.query(ctx)
	if err != nil {
		return nil, err
	}

	row := new(T)
	if err := q.First(row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%T: %w", *row, shared.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query %T: %w", *row, err)
	}
	if err := s.owner.tracker.attach(s.owner.db, row); err != nil {
		return nil, err
	}
	return row, nil
}

// Count returns the number of matching rows.
func (s Set[T]) Count(ctx context.Context) (int64, error) {
	q, err := s.query(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count %T: %w", *new(T), err)
	}
	return total, nil
}

// Add stages entity for insertion on the next SaveChanges.
func (s Set[T]) Add(entity *T) {
	s.owner.tracker.add(entity)
}

// Remove stages entity for deletion on the next SaveChanges.
func (s Set[T]) Remove(entity *T) {
	s.owner.tracker.remove(entity)
}

// RemoveRange loads every matching row and stages it for deletion.
// It returns the number of rows staged.
func (s Set[T]) RemoveRange(ctx context.Context) (int, error) {
	rows, err := s.ToList(ctx)
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		s.Remove(row)
	}
	return len(rows), nil
}

// Project runs s and scans each row into R without tracking. Column names
// map to R's fields through gorm's naming strategy.
func Project[R, T any](ctx context.Context, s Set[T]) ([]R, error) {
	q, err := s.query(ctx)
	if err != nil {
		return nil, err
	}

	var out []R
	if err := q.Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to project %T: %w", *new(T), err)
	}
	return out, nil
}
