package persistence

import (
	"context"
	"database/sql/driver"
	"fmt"
	"reflect"

	"gorm.io/gorm"
)

type entityState int

const (
	stateUnchanged entityState = iota
	stateAdded
	stateDeleted
)

type trackedEntry struct {
	entity   any
	state    entityState
	snapshot map[string]any
}

type columnUpdate struct {
	entry   *trackedEntry
	columns map[string]any
}

type savePlan struct {
	inserts []*trackedEntry
	updates []columnUpdate
	deletes []*trackedEntry
}

func (p savePlan) empty() bool {
	return len(p.inserts) == 0 && len(p.updates) == 0 && len(p.deletes) == 0
}

// changeTracker remembers each loaded root entity together with a snapshot
// of its column values. Entities are keyed by pointer identity.
type changeTracker struct {
	entries map[any]*trackedEntry
	order   []any
}

func newChangeTracker() *changeTracker {
	return &changeTracker{entries: make(map[any]*trackedEntry)}
}

func (t *changeTracker) entry(entity any) (*trackedEntry, bool) {
	e, ok := t.entries[entity]
	return e, ok
}

func (t *changeTracker) put(entity any, e *trackedEntry) {
	if _, ok := t.entries[entity]; !ok {
		t.order = append(t.order, entity)
	}
	t.entries[entity] = e
}

func (t *changeTracker) attach(db *gorm.DB, entity any) error {
	if _, ok := t.entry(entity); ok {
		return nil
	}
	snapshot, err := columnValues(db, entity)
	if err != nil {
		return err
	}
	t.put(entity, &trackedEntry{entity: entity, state: stateUnchanged, snapshot: normalizeAll(snapshot)})
	return nil
}

func (t *changeTracker) add(entity any) {
	t.put(entity, &trackedEntry{entity: entity, state: stateAdded})
}

func (t *changeTracker) remove(entity any) {
	if e, ok := t.entry(entity); ok {
		if e.state == stateAdded {
			t.forget(entity)
			return
		}
		e.state = stateDeleted
		return
	}
	t.put(entity, &trackedEntry{entity: entity, state: stateDeleted})
}

func (t *changeTracker) forget(entity any) {
	delete(t.entries, entity)
	for i, key := range t.order {
		if key == entity {
			t.order = append(t.order[:i], t.order[i+1:]...)
			return
		}
	}
}

// plan compares every unchanged entry with its snapshot and collects the
// statements SaveChanges has to run, in tracking order.
func (t *changeTracker) plan(db *gorm.DB) (savePlan, error) {
	var p savePlan
	for _, key := range t.order {
		e := t.entries[key]
		switch e.state {
		case stateAdded:
			p.inserts = append(p.inserts, e)
		case stateDeleted:
			p.deletes = append(p.deletes, e)
		case stateUnchanged:
			current, err := columnValues(db, e.entity)
			if err != nil {
				return savePlan{}, err
			}
			changed := make(map[string]any)
			for column, value := range current {
				if !reflect.DeepEqual(normalize(value), e.snapshot[column]) {
					changed[column] = value
				}
			}
			if len(changed) > 0 {
				p.updates = append(p.updates, columnUpdate{entry: e, columns: changed})
			}
		}
	}
	return p, nil
}

// accept folds a committed plan back into the tracker: inserted and updated
// entities get fresh snapshots, deleted ones are forgotten.
func (t *changeTracker) accept(db *gorm.DB, p savePlan) error {
	for _, e := range p.deletes {
		t.forget(e.entity)
	}
	refresh := make([]*trackedEntry, 0, len(p.inserts)+len(p.updates))
	refresh = append(refresh, p.inserts...)
	for _, u := range p.updates {
		refresh = append(refresh, u.entry)
	}
	for _, e := range refresh {
		snapshot, err := columnValues(db, e.entity)
		if err != nil {
			return err
		}
		e.state = stateUnchanged
		e.snapshot = normalizeAll(snapshot)
	}
	return nil
}

// columnValues reads every non key column of entity through its gorm schema.
// Association fields carry no column and are skipped.
func columnValues(db *gorm.DB, entity any) (map[string]any, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(entity); err != nil {
		return nil, fmt.Errorf("failed to parse %T: %w", entity, err)
	}

	rv := reflect.Indirect(reflect.ValueOf(entity))
	values := make(map[string]any, len(stmt.Schema.DBNames))
	for _, name := range stmt.Schema.DBNames {
		field := stmt.Schema.FieldsByDBName[name]
		if field.PrimaryKey {
			continue
		}
		value, _ := field.ValueOf(context.Background(), rv)
		values[name] = value
	}
	return values, nil
}

func normalizeAll(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = normalize(v)
	}
	return out
}

// normalize reduces a field value to a comparable copy: pointers are
// dereferenced and driver.Valuer types are replaced by their driver value.
func normalize(v any) any {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	}
	if valuer, ok := v.(driver.Valuer); ok {
		if dv, err := valuer.Value(); err == nil {
			return dv
		}
	}
	return v
}
