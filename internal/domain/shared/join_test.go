package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCategory struct {
	ID   int
	Name string
}

type testProduct struct {
	Name       string
	CategoryID *int
}

func intPtr(v int) *int { return &v }

func categoryKey(c testCategory) int { return c.ID }

func productKey(p testProduct) (int, bool) {
	if p.CategoryID == nil {
		return 0, false
	}
	return *p.CategoryID, true
}

func TestGroupJoin(t *testing.T) {
	categories := []testCategory{{1, "Beverages"}, {2, "Condiments"}, {3, "Empty"}}
	products := []testProduct{
		{"Chai", intPtr(1)},
		{"Aniseed Syrup", intPtr(2)},
		{"Chang", intPtr(1)},
		{"Orphan", nil},
		{"Ghost", intPtr(99)},
	}

	t.Run("keeps every outer element in order", func(t *testing.T) {
		groups := GroupJoin(categories, products, categoryKey, productKey)
		require.Len(t, groups, 3)
		assert.Equal(t, "Beverages", groups[0].Key.Name)
		assert.Equal(t, "Condiments", groups[1].Key.Name)
		assert.Equal(t, "Empty", groups[2].Key.Name)
	})

	t.Run("collects matches in inner order", func(t *testing.T) {
		groups := GroupJoin(categories, products, categoryKey, productKey)
		require.Len(t, groups[0].Items, 2)
		assert.Equal(t, "Chai", groups[0].Items[0].Name)
		assert.Equal(t, "Chang", groups[0].Items[1].Name)
		require.Len(t, groups[1].Items, 1)
		assert.Equal(t, "Aniseed Syrup", groups[1].Items[0].Name)
	})

	t.Run("empty outer element gets a non-nil empty group", func(t *testing.T) {
		groups := GroupJoin(categories, products, categoryKey, productKey)
		assert.NotNil(t, groups[2].Items)
		assert.Empty(t, groups[2].Items)
	})

	t.Run("inner elements without key or match are dropped", func(t *testing.T) {
		groups := GroupJoin(categories, products, categoryKey, productKey)
		total := 0
		for _, g := range groups {
			total += len(g.Items)
		}
		assert.Equal(t, 3, total)
	})

	t.Run("empty inputs", func(t *testing.T) {
		assert.Empty(t, GroupJoin[testCategory, testProduct](nil, products, categoryKey, productKey))

		groups := GroupJoin(categories, nil, categoryKey, productKey)
		require.Len(t, groups, 3)
		for _, g := range groups {
			assert.Empty(t, g.Items)
		}
	})
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("price", "cannot be negative")
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "Invalid input provided: price cannot be negative", err.Error())
}

func TestDomainError(t *testing.T) {
	err := NewDomainError("NOT_FOUND", "Resource not found")
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, "Resource not found", err.Error())
	assert.ErrorIs(t, errors.Join(errors.New("other"), ErrNotFound), ErrNotFound)
}
