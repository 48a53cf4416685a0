package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masoud-shayan/northwind/internal/domain/shared"
)

type newProduct struct {
	CategoryID int             `json:"category_id" validate:"gt=0"`
	Name       string          `json:"product_name" validate:"notblank,max=40"`
	Price      decimal.Decimal `json:"price" validate:"gte=0"`
	Status     string          `json:"status" validate:"omitempty,oneof=active discontinued"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(newProduct{CategoryID: 6, Name: "masoud shayan", Price: decimal.NewFromInt(500)})
	assert.NoError(t, err)
}

func TestStruct_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   newProduct
		field   string
		message string
	}{
		{"missing category", newProduct{Name: "Chai"}, "category_id", "must be greater than 0"},
		{"blank name", newProduct{CategoryID: 1, Name: "   "}, "product_name", "is required"},
		{"long name", newProduct{CategoryID: 1, Name: strings.Repeat("x", 41)}, "product_name", "must be at most 40 characters"},
		{"negative price", newProduct{CategoryID: 1, Name: "Chai", Price: decimal.NewFromInt(-1)}, "price", "must be greater than or equal to 0"},
		{"unknown status", newProduct{CategoryID: 1, Name: "Chai", Status: "gone"}, "status", "must be one of: active discontinued"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.ErrInvalidInput))
			assert.Contains(t, err.Error(), tt.field+" "+tt.message)
		})
	}
}

func TestDetails(t *testing.T) {
	err := Validator().Struct(newProduct{})

	details := Details(err)
	require.Len(t, details, 2)
	assert.Equal(t, FieldError{Field: "category_id", Message: "must be greater than 0"}, details[0])
	assert.Equal(t, "product_name", details[1].Field)

	assert.Nil(t, Details(errors.New("plain")))
}
