package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masoud-shayan/northwind/internal/infrastructure/telemetry"
	"github.com/masoud-shayan/northwind/internal/infrastructure/telemetry/telemetrytest"
)

func TestSaveChanges_RecordsRowsPerOperation(t *testing.T) {
	nw, mock := newMockNorthwind(t)
	metrics, reader := telemetrytest.NewCatalogMetrics(t)
	nw.metrics = metrics
	ctx := context.Background()

	mock.ExpectQuery(`SELECT \* FROM "products"`).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow(1, "Chai", 1, "18.00", 39, false).
			AddRow(2, "Chang", 1, "19.00", 17, false))

	products, err := nw.Products().ToList(ctx)
	require.NoError(t, err)
	require.True(t, products[0].IncreaseCost(decimal.NewFromInt(10)))
	nw.Products().Remove(products[1])

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "products" SET "unit_price"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "products"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	affected, err := nw.SaveChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, map[string]int64{
		telemetry.OperationUpdate: 1,
		telemetry.OperationDelete: 1,
	}, telemetrytest.RowsAffected(t, reader))
}

func TestSaveChanges_RollbackRecordsNothing(t *testing.T) {
	nw, mock := newMockNorthwind(t)
	metrics, reader := telemetrytest.NewCatalogMetrics(t)
	nw.metrics = metrics
	ctx := context.Background()

	mock.ExpectQuery(`SELECT \* FROM "products"`).
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow(1, "Chai", 1, "18.00", 39, false))

	products, err := nw.Products().ToList(ctx)
	require.NoError(t, err)
	nw.Products().Remove(products[0])

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "products"`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err = nw.SaveChanges(ctx)
	require.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, telemetrytest.RowsAffected(t, reader))
}

func TestDatabase_NewContextCarriesMetrics(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	metrics, _ := telemetrytest.NewCatalogMetrics(t)
	db.metrics = metrics

	mock.ExpectPing()

	nw, err := db.NewContext(context.Background())
	require.NoError(t, err)
	assert.Same(t, metrics, nw.metrics)
}
