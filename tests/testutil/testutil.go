// Package testutil provides common test utilities for the northwind module:
// mocked and migrated databases, scripted console input and context helpers.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/masoud-shayan/northwind/internal/infrastructure/config"
	"github.com/masoud-shayan/northwind/internal/infrastructure/migration"
	"github.com/masoud-shayan/northwind/internal/infrastructure/persistence"
)

// MockDB wraps a GORM database with sqlmock for testing.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a new mock database speaking the postgres dialect.
// The caller is responsible for calling Close() when done.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err, "Failed to open GORM connection")

	return &MockDB{
		DB:    gormDB,
		Mock:  mock,
		SqlDB: mockDB,
	}
}

// Close closes the mock database connection.
func (m *MockDB) Close() error {
	return m.SqlDB.Close()
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	err := m.Mock.ExpectationsWereMet()
	require.NoError(t, err, "Unmet database expectations")
}

// SQLiteConfig returns a database config pointing at a fresh file in a
// per-test temporary directory.
func SQLiteConfig(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	return &config.DatabaseConfig{
		Driver:          config.DriverSQLite,
		Path:            filepath.Join(t.TempDir(), "northwind.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 60,
	}
}

// NewNorthwindDB migrates a temporary SQLite database with the embedded
// schema and seed data and opens it. It is closed when the test ends.
func NewNorthwindDB(t *testing.T) *persistence.Database {
	t.Helper()
	return NewNorthwindDBWithOptions(t, persistence.Options{})
}

// NewNorthwindDBWithOptions is NewNorthwindDB with extra options, such as
// metrics. The logger and SQL level are always the test's.
func NewNorthwindDBWithOptions(t *testing.T, opts persistence.Options) *persistence.Database {
	t.Helper()

	cfg := SQLiteConfig(t)
	require.NoError(t, migration.UpAll(cfg, zaptest.NewLogger(t)), "Failed to migrate test database")

	opts.Logger = zaptest.NewLogger(t)
	opts.SQLLevel = "warn"
	db, err := persistence.NewDatabaseWithOptions(cfg, opts)
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// OpenNorthwind starts a data context on db and closes it with the test.
func OpenNorthwind(t *testing.T, db *persistence.Database) *persistence.Northwind {
	t.Helper()

	nw, err := db.NewContext(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = nw.Close() })
	return nw
}

// ContextWithTimeout creates a context with a timeout for tests.
func ContextWithTimeout(t *testing.T, timeout time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), timeout)
}
