// Package integration runs the catalog routines against a real PostgreSQL
// server started with testcontainers.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	"github.com/masoud-shayan/northwind/internal/infrastructure/config"
	"github.com/masoud-shayan/northwind/internal/infrastructure/migration"
	"github.com/masoud-shayan/northwind/internal/infrastructure/persistence"
)

const (
	testUser     = "postgres"
	testPassword = "admin123"
	adminDB      = "northwind_admin"
)

var (
	// Shared container for all tests in the package
	sharedContainer   *tcpostgres.PostgresContainer
	sharedContainerMu sync.Mutex
	databaseSeq       atomic.Int64
)

func startContainer(t *testing.T) *tcpostgres.PostgresContainer {
	t.Helper()

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		return sharedContainer
	}

	container, err := tcpostgres.Run(context.Background(),
		"postgres:16-alpine",
		tcpostgres.WithDatabase(adminDB),
		tcpostgres.WithUsername(testUser),
		tcpostgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	sharedContainer = container
	return container
}

// containerConfig points a DatabaseConfig at dbName on the shared container.
func containerConfig(t *testing.T, container *tcpostgres.PostgresContainer, dbName string) *config.DatabaseConfig {
	t.Helper()
	ctx := context.Background()

	host, err := container.Host(ctx)
	require.NoError(t, err, "Failed to get container host")
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err, "Failed to get container port")
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	return &config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		Host:            host,
		Port:            portNum,
		User:            testUser,
		Password:        testPassword,
		DBName:          dbName,
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
	}
}

// NewTestDB creates a fresh, migrated and seeded database on the shared
// container. Each call gets its own database, so tests may mutate freely.
func NewTestDB(t *testing.T) *persistence.Database {
	t.Helper()

	container := startContainer(t)
	log := zaptest.NewLogger(t)

	admin, err := sql.Open("postgres", containerConfig(t, container, adminDB).DSN())
	require.NoError(t, err, "Failed to connect to admin database")
	name := fmt.Sprintf("northwind_%d", databaseSeq.Add(1))
	_, err = admin.Exec("CREATE DATABASE " + name)
	require.NoError(t, admin.Close())
	require.NoError(t, err, "Failed to create database")

	cfg := containerConfig(t, container, name)
	require.NoError(t, migration.UpAll(cfg, log), "Failed to run migrations")

	db, err := persistence.NewDatabaseWithOptions(cfg, persistence.Options{Logger: log})
	require.NoError(t, err, "Failed to connect to database")
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// CleanupSharedContainer terminates the shared container.
// This should be called in TestMain.
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = sharedContainer.Terminate(ctx)
		sharedContainer = nil
	}
}
