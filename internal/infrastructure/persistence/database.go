package persistence

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/masoud-shayan/northwind/internal/infrastructure/config"
	"github.com/masoud-shayan/northwind/internal/infrastructure/logger"
	"github.com/masoud-shayan/northwind/internal/infrastructure/telemetry"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB      *gorm.DB
	metrics *telemetry.CatalogMetrics
}

// Options tune how NewDatabaseWithOptions wires logging and tracing.
type Options struct {
	Logger   *zap.Logger
	SQLLevel string // silent, error, warn, info
	// SlowQuery is the duration above which the SQL logger warns.
	// Zero means DefaultSlowQueryThreshold.
	SlowQuery time.Duration
	Tracing   telemetry.DBTracingConfig
	// Metrics receives rows written by each data context. Nil disables it.
	Metrics *telemetry.CatalogMetrics
}

// DefaultSlowQueryThreshold applies when Options.SlowQuery is unset.
const DefaultSlowQueryThreshold = 200 * time.Millisecond

// NewDatabase creates a new database connection with the given configuration
func NewDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	return NewDatabaseWithOptions(cfg, Options{SQLLevel: "silent"})
}

// NewDatabaseWithOptions opens the configured store with a zap-backed SQL
// logger and, when enabled, the otelgorm tracing plugin.
func NewDatabaseWithOptions(cfg *config.DatabaseConfig, opts Options) (*Database, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newGormLogger(log, opts.SQLLevel, opts.SlowQuery),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	opts.Logger = log
	return configure(db, cfg, opts)
}

// configure finishes a freshly opened store. Any failure closes the pool.
func configure(db *gorm.DB, cfg *config.DatabaseConfig, opts Options) (*Database, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := telemetry.NewDBTracingPlugin(opts.Tracing, opts.Logger).Register(db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to register database tracing: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db, metrics: opts.Metrics}, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.Open(cfg.SQLiteDSN()), nil
	case config.DriverPostgres:
		return postgres.Open(cfg.PostgresDSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func newGormLogger(log *zap.Logger, level string, slow time.Duration) gormlogger.Interface {
	if slow <= 0 {
		slow = DefaultSlowQueryThreshold
	}
	return logger.NewGormLogger(log, logger.MapGormLogLevel(level),
		logger.WithSlowThreshold(slow),
	)
}

// NewContext starts a unit of work over the shared connection pool.
func (d *Database) NewContext(ctx context.Context) (*Northwind, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	nw := NewNorthwind(d.DB)
	nw.metrics = d.metrics
	return nw, nil
}

// Factory returns a Factory bound to d.
func (d *Database) Factory() Factory {
	return d.NewContext
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}

// Stats returns database connection pool statistics and an error if unable to retrieve
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
}
