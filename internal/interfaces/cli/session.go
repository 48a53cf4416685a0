package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	apppeople "github.com/masoud-shayan/northwind/internal/application/people"
	"github.com/masoud-shayan/northwind/internal/infrastructure/config"
	"github.com/masoud-shayan/northwind/internal/infrastructure/logger"
	"github.com/masoud-shayan/northwind/internal/infrastructure/migration"
	"github.com/masoud-shayan/northwind/internal/infrastructure/persistence"
	"github.com/masoud-shayan/northwind/internal/infrastructure/telemetry"
)

// session holds the process-wide resources one invocation needs.
type session struct {
	cfg    *config.Config
	log    *zap.Logger
	tracer  *telemetry.TracerProvider
	meter   *telemetry.MeterProvider
	metrics *telemetry.CatalogMetrics
	db      *persistence.Database
	people  *apppeople.Service
}

func loadConfig(dir string) (*config.Config, error) {
	if dir != "" {
		return config.LoadFrom(dir)
	}
	return config.Load()
}

func openSession(ctx context.Context, configDir string) (*session, error) {
	cfg, err := loadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultConfig().TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	s := &session{cfg: cfg, log: log}

	s.tracer, err = telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return nil, errors.Join(err, s.close(ctx))
	}

	s.meter, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return nil, errors.Join(err, s.close(ctx))
	}
	s.metrics, err = telemetry.NewCatalogMetrics(s.meter.Meter("github.com/masoud-shayan/northwind"))
	if err != nil {
		return nil, errors.Join(err, s.close(ctx))
	}

	if cfg.Database.AutoMigrate {
		if err := migration.UpAll(&cfg.Database, log); err != nil {
			return nil, errors.Join(fmt.Errorf("failed to migrate database: %w", err), s.close(ctx))
		}
	}

	s.db, err = persistence.NewDatabaseWithOptions(&cfg.Database, persistence.Options{
		Logger:    log,
		SQLLevel:  cfg.Log.SQLLevel,
		SlowQuery: cfg.Telemetry.DBSlowQueryThresh,
		Metrics:   s.metrics,
		Tracing: telemetry.DBTracingConfig{
			Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        telemetry.DBSystemFor(cfg.Database.Driver),
		},
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to connect to database: %w", err), s.close(ctx))
	}

	s.people, err = apppeople.NewService(time.Now())
	if err != nil {
		return nil, errors.Join(err, s.close(ctx))
	}

	log.Debug("Session opened",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("driver", cfg.Database.Driver),
		zap.Bool("tracing", s.tracer.IsEnabled()),
		zap.Bool("metrics", s.meter.IsEnabled()),
	)
	return s, nil
}

func (s *session) close(ctx context.Context) error {
	var errs []error
	if s.db != nil {
		if stats, err := s.db.Stats(); err == nil {
			s.log.Debug("Closing connection pool",
				zap.Int("open_connections", stats.OpenConnections),
				zap.Int64("wait_count", stats.WaitCount),
				zap.Duration("wait_duration", stats.WaitDuration),
			)
		}
		if err := s.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	if s.meter != nil {
		errs = append(errs, s.meter.Shutdown(ctx))
	}
	if s.tracer != nil {
		errs = append(errs, s.tracer.Shutdown(ctx))
	}
	_ = logger.Sync(s.log)
	return errors.Join(errs...)
}
