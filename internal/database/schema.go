package database

import (
	"context"
	"fmt"
	"log/slog"

	"spottr/internal/config"
	"spottr/internal/middleware"

	"gorm.io/gorm"
)

// Values accepted by DB_SCHEMA_MODE. An empty mode means hybrid.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaStatus describes what ApplySchema would do for a configuration.
type SchemaStatus struct {
	Mode               string
	Environment        string
	WillRunSQL         bool
	WillRunAutoMigrate bool
	AppliedVersions    []int
	PendingMigrations  []Migration
}

// schemaPlan is the resolved DB_SCHEMA_MODE for one driver and environment.
type schemaPlan struct {
	mode string
	sql  bool
	auto bool
}

// planSchema picks between the embedded SQL migrations and AutoMigrate.
// The SQL files are postgres dialect, so SQLite only ever auto-migrates.
// Production and staging never auto-migrate.
func planSchema(cfg *config.Config) (schemaPlan, error) {
	plan := schemaPlan{mode: cfg.DBSchemaMode}
	if plan.mode == "" {
		plan.mode = SchemaModeHybrid
	}
	locked := cfg.IsProduction() || cfg.Env == "staging" || cfg.Env == "stage"

	if cfg.DBDriver == config.DriverSQLite {
		if plan.mode == SchemaModeSQL {
			return plan, fmt.Errorf("DB_SCHEMA_MODE=sql needs the postgres driver")
		}
		plan.auto = true
		return plan, nil
	}

	switch plan.mode {
	case SchemaModeSQL:
		plan.sql = true
	case SchemaModeHybrid:
		plan.sql, plan.auto = true, !locked
	case SchemaModeAuto:
		if locked {
			return plan, fmt.Errorf("DB_SCHEMA_MODE=auto is not allowed in %q", cfg.Env)
		}
		plan.auto = true
	default:
		return plan, fmt.Errorf("unknown DB_SCHEMA_MODE %q", plan.mode)
	}
	return plan, nil
}

// ApplySchema brings the database up to date under DB_SCHEMA_MODE. SQL
// migrations run before AutoMigrate so hand-written DDL wins.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := planSchema(cfg)
	if err != nil {
		return err
	}
	if plan.sql {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations: %w", err)
		}
	}
	if !plan.auto {
		return nil
	}
	middleware.Logger.InfoContext(ctx, "auto-migrating models",
		slog.String("mode", plan.mode),
		slog.String("driver", db.Dialector.Name()))
	if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// GetSchemaStatus reports the resolved policy and, when SQL migrations are
// in play, which of them are still pending.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := planSchema(cfg)
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{
		Mode:               plan.mode,
		Environment:        cfg.Env,
		WillRunSQL:         plan.sql,
		WillRunAutoMigrate: plan.auto,
	}
	if !plan.sql {
		return status, nil
	}

	m, err := newMigrator(db)
	if err != nil {
		return nil, err
	}
	status.PendingMigrations, status.AppliedVersions, err = m.pending(ctx)
	if err != nil {
		return nil, err
	}
	return status, nil
}
