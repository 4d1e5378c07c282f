package database

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"spottr/internal/middleware"

	"gorm.io/gorm"
)

// appliedMigration is one row of the migration ledger.
type appliedMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime;index"`
}

func (appliedMigration) TableName() string { return "migration_logs" }

// migrator applies a sorted migration set and keeps the ledger in step.
type migrator struct {
	db  *gorm.DB
	set []Migration
}

func newMigrator(db *gorm.DB) (*migrator, error) {
	set, err := embeddedMigrations()
	if err != nil {
		return nil, err
	}
	return &migrator{db: db, set: set}, nil
}

// applied lists ledger versions in ascending order. A database that has
// never run a migration has no ledger yet, which reads as empty.
func (m *migrator) applied(ctx context.Context) ([]int, error) {
	db := m.db.WithContext(ctx)
	if !db.Migrator().HasTable(&appliedMigration{}) {
		return nil, nil
	}
	var versions []int
	if err := db.Model(&appliedMigration{}).Order("version").Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("read migration ledger: %w", err)
	}
	return versions, nil
}

// pending returns the migrations the ledger does not record yet. Ledger
// versions this build does not know about are an error: the database is
// ahead of the code.
func (m *migrator) pending(ctx context.Context) ([]Migration, []int, error) {
	versions, err := m.applied(ctx)
	if err != nil {
		return nil, nil, err
	}
	done := make(map[int]bool, len(versions))
	var unknown []string
	for _, v := range versions {
		done[v] = true
		if _, ok := findMigration(m.set, v); !ok {
			unknown = append(unknown, fmt.Sprintf("%06d", v))
		}
	}
	if len(unknown) > 0 {
		return nil, versions, fmt.Errorf("migration_logs records versions this build does not ship: %s", strings.Join(unknown, ", "))
	}

	var todo []Migration
	for _, mig := range m.set {
		if !done[mig.Version] {
			todo = append(todo, mig)
		}
	}
	return todo, versions, nil
}

// up applies every pending migration in version order. Each script and its
// ledger row commit together.
func (m *migrator) up(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&appliedMigration{}); err != nil {
		return fmt.Errorf("create migration ledger: %w", err)
	}
	todo, _, err := m.pending(ctx)
	if err != nil {
		return err
	}
	for _, mig := range todo {
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(mig.UpScript).Error; err != nil {
				return err
			}
			return tx.Create(&appliedMigration{Version: mig.Version, Name: mig.Name}).Error
		})
		if err != nil {
			return fmt.Errorf("apply %s: %w", mig, err)
		}
		middleware.Logger.InfoContext(ctx, "migration applied", slog.String("migration", mig.String()))
	}
	return nil
}

// down reverts one applied migration and drops its ledger row in the same
// transaction.
func (m *migrator) down(ctx context.Context, version int) error {
	mig, ok := findMigration(m.set, version)
	if !ok {
		return fmt.Errorf("migration %d is not part of this build", version)
	}
	versions, err := m.applied(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(versions, version) {
		return fmt.Errorf("migration %s has not been applied", mig)
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(mig.DownScript).Error; err != nil {
			return err
		}
		return tx.Delete(&appliedMigration{}, "version = ?", version).Error
	})
	if err != nil {
		return fmt.Errorf("revert %s: %w", mig, err)
	}
	middleware.Logger.InfoContext(ctx, "migration reverted", slog.String("migration", mig.String()))
	return nil
}

// RunMigrations applies the embedded SQL migrations that are still pending.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}
	return m.up(ctx)
}

// RollbackMigration reverts a single applied migration by version.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}
	return m.down(ctx, version)
}
