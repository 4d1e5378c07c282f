package repository

import (
	"context"

	"spottr/internal/cache"
	"spottr/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AchievementRepository defines persistence for achievement definitions and
// per-user progress.
type AchievementRepository interface {
	ListDefinitions(ctx context.Context) ([]models.Achievement, error)
	UpsertDefinitions(ctx context.Context, defs []models.Achievement) error
	ListForUser(ctx context.Context, userID uint) ([]models.UserAchievement, error)
	SaveProgress(ctx context.Context, rows []models.UserAchievement) error
}

type achievementRepository struct {
	db *gorm.DB
}

// NewAchievementRepository returns a new AchievementRepository implementation.
func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

// ListDefinitions returns every definition in id order, read through the cache.
func (r *achievementRepository) ListDefinitions(ctx context.Context) ([]models.Achievement, error) {
	var defs []models.Achievement
	err := cache.CacheAside(ctx, cache.AchievementCatalogKey, &defs, cache.CatalogTTL, func() error {
		return conn(ctx, r.db).Order("id ASC").Find(&defs).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return defs, nil
}

// UpsertDefinitions inserts definitions by name and refreshes the rest of
// their columns.
func (r *achievementRepository) UpsertDefinitions(ctx context.Context, defs []models.Achievement) error {
	if len(defs) == 0 {
		return nil
	}
	if err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "icon", "requirement_type", "requirement_value"}),
	}).Create(&defs).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateCatalog(ctx)
	return nil
}

func (r *achievementRepository) ListForUser(ctx context.Context, userID uint) ([]models.UserAchievement, error) {
	var rows []models.UserAchievement
	if err := conn(ctx, r.db).
		Preload("Achievement").
		Where("user_id = ?", userID).
		Order("achievement_id ASC").
		Find(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}

// SaveProgress upserts progress rows keyed by (user, achievement). An
// existing unlocked_at is never overwritten or cleared.
func (r *achievementRepository) SaveProgress(ctx context.Context, rows []models.UserAchievement) error {
	if len(rows) == 0 {
		return nil
	}
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			row := rows[i]
			updates := map[string]interface{}{
				"progress": row.Progress,
				"unlocked": row.Unlocked,
			}
			if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
				DoUpdates: clause.Assignments(updates),
			}).Create(&row).Error; err != nil {
				return err
			}
			if row.UnlockedAt != nil {
				if err := tx.Model(&models.UserAchievement{}).
					Where("user_id = ? AND achievement_id = ? AND unlocked_at IS NULL", row.UserID, row.AchievementID).
					Update("unlocked_at", row.UnlockedAt).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
