package repository

import (
	"context"

	"spottr/internal/cache"
	"spottr/internal/models"
	"spottr/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GymRepository defines persistence for gyms, memberships and top lifters.
type GymRepository interface {
	Create(ctx context.Context, gym *models.Gym) error
	GetByID(ctx context.Context, id uint) (*models.Gym, error)
	List(ctx context.Context) ([]models.Gym, error)
	UpdateBusyLevel(ctx context.Context, id uint, level models.BusyLevel) error

	Join(ctx context.Context, userID, gymID uint) error
	Leave(ctx context.Context, userID, gymID uint) error
	ActiveMembership(ctx context.Context, userID uint) (*models.GymMembership, error)
	ActiveMemberIDs(ctx context.Context, gymID uint) ([]uint, error)
	CountActiveMembers(ctx context.Context, gymID uint) (int64, error)

	TopLifters(ctx context.Context, gymID uint, limit int) ([]models.GymTopLifter, error)
	UpsertTopLifter(ctx context.Context, lifter *models.GymTopLifter) error
}

type gymRepository struct {
	db *gorm.DB
}

// NewGymRepository returns a new GymRepository implementation.
func NewGymRepository(db *gorm.DB) GymRepository {
	return &gymRepository{db: db}
}

func (r *gymRepository) Create(ctx context.Context, gym *models.Gym) error {
	if err := conn(ctx, r.db).Create(gym).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID returns the gym row through the cache. MemberCount is always
// counted fresh.
func (r *gymRepository) GetByID(ctx context.Context, id uint) (*models.Gym, error) {
	var gym models.Gym
	err := cache.CacheAside(ctx, cache.GymKey(id), &gym, cache.GymTTL, func() error {
		return conn(ctx, r.db).First(&gym, id).Error
	})
	if err != nil {
		return nil, notFoundOr(err, "Gym", id)
	}
	count, err := r.CountActiveMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	gym.MemberCount = int(count)
	return &gym, nil
}

func (r *gymRepository) List(ctx context.Context) ([]models.Gym, error) {
	var gyms []models.Gym
	if err := conn(ctx, r.db).
		Select("gyms.*, (SELECT COUNT(*) FROM gym_memberships WHERE gym_memberships.gym_id = gyms.id AND gym_memberships.is_active = ?) AS member_count", true).
		Order("gyms.name ASC").
		Find(&gyms).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return gyms, nil
}

func (r *gymRepository) UpdateBusyLevel(ctx context.Context, id uint, level models.BusyLevel) error {
	if err := conn(ctx, r.db).Model(&models.Gym{}).
		Where("id = ?", id).
		Update("busy_level", level).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateGym(ctx, id)
	return nil
}

// Join makes gymID the user's only active gym. Other active memberships are
// deactivated in the same transaction, which holds the user row lock so
// concurrent joins for one user run one after the other.
func (r *gymRepository) Join(ctx context.Context, userID, gymID uint) error {
	ctx, span := observability.StartQuerySpan(ctx, r.db.Dialector.Name(), "gym_memberships", "Join")
	defer span.End()

	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := forUpdate(tx).Select("id").Where("id = ?", userID).Take(&user).Error; err != nil {
			return notFoundOr(err, "User", userID)
		}
		if err := tx.Model(&models.GymMembership{}).
			Where("user_id = ? AND gym_id <> ? AND is_active = ?", userID, gymID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		membership := models.GymMembership{UserID: userID, GymID: gymID, IsActive: true}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "gym_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"is_active": true}),
		}).Create(&membership).Error
	})
	if err != nil {
		observability.SpanError(span, err)
		return passThrough(err)
	}
	return nil
}

func (r *gymRepository) Leave(ctx context.Context, userID, gymID uint) error {
	if err := conn(ctx, r.db).Model(&models.GymMembership{}).
		Where("user_id = ? AND gym_id = ?", userID, gymID).
		Update("is_active", false).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ActiveMembership returns nil, nil when the user has no active gym.
func (r *gymRepository) ActiveMembership(ctx context.Context, userID uint) (*models.GymMembership, error) {
	var memberships []models.GymMembership
	if err := conn(ctx, r.db).
		Preload("Gym").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("joined_at DESC").
		Limit(1).
		Find(&memberships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(memberships) == 0 {
		return nil, nil
	}
	return &memberships[0], nil
}

func (r *gymRepository) ActiveMemberIDs(ctx context.Context, gymID uint) ([]uint, error) {
	var ids []uint
	if err := conn(ctx, r.db).Model(&models.GymMembership{}).
		Where("gym_id = ? AND is_active = ?", gymID, true).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *gymRepository) CountActiveMembers(ctx context.Context, gymID uint) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.GymMembership{}).
		Where("gym_id = ? AND is_active = ?", gymID, true).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// TopLifters returns the gym's lifters by total, heaviest first.
func (r *gymRepository) TopLifters(ctx context.Context, gymID uint, limit int) ([]models.GymTopLifter, error) {
	if limit <= 0 || limit > 10 {
		limit = 10
	}
	var lifters []models.GymTopLifter
	if err := conn(ctx, r.db).
		Preload("User").
		Preload("User.Profile").
		Where("gym_id = ?", gymID).
		Order("total DESC, user_id ASC").
		Limit(limit).
		Find(&lifters).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return lifters, nil
}

// UpsertTopLifter stores the lifter's maxes; Total is recomputed on save.
func (r *gymRepository) UpsertTopLifter(ctx context.Context, lifter *models.GymTopLifter) error {
	if err := conn(ctx, r.db).Omit("User", "Gym").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "gym_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"squat_max", "bench_max", "deadlift_max", "total", "last_updated"}),
	}).Create(lifter).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
