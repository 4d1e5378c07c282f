package repository

import (
	"context"
	"strings"

	"spottr/internal/models"
	"spottr/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users and their profiles.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
	GetProfile(ctx context.Context, userID uint) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	UpdateStreak(ctx context.Context, userID uint, mutate func(p *models.Profile) (bool, error)) (*models.Profile, error)
	SetStatus(ctx context.Context, userID uint, status models.ProfileStatus) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user and its profile in one transaction. A profile
// with default values is created when user.Profile is nil.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		profile := user.Profile
		user.Profile = nil
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if profile == nil {
			profile = &models.Profile{}
		}
		profile.UserID = user.ID
		if profile.WorkoutFrequency == 0 {
			profile.WorkoutFrequency = models.DefaultWorkoutFrequency
		}
		if profile.AvatarEmoji == "" {
			profile.AvatarEmoji = "💪"
		}
		if profile.Status == "" {
			profile.Status = models.ProfileStatusOnline
		}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := conn(ctx, r.db).Preload("Profile").First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", strings.TrimSpace(username))
}

// findOne returns nil, nil when nothing matches.
func (r *userRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var users []models.User
	if err := conn(ctx, r.db).Preload("Profile").Where(query, arg).Limit(1).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// FindByIDs loads the users that exist among ids, with profiles. Unknown ids
// are silently absent from the result.
func (r *userRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := conn(ctx, r.db).Preload("Profile").Where("id IN ?", ids).Order("id ASC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	var users []models.User
	if err := conn(ctx, r.db).
		Preload("Profile").
		Joins("LEFT JOIN profiles ON profiles.user_id = users.id").
		Where("LOWER(users.username) LIKE ? OR LOWER(profiles.display_name) LIKE ?", pattern, pattern).
		Order("users.username ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) GetProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := conn(ctx, r.db).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, notFoundOr(err, "Profile", userID)
	}
	return &profile, nil
}

// UpdateProfile writes the editable profile columns. Streak columns are
// owned by UpdateStreak and never written here.
func (r *userRepository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	res := conn(ctx, r.db).
		Model(&models.Profile{}).
		Where("user_id = ?", profile.UserID).
		Select("display_name", "bio", "avatar_emoji", "workout_frequency", "status").
		Updates(profile)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Profile", profile.UserID)
	}
	return nil
}

// UpdateStreak loads the profile under a row lock, lets mutate change it and
// saves the streak columns when mutate reports a change. Concurrent callers
// for the same user are serialized.
func (r *userRepository) UpdateStreak(ctx context.Context, userID uint, mutate func(p *models.Profile) (bool, error)) (*models.Profile, error) {
	ctx, span := observability.StartQuerySpan(ctx, r.db.Dialector.Name(), "profiles", "UpdateStreak")
	defer span.End()

	var profile models.Profile
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
			return notFoundOr(err, "Profile", userID)
		}
		changed, err := mutate(&profile)
		if err != nil || !changed {
			return err
		}
		return tx.Model(&profile).
			Select("current_streak", "longest_streak", "last_workout_date").
			Updates(&profile).Error
	})
	if err != nil {
		observability.SpanError(span, err)
		return nil, passThrough(err)
	}
	return &profile, nil
}

func (r *userRepository) SetStatus(ctx context.Context, userID uint, status models.ProfileStatus) error {
	if err := conn(ctx, r.db).Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update("status", status).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
