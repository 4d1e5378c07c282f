package repository

import (
	"context"

	"spottr/internal/models"

	"gorm.io/gorm"
)

// InviteRepository defines persistence for workout invites and nudges.
type InviteRepository interface {
	CreateInvites(ctx context.Context, invites []models.WorkoutInvite) error
	GetByID(ctx context.Context, id uint) (*models.WorkoutInvite, error)
	UpdateStatus(ctx context.Context, id uint, status models.InviteStatus) error
	ListReceived(ctx context.Context, userID uint, status models.InviteStatus) ([]models.WorkoutInvite, error)

	CreateNudge(ctx context.Context, nudge *models.Nudge) error
	ListNudges(ctx context.Context, userID uint, limit int) ([]models.Nudge, error)
}

type inviteRepository struct {
	db *gorm.DB
}

// NewInviteRepository returns a new InviteRepository implementation.
func NewInviteRepository(db *gorm.DB) InviteRepository {
	return &inviteRepository{db: db}
}

func (r *inviteRepository) CreateInvites(ctx context.Context, invites []models.WorkoutInvite) error {
	if len(invites) == 0 {
		return nil
	}
	if err := conn(ctx, r.db).Omit("FromUser", "ToUser", "Gym").Create(&invites).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *inviteRepository) GetByID(ctx context.Context, id uint) (*models.WorkoutInvite, error) {
	var invite models.WorkoutInvite
	if err := conn(ctx, r.db).First(&invite, id).Error; err != nil {
		return nil, notFoundOr(err, "Invite", id)
	}
	return &invite, nil
}

func (r *inviteRepository) UpdateStatus(ctx context.Context, id uint, status models.InviteStatus) error {
	if err := conn(ctx, r.db).Model(&models.WorkoutInvite{}).
		Where("id = ?", id).
		Update("status", status).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *inviteRepository) ListReceived(ctx context.Context, userID uint, status models.InviteStatus) ([]models.WorkoutInvite, error) {
	var invites []models.WorkoutInvite
	query := conn(ctx, r.db).
		Preload("FromUser").
		Preload("FromUser.Profile").
		Preload("Gym").
		Where("to_user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at DESC").Find(&invites).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return invites, nil
}

func (r *inviteRepository) CreateNudge(ctx context.Context, nudge *models.Nudge) error {
	if err := conn(ctx, r.db).Omit("FromUser", "ToUser").Create(nudge).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *inviteRepository) ListNudges(ctx context.Context, userID uint, limit int) ([]models.Nudge, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	var nudges []models.Nudge
	if err := conn(ctx, r.db).
		Where("to_user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&nudges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return nudges, nil
}
