package repository

import (
	"context"

	"spottr/internal/models"

	"gorm.io/gorm"
)

// FriendRepository defines the interface for friendship and follow data operations
type FriendRepository interface {
	Create(ctx context.Context, friendship *models.Friendship) error
	GetByID(ctx context.Context, id uint) (*models.Friendship, error)
	GetFriendshipBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error)
	GetPendingRequests(ctx context.Context, userID uint) ([]models.Friendship, error)
	Accept(ctx context.Context, friendshipID uint) error
	Delete(ctx context.Context, friendshipID uint) error
	FriendIDs(ctx context.Context, userID uint) ([]uint, error)
	CountFriends(ctx context.Context, userID uint) (int64, error)

	GetFollow(ctx context.Context, followerID, followingID uint) (*models.Follow, error)
	CreateFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, followerID, followingID uint) error
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
}

// friendRepository implements FriendRepository
type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository creates a new friend repository
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	if err := conn(ctx, r.db).Create(friendship).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Friend request already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *friendRepository) GetByID(ctx context.Context, id uint) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := conn(ctx, r.db).Preload("FromUser").Preload("ToUser").First(&friendship, id).Error; err != nil {
		return nil, notFoundOr(err, "Friendship", id)
	}
	return &friendship, nil
}

func (r *friendRepository) GetFriendshipBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error) {
	var friendships []models.Friendship

	// Either direction counts
	if err := conn(ctx, r.db).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userID1, userID2, userID2, userID1).
		Order("id ASC").
		Limit(1).
		Find(&friendships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(friendships) == 0 {
		return nil, nil
	}
	return &friendships[0], nil
}

func (r *friendRepository) GetPendingRequests(ctx context.Context, userID uint) ([]models.Friendship, error) {
	var friendships []models.Friendship
	if err := conn(ctx, r.db).
		Where("to_user_id = ? AND accepted = ?", userID, false).
		Preload("FromUser").
		Preload("FromUser.Profile").
		Order("created_at DESC").
		Find(&friendships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return friendships, nil
}

func (r *friendRepository) Accept(ctx context.Context, friendshipID uint) error {
	if err := conn(ctx, r.db).
		Model(&models.Friendship{}).
		Where("id = ?", friendshipID).
		Update("accepted", true).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *friendRepository) Delete(ctx context.Context, friendshipID uint) error {
	if err := conn(ctx, r.db).Delete(&models.Friendship{}, friendshipID).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// FriendIDs returns the ids of users with an accepted friendship with userID.
func (r *friendRepository) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var friendships []models.Friendship
	if err := conn(ctx, r.db).
		Select("from_user_id", "to_user_id").
		Where("accepted = ? AND (from_user_id = ? OR to_user_id = ?)", true, userID, userID).
		Find(&friendships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	ids := make([]uint, 0, len(friendships))
	for i := range friendships {
		ids = append(ids, friendships[i].Other(userID))
	}
	return ids, nil
}

func (r *friendRepository) CountFriends(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&models.Friendship{}).
		Where("accepted = ? AND (from_user_id = ? OR to_user_id = ?)", true, userID, userID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *friendRepository) GetFollow(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	var follows []models.Follow
	if err := conn(ctx, r.db).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Limit(1).
		Find(&follows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(follows) == 0 {
		return nil, nil
	}
	return &follows[0], nil
}

func (r *friendRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	if err := conn(ctx, r.db).Create(follow).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Already following")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *friendRepository) DeleteFollow(ctx context.Context, followerID, followingID uint) error {
	if err := conn(ctx, r.db).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *friendRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := conn(ctx, r.db).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *friendRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.Follow{}).Where("following_id = ?", userID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *friendRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
