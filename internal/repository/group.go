package repository

import (
	"context"

	"spottr/internal/models"
	"spottr/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GroupRepository defines persistence for groups, memberships and group streaks.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group, memberIDs []uint) error
	JoinCodeExists(ctx context.Context, code string) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.Group, error)
	GetByJoinCode(ctx context.Context, code string) (*models.Group, error)
	AddMember(ctx context.Context, groupID, userID uint) (bool, error)
	IsMember(ctx context.Context, groupID, userID uint) (bool, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Group, error)
	MemberIDs(ctx context.Context, groupID uint) ([]uint, error)
	GroupIDsForUser(ctx context.Context, userID uint) ([]uint, error)
	UpdateStreak(ctx context.Context, groupID uint, mutate func(s *models.GroupStreak) (bool, error)) (*models.GroupStreak, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository returns a new GroupRepository implementation.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

// Create inserts the group with its creator as admin, the extra members and
// an empty streak row.
func (r *groupRepository) Create(ctx context.Context, group *models.Group, memberIDs []uint) error {
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(group).Error; err != nil {
			return err
		}
		admin := models.GroupMembership{GroupID: group.ID, UserID: group.CreatorID, IsAdmin: true}
		if err := tx.Omit(clause.Associations).Create(&admin).Error; err != nil {
			return err
		}
		for _, id := range memberIDs {
			if id == group.CreatorID {
				continue
			}
			m := models.GroupMembership{GroupID: group.ID, UserID: id}
			if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&m).Error; err != nil {
				return err
			}
		}
		streak := models.GroupStreak{GroupID: group.ID}
		if err := tx.Create(&streak).Error; err != nil {
			return err
		}
		group.Streak = &streak
		return nil
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Join code already in use")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *groupRepository) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.Group{}).Where("join_code = ?", code).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *groupRepository) withMemberCount(db *gorm.DB) *gorm.DB {
	return db.Select("groups.*, (SELECT COUNT(*) FROM group_memberships WHERE group_memberships.group_id = groups.id) AS member_count")
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := r.withMemberCount(conn(ctx, r.db)).Preload("Streak").First(&group, id).Error; err != nil {
		return nil, notFoundOr(err, "Group", id)
	}
	return &group, nil
}

func (r *groupRepository) GetByJoinCode(ctx context.Context, code string) (*models.Group, error) {
	var group models.Group
	if err := conn(ctx, r.db).Where("join_code = ?", code).First(&group).Error; err != nil {
		return nil, notFoundOr(err, "Group", code)
	}
	return &group, nil
}

// AddMember is get-or-create. It reports whether a new membership was created.
func (r *groupRepository) AddMember(ctx context.Context, groupID, userID uint) (bool, error) {
	m := models.GroupMembership{GroupID: groupID, UserID: userID}
	res := conn(ctx, r.db).Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&m)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *groupRepository) IsMember(ctx context.Context, groupID, userID uint) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.GroupMembership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *groupRepository) ListForUser(ctx context.Context, userID uint) ([]models.Group, error) {
	var groups []models.Group
	if err := r.withMemberCount(conn(ctx, r.db)).
		Preload("Streak").
		Where("groups.id IN (?)", r.db.Model(&models.GroupMembership{}).Select("group_id").Where("user_id = ?", userID)).
		Order("groups.name ASC").
		Find(&groups).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return groups, nil
}

func (r *groupRepository) MemberIDs(ctx context.Context, groupID uint) ([]uint, error) {
	var ids []uint
	if err := conn(ctx, r.db).Model(&models.GroupMembership{}).
		Where("group_id = ?", groupID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *groupRepository) GroupIDsForUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := conn(ctx, r.db).Model(&models.GroupMembership{}).
		Where("user_id = ?", userID).
		Order("group_id ASC").
		Pluck("group_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// UpdateStreak locks the group's streak row, creating it when missing, and
// saves it when mutate reports a change.
func (r *groupRepository) UpdateStreak(ctx context.Context, groupID uint, mutate func(s *models.GroupStreak) (bool, error)) (*models.GroupStreak, error) {
	ctx, span := observability.StartQuerySpan(ctx, r.db.Dialector.Name(), "group_streaks", "UpdateStreak")
	defer span.End()

	var streak models.GroupStreak
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.GroupStreak{GroupID: groupID}).Error; err != nil {
			return err
		}
		if err := forUpdate(tx).Where("group_id = ?", groupID).First(&streak).Error; err != nil {
			return err
		}
		changed, err := mutate(&streak)
		if err != nil || !changed {
			return err
		}
		return tx.Model(&streak).
			Select("current_streak", "best_streak", "active_members", "last_active_date").
			Updates(&streak).Error
	})
	if err != nil {
		observability.SpanError(span, err)
		return nil, passThrough(err)
	}
	return &streak, nil
}
