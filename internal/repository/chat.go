package repository

import (
	"context"

	"spottr/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository defines the interface for group and direct message operations
type ChatRepository interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	GroupMessages(ctx context.Context, groupID uint, limit int) ([]*models.Message, error)
	DirectMessages(ctx context.Context, userID, otherID uint, limit int) ([]*models.Message, error)
	MarkGroupRead(ctx context.Context, groupID, viewerID uint) error
	MarkDirectRead(ctx context.Context, viewerID, senderID uint) error
	GroupUnreadCounts(ctx context.Context, groupIDs []uint, viewerID uint) (map[uint]int64, error)
	UnreadCount(ctx context.Context, viewerID uint) (int64, error)
}

// chatRepository implements ChatRepository
type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *chatRepository) GroupMessages(ctx context.Context, groupID uint, limit int) ([]*models.Message, error) {
	return r.latest(conn(ctx, r.db).Where("group_id = ?", groupID), limit)
}

func (r *chatRepository) DirectMessages(ctx context.Context, userID, otherID uint, limit int) ([]*models.Message, error) {
	return r.latest(conn(ctx, r.db).
		Where("group_id IS NULL").
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", userID, otherID, otherID, userID),
		limit)
}

// latest fetches the newest limit messages and returns them oldest first.
func (r *chatRepository) latest(query *gorm.DB, limit int) ([]*models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var messages []*models.Message
	if err := query.
		Preload("Sender").
		Preload("Sender.Profile").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	// Fetched DESC to get the latest messages; callers expect chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// MarkGroupRead marks the group's unread messages from other members as read.
func (r *chatRepository) MarkGroupRead(ctx context.Context, groupID, viewerID uint) error {
	if err := conn(ctx, r.db).Model(&models.Message{}).
		Where("group_id = ? AND sender_id <> ? AND read = ?", groupID, viewerID, false).
		Update("read", true).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *chatRepository) MarkDirectRead(ctx context.Context, viewerID, senderID uint) error {
	if err := conn(ctx, r.db).Model(&models.Message{}).
		Where("sender_id = ? AND recipient_id = ? AND read = ?", senderID, viewerID, false).
		Update("read", true).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GroupUnreadCounts counts unread messages per group, excluding the viewer's own.
func (r *chatRepository) GroupUnreadCounts(ctx context.Context, groupIDs []uint, viewerID uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(groupIDs))
	if len(groupIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		GroupID uint
		Total   int64
	}
	if err := conn(ctx, r.db).Model(&models.Message{}).
		Select("group_id, COUNT(*) AS total").
		Where("group_id IN ? AND sender_id <> ? AND read = ?", groupIDs, viewerID, false).
		Group("group_id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		counts[row.GroupID] = row.Total
	}
	return counts, nil
}

// UnreadCount counts unread direct messages to the viewer plus unread group
// messages from others in the viewer's groups.
func (r *chatRepository) UnreadCount(ctx context.Context, viewerID uint) (int64, error) {
	var count int64
	memberOf := r.db.Model(&models.GroupMembership{}).Select("group_id").Where("user_id = ?", viewerID)
	if err := conn(ctx, r.db).Model(&models.Message{}).
		Where("read = ? AND sender_id <> ?", false, viewerID).
		Where(r.db.Where("recipient_id = ?", viewerID).Or("group_id IN (?)", memberOf)).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
