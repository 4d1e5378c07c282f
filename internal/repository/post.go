package repository

import (
	"context"
	"time"

	"spottr/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines persistence for posts, reactions and poll votes.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	List(ctx context.Context, authorIDs []uint, limit, offset int, viewerID uint) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID uint, limit int, viewerID uint) ([]*models.Post, error)
	CountSince(ctx context.Context, userID uint, from time.Time) (int64, error)
	CreatedAtBetween(ctx context.Context, userID uint, from, to time.Time) ([]time.Time, error)

	GetReaction(ctx context.Context, userID, postID uint) (*models.Reaction, error)
	SaveReaction(ctx context.Context, reaction *models.Reaction) error
	DeleteReaction(ctx context.Context, userID, postID uint) error

	UpsertPollVote(ctx context.Context, vote *models.PollVote) error
	GetPollVote(ctx context.Context, userID, postID uint) (*models.PollVote, error)
	PollVoteCounts(ctx context.Context, postID uint, options int) ([]int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(post).Error; err != nil {
		return passThrough(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	if err := r.applyPostDetails(conn(ctx, r.db), viewerID).
		Preload("User").
		Preload("User.Profile").
		First(&post, id).Error; err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

// List returns the newest posts. A nil authorIDs lists every author; an empty
// non-nil slice lists nothing.
func (r *postRepository) List(ctx context.Context, authorIDs []uint, limit, offset int, viewerID uint) ([]*models.Post, error) {
	if authorIDs != nil && len(authorIDs) == 0 {
		return []*models.Post{}, nil
	}
	query := r.applyPostDetails(conn(ctx, r.db), viewerID).
		Preload("User").
		Preload("User.Profile")
	if authorIDs != nil {
		query = query.Where("posts.user_id IN ?", authorIDs)
	}

	var posts []*models.Post
	if err := query.
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit int, viewerID uint) ([]*models.Post, error) {
	return r.List(ctx, []uint{userID}, limit, 0, viewerID)
}

func (r *postRepository) CountSince(ctx context.Context, userID uint, from time.Time) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.Post{}).
		Where("user_id = ? AND created_at >= ?", userID, from).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// CreatedAtBetween returns creation times of the user's posts in [from, to).
func (r *postRepository) CreatedAtBetween(ctx context.Context, userID uint, from, to time.Time) ([]time.Time, error) {
	var times []time.Time
	if err := conn(ctx, r.db).Model(&models.Post{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Order("created_at ASC").
		Pluck("created_at", &times).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return times, nil
}

func (r *postRepository) applyPostDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM reactions WHERE reactions.post_id = posts.id AND reactions.reaction_type = 'heart') AS heart_count, " +
		"(SELECT COUNT(*) FROM reactions WHERE reactions.post_id = posts.id AND reactions.reaction_type = 'thumbsup') AS thumbs_up_count, " +
		"(SELECT COUNT(*) FROM reactions WHERE reactions.post_id = posts.id AND reactions.reaction_type = 'flex') AS flex_count, " +
		"(SELECT COUNT(*) FROM reactions WHERE reactions.post_id = posts.id AND reactions.reaction_type = 'fire') AS fire_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count"

	if viewerID != 0 {
		return db.Select(selectQuery+", COALESCE((SELECT reactions.reaction_type FROM reactions WHERE reactions.post_id = posts.id AND reactions.user_id = ?), '') AS user_reaction", viewerID)
	}
	return db.Select(selectQuery + ", '' AS user_reaction")
}

func (r *postRepository) GetReaction(ctx context.Context, userID, postID uint) (*models.Reaction, error) {
	var reactions []models.Reaction
	if err := conn(ctx, r.db).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Limit(1).
		Find(&reactions).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(reactions) == 0 {
		return nil, nil
	}
	return &reactions[0], nil
}

// SaveReaction inserts the reaction or changes the type of the existing one.
func (r *postRepository) SaveReaction(ctx context.Context, reaction *models.Reaction) error {
	if err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"reaction_type"}),
	}).Create(reaction).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) DeleteReaction(ctx context.Context, userID, postID uint) error {
	if err := conn(ctx, r.db).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Reaction{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UpsertPollVote records the vote or moves the existing vote to a new option.
func (r *postRepository) UpsertPollVote(ctx context.Context, vote *models.PollVote) error {
	if err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"option_index"}),
	}).Create(vote).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetPollVote(ctx context.Context, userID, postID uint) (*models.PollVote, error) {
	var votes []models.PollVote
	if err := conn(ctx, r.db).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Limit(1).
		Find(&votes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(votes) == 0 {
		return nil, nil
	}
	return &votes[0], nil
}

// PollVoteCounts returns one vote count per option index in [0, options).
func (r *postRepository) PollVoteCounts(ctx context.Context, postID uint, options int) ([]int64, error) {
	var rows []struct {
		OptionIndex int
		Total       int64
	}
	if err := conn(ctx, r.db).Model(&models.PollVote{}).
		Select("option_index, COUNT(*) AS total").
		Where("post_id = ?", postID).
		Group("option_index").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	counts := make([]int64, options)
	for _, row := range rows {
		if row.OptionIndex >= 0 && row.OptionIndex < options {
			counts[row.OptionIndex] = row.Total
		}
	}
	return counts, nil
}
