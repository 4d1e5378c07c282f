package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// PostType discriminates the content a post carries.
type PostType string

const (
	PostTypeWorkout PostType = "workout"
	PostTypePR      PostType = "pr"
	PostTypeStreak  PostType = "streak"
	PostTypeCheckin PostType = "checkin"
	PostTypeGeneral PostType = "post"
)

// ReactionType is one of the fixed reaction kinds.
type ReactionType string

const (
	ReactionHeart    ReactionType = "heart"
	ReactionThumbsUp ReactionType = "thumbsup"
	ReactionFlex     ReactionType = "flex"
	ReactionFire     ReactionType = "fire"
)

// Valid reports whether r is a known reaction kind.
func (r ReactionType) Valid() bool {
	switch r {
	case ReactionHeart, ReactionThumbsUp, ReactionFlex, ReactionFire:
		return true
	}
	return false
}

// MaxPollOptions caps the number of options on a poll.
const MaxPollOptions = 4

// Poll is an optional question attached to general and PR posts.
type Poll struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// PostBody is the type-specific part of a post.
type PostBody interface {
	PostType() PostType
}

// WorkoutBody links a published workout.
type WorkoutBody struct {
	WorkoutID   uint   `json:"workout_id"`
	WorkoutName string `json:"workout_name"`
	Location    string `json:"location,omitempty"`
}

func (WorkoutBody) PostType() PostType { return PostTypeWorkout }

// PRBody announces a personal record.
type PRBody struct {
	Exercise string `json:"exercise"`
	Weight   int    `json:"weight"`
	Poll     *Poll  `json:"poll,omitempty"`
}

func (PRBody) PostType() PostType { return PostTypePR }

// StreakBody celebrates a streak length.
type StreakBody struct {
	Days int `json:"days"`
}

func (StreakBody) PostType() PostType { return PostTypeStreak }

// CheckinBody records a gym check-in.
type CheckinBody struct {
	GymID      *uint    `json:"gym_id,omitempty"`
	Location   string   `json:"location,omitempty"`
	Activities []string `json:"activities,omitempty"`
}

func (CheckinBody) PostType() PostType { return PostTypeCheckin }

// GeneralBody is a plain text post, optionally with a poll.
type GeneralBody struct {
	Poll *Poll `json:"poll,omitempty"`
}

func (GeneralBody) PostType() PostType { return PostTypeGeneral }

// PostDetails is the persisted form of a PostBody. Exactly one field is set
// and it matches the owning post's PostType.
type PostDetails struct {
	Workout *WorkoutBody `json:"workout,omitempty"`
	PR      *PRBody      `json:"pr,omitempty"`
	Streak  *StreakBody  `json:"streak,omitempty"`
	Checkin *CheckinBody `json:"checkin,omitempty"`
	General *GeneralBody `json:"post,omitempty"`
}

func detailsFor(body PostBody) PostDetails {
	var d PostDetails
	switch b := body.(type) {
	case WorkoutBody:
		d.Workout = &b
	case PRBody:
		d.PR = &b
	case StreakBody:
		d.Streak = &b
	case CheckinBody:
		d.Checkin = &b
	case GeneralBody:
		d.General = &b
	}
	return d
}

func (d PostDetails) body() (PostBody, int) {
	var body PostBody
	n := 0
	if d.Workout != nil {
		body, n = *d.Workout, n+1
	}
	if d.PR != nil {
		body, n = *d.PR, n+1
	}
	if d.Streak != nil {
		body, n = *d.Streak, n+1
	}
	if d.Checkin != nil {
		body, n = *d.Checkin, n+1
	}
	if d.General != nil {
		body, n = *d.General, n+1
	}
	return body, n
}

// Post is a feed entry. Counts and the viewer's reaction are computed at query time.
type Post struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"not null;index" json:"user_id"`
	User      User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	PostType  PostType    `gorm:"type:varchar(20);not null;default:'post';index" json:"post_type"`
	Content   string      `gorm:"type:text" json:"content"`
	ImageURL  string      `json:"image_url,omitempty"`
	Hashtags  string      `gorm:"size:200" json:"hashtags,omitempty"`
	Details   PostDetails `gorm:"serializer:json;type:text" json:"details"`
	CreatedAt time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	HeartCount    int          `gorm:"->" json:"heart_count"`
	ThumbsUpCount int          `gorm:"->" json:"thumbsup_count"`
	FlexCount     int          `gorm:"->" json:"flex_count"`
	FireCount     int          `gorm:"->" json:"fire_count"`
	CommentsCount int          `gorm:"->" json:"comments_count"`
	UserReaction  ReactionType `gorm:"->" json:"user_reaction,omitempty"`
}

// NewPost builds a post whose type is derived from body.
func NewPost(userID uint, content string, body PostBody) *Post {
	return &Post{
		UserID:   userID,
		PostType: body.PostType(),
		Content:  content,
		Details:  detailsFor(body),
	}
}

// Body returns the type-specific content of the post.
func (p *Post) Body() PostBody {
	body, _ := p.Details.body()
	if body == nil {
		return GeneralBody{}
	}
	return body
}

// Poll returns the attached poll, if any.
func (p *Post) Poll() *Poll {
	switch b := p.Body().(type) {
	case PRBody:
		return b.Poll
	case GeneralBody:
		return b.Poll
	}
	return nil
}

// Validate checks that the stored variant agrees with PostType.
func (p *Post) Validate() error {
	body, n := p.Details.body()
	if n > 1 {
		return NewValidationError("post carries more than one content variant")
	}
	if n == 0 {
		if p.PostType == PostTypeGeneral {
			return nil
		}
		return NewValidationError(fmt.Sprintf("%s post is missing its details", p.PostType))
	}
	if body.PostType() != p.PostType {
		return NewValidationError(fmt.Sprintf("post type %s does not match %s details", p.PostType, body.PostType()))
	}
	if poll := p.Poll(); poll != nil {
		if len(poll.Options) < 2 || len(poll.Options) > MaxPollOptions {
			return NewValidationError(fmt.Sprintf("poll needs between 2 and %d options", MaxPollOptions))
		}
	}
	return nil
}

// BeforeSave rejects posts whose details disagree with their type.
func (p *Post) BeforeSave(*gorm.DB) error {
	return p.Validate()
}

// Reaction is a user's single reaction on a post.
type Reaction struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	UserID       uint         `gorm:"not null;uniqueIndex:idx_reaction_user_post" json:"user_id"`
	PostID       uint         `gorm:"not null;uniqueIndex:idx_reaction_user_post;index" json:"post_id"`
	ReactionType ReactionType `gorm:"type:varchar(10);not null" json:"reaction_type"`
	CreatedAt    time.Time    `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Post Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// Comment represents a comment on a post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// PollVote is a user's single vote on a post's poll.
type PollVote struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_poll_vote_user_post" json:"user_id"`
	PostID      uint      `gorm:"not null;uniqueIndex:idx_poll_vote_user_post;index" json:"post_id"`
	OptionIndex int       `gorm:"not null" json:"option_index"`
	CreatedAt   time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Post Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}
