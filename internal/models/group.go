package models

import "time"

// JoinCodeLength is the length of generated group join codes.
const JoinCodeLength = 8

// Group is a training crew with its own chat and shared streak.
type Group struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"size:100;not null" json:"name"`
	Description string            `gorm:"type:text" json:"description"`
	CreatorID   uint              `gorm:"not null;index" json:"creator_id"`
	Creator     User              `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE" json:"-"`
	JoinCode    string            `gorm:"uniqueIndex;size:20;not null" json:"join_code"`
	AvatarEmoji string            `gorm:"size:10;default:'💪'" json:"avatar_emoji"`
	Members     []GroupMembership `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Streak      *GroupStreak      `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"streak,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`

	// MemberCount is not persisted; computed at query time
	MemberCount int `gorm:"->" json:"member_count"`
}

// GroupMembership maps users to groups.
type GroupMembership struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_group_membership_pair;index" json:"user_id"`
	User     User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	GroupID  uint      `gorm:"not null;uniqueIndex:idx_group_membership_pair" json:"group_id"`
	IsAdmin  bool      `gorm:"not null;default:false" json:"is_admin"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// GroupStreak tracks consecutive active days for a group.
type GroupStreak struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	GroupID        uint       `gorm:"uniqueIndex;not null" json:"group_id"`
	CurrentStreak  int        `gorm:"not null;default:0" json:"current_streak"`
	BestStreak     int        `gorm:"not null;default:0" json:"best_streak"`
	ActiveMembers  int        `gorm:"not null;default:0" json:"active_members"`
	LastActiveDate *time.Time `gorm:"type:date" json:"last_active_date"`
}

// Message is a chat message addressed to a group or a single user.
type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SenderID    uint      `gorm:"not null;index" json:"sender_id"`
	Sender      User      `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender"`
	GroupID     *uint     `gorm:"index" json:"group_id,omitempty"`
	Group       *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	RecipientID *uint     `gorm:"index" json:"recipient_id,omitempty"`
	Recipient   *User     `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE" json:"-"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Read        bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}
