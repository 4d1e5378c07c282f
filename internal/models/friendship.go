package models

import (
	"time"
)

// Friendship represents a friend request from one user to another.
// The pair is unique in the sent direction; Accepted flips once the
// addressee confirms.
type Friendship struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FromUserID uint      `gorm:"not null;uniqueIndex:idx_friendship_users" json:"from_user_id"`
	ToUserID   uint      `gorm:"not null;uniqueIndex:idx_friendship_users;index" json:"to_user_id"`
	Accepted   bool      `gorm:"not null;default:false;index" json:"accepted"`
	CreatedAt  time.Time `json:"created_at"`

	// Relationships
	FromUser User `gorm:"foreignKey:FromUserID;constraint:OnDelete:CASCADE" json:"from_user,omitempty"`
	ToUser   User `gorm:"foreignKey:ToUserID;constraint:OnDelete:CASCADE" json:"to_user,omitempty"`
}

// TableName specifies the table name for GORM
func (Friendship) TableName() string {
	return "friendships"
}

// Other returns the counterpart of userID in the friendship.
func (f *Friendship) Other(userID uint) uint {
	if f.FromUserID == userID {
		return f.ToUserID
	}
	return f.FromUserID
}
