// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// ProfileStatus is the presence label shown next to a profile.
type ProfileStatus string

const (
	ProfileStatusOnline     ProfileStatus = "online"
	ProfileStatusOffline    ProfileStatus = "offline"
	ProfileStatusWorkingOut ProfileStatus = "working-out"
)

// DefaultWorkoutFrequency is the weekly workout target assigned to new profiles.
const DefaultWorkoutFrequency = 5

// User represents an account in the Spottr application.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Profile   *Profile       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Profile holds per-user fitness state. Streak fields are owned by the streak engine.
type Profile struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	UserID           uint          `gorm:"uniqueIndex;not null" json:"user_id"`
	DisplayName      string        `gorm:"size:50" json:"display_name"`
	Bio              string        `gorm:"size:150" json:"bio"`
	AvatarEmoji      string        `gorm:"size:10;default:'💪'" json:"avatar_emoji"`
	WorkoutFrequency int           `gorm:"not null;default:5" json:"workout_frequency"`
	CurrentStreak    int           `gorm:"not null;default:0;check:chk_profiles_current_streak,current_streak >= 0" json:"current_streak"`
	LongestStreak    int           `gorm:"not null;default:0;check:chk_profiles_longest_streak,longest_streak >= current_streak" json:"longest_streak"`
	LastWorkoutDate  *time.Time    `gorm:"type:date" json:"last_workout_date"`
	Status           ProfileStatus `gorm:"type:varchar(20);default:'online'" json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}

// Name returns the display name, falling back to the username.
func (p *Profile) Name(username string) string {
	if p != nil && p.DisplayName != "" {
		return p.DisplayName
	}
	return username
}

// Follow is a one-directional follow edge.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follow_pair" json:"follower_id"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follow_pair;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`

	Follower  User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Following User `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
