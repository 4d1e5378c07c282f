package models

import "time"

// Built-in achievement requirement types. Other values are stored as-is
// and never progress.
const (
	RequirementWorkouts = "workouts"
	RequirementStreak   = "streak"
	RequirementFriends  = "friends"
)

// Achievement defines a milestone.
type Achievement struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	Name             string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description      string `gorm:"type:text" json:"description"`
	Icon             string `gorm:"size:10" json:"icon"`
	RequirementType  string `gorm:"size:50;not null" json:"requirement_type"`
	RequirementValue int    `gorm:"not null;default:1" json:"requirement_value"`
}

// UserAchievement tracks one user's progress toward one achievement.
type UserAchievement struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        uint        `gorm:"not null;uniqueIndex:idx_user_achievement_pair" json:"user_id"`
	User          User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AchievementID uint        `gorm:"not null;uniqueIndex:idx_user_achievement_pair" json:"achievement_id"`
	Achievement   Achievement `gorm:"foreignKey:AchievementID;constraint:OnDelete:CASCADE" json:"achievement"`
	Progress      int         `gorm:"not null;default:0" json:"progress"`
	Unlocked      bool        `gorm:"not null;default:false" json:"unlocked"`
	UnlockedAt    *time.Time  `json:"unlocked_at"`
}

// ProgressPercent returns progress as a whole percentage capped at 100.
// A zero requirement counts as complete.
func (ua *UserAchievement) ProgressPercent() int {
	req := ua.Achievement.RequirementValue
	if req <= 0 {
		return 100
	}
	pct := ua.Progress * 100 / req
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}
