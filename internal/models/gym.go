package models

import (
	"time"

	"gorm.io/gorm"
)

// BusyLevel describes how crowded a gym currently is.
type BusyLevel string

const (
	BusyLow      BusyLevel = "low"
	BusyModerate BusyLevel = "moderate"
	BusyHigh     BusyLevel = "high"
	BusyVeryHigh BusyLevel = "very_high"
)

// BusyLevelFromReport maps a 1..5 crowd report onto a BusyLevel.
func BusyLevelFromReport(level int) (BusyLevel, bool) {
	switch level {
	case 1, 2:
		return BusyLow, true
	case 3:
		return BusyModerate, true
	case 4:
		return BusyHigh, true
	case 5:
		return BusyVeryHigh, true
	}
	return "", false
}

// Gym is a physical location users can belong to.
type Gym struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:200;not null" json:"name"`
	Address         string    `gorm:"type:text" json:"address"`
	Latitude        *float64  `json:"latitude"`
	Longitude       *float64  `json:"longitude"`
	MaxCapacity     int       `gorm:"not null;default:100" json:"max_capacity"`
	CurrentActivity int       `gorm:"not null;default:0" json:"current_activity"`
	BusyLevel       BusyLevel `gorm:"type:varchar(20);not null;default:'low'" json:"busy_level"`
	ArmsCount       int       `gorm:"not null;default:0" json:"arms_count"`
	LegsCount       int       `gorm:"not null;default:0" json:"legs_count"`
	CardioCount     int       `gorm:"not null;default:0" json:"cardio_count"`
	ClassesCount    int       `gorm:"not null;default:0" json:"classes_count"`
	OtherCount      int       `gorm:"not null;default:0" json:"other_count"`
	CreatedAt       time.Time `json:"created_at"`

	// MemberCount is not persisted; computed at query time
	MemberCount int `gorm:"->" json:"member_count"`
}

// GymMembership links a user to a gym. At most one row per user is active.
type GymMembership struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_gym_membership_pair;index:idx_gym_membership_active" json:"user_id"`
	User     User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	GymID    uint      `gorm:"not null;uniqueIndex:idx_gym_membership_pair" json:"gym_id"`
	Gym      Gym       `gorm:"foreignKey:GymID;constraint:OnDelete:CASCADE" json:"gym,omitempty"`
	IsActive bool      `gorm:"not null;default:true;index:idx_gym_membership_active" json:"is_active"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// GymTopLifter stores a member's best lifts at a gym.
type GymTopLifter struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	GymID       uint      `gorm:"not null;uniqueIndex:idx_gym_top_lifter_pair" json:"gym_id"`
	Gym         Gym       `gorm:"foreignKey:GymID;constraint:OnDelete:CASCADE" json:"-"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_gym_top_lifter_pair" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	SquatMax    int       `gorm:"not null;default:0" json:"squat_max"`
	BenchMax    int       `gorm:"not null;default:0" json:"bench_max"`
	DeadliftMax int       `gorm:"not null;default:0" json:"deadlift_max"`
	Total       int       `gorm:"not null;default:0;index" json:"total"`
	LastUpdated time.Time `gorm:"autoUpdateTime" json:"last_updated"`
}

// BeforeSave keeps Total equal to the sum of the three lifts.
func (l *GymTopLifter) BeforeSave(*gorm.DB) error {
	l.Total = l.SquatMax + l.BenchMax + l.DeadliftMax
	return nil
}
