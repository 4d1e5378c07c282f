package models

import "time"

// InviteType distinguishes gym-wide invites from direct friend invites.
type InviteType string

const (
	InviteTypeGym    InviteType = "gym"
	InviteTypeFriend InviteType = "friend"
)

// InviteStatus is the lifecycle state of a workout invite.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusDeclined InviteStatus = "declined"
)

// MaxGymInviteFanout caps how many gym members a single gym invite reaches.
const MaxGymInviteFanout = 20

// WorkoutInvite asks another user to train together.
type WorkoutInvite struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	FromUserID    uint         `gorm:"not null;index" json:"from_user_id"`
	FromUser      User         `gorm:"foreignKey:FromUserID;constraint:OnDelete:CASCADE" json:"from_user"`
	ToUserID      uint         `gorm:"not null;index" json:"to_user_id"`
	ToUser        User         `gorm:"foreignKey:ToUserID;constraint:OnDelete:CASCADE" json:"-"`
	InviteType    InviteType   `gorm:"type:varchar(10);not null" json:"invite_type"`
	GymID         *uint        `json:"gym_id,omitempty"`
	Gym           *Gym         `gorm:"foreignKey:GymID;constraint:OnDelete:CASCADE" json:"gym,omitempty"`
	WorkoutType   string       `gorm:"size:100" json:"workout_type"`
	ScheduledTime *time.Time   `json:"scheduled_time"`
	Spots         int          `gorm:"not null;default:1" json:"spots"`
	Status        InviteStatus `gorm:"type:varchar(10);not null;default:'pending'" json:"status"`
	Message       string       `gorm:"type:text" json:"message"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Nudge is a lightweight poke from one user to another.
type Nudge struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FromUserID uint      `gorm:"not null;index" json:"from_user_id"`
	FromUser   User      `gorm:"foreignKey:FromUserID;constraint:OnDelete:CASCADE" json:"-"`
	ToUserID   uint      `gorm:"not null;index" json:"to_user_id"`
	ToUser     User      `gorm:"foreignKey:ToUserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
