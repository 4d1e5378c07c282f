package models

import "time"

// ExerciseCategory groups exercises by body area.
type ExerciseCategory string

const (
	CategoryChest     ExerciseCategory = "chest"
	CategoryBack      ExerciseCategory = "back"
	CategoryLegs      ExerciseCategory = "legs"
	CategoryShoulders ExerciseCategory = "shoulders"
	CategoryArms      ExerciseCategory = "arms"
	CategoryCardio    ExerciseCategory = "cardio"
	CategoryCore      ExerciseCategory = "core"
)

// ExerciseType tells strength work from cardio work.
type ExerciseType string

const (
	ExerciseTypeStrength ExerciseType = "strength"
	ExerciseTypeCardio   ExerciseType = "cardio"
)

// Defaults applied to new template and workout exercises.
const (
	DefaultSets = 3
	DefaultReps = 10
)

// ExerciseDefinition is a catalog entry.
type ExerciseDefinition struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	Name         string           `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Category     ExerciseCategory `gorm:"type:varchar(20);not null" json:"category"`
	ExerciseType ExerciseType     `gorm:"type:varchar(20);not null;default:'strength'" json:"exercise_type"`
}

// WorkoutTemplate is a reusable list of exercises owned by a user.
type WorkoutTemplate struct {
	ID                uint               `gorm:"primaryKey" json:"id"`
	UserID            uint               `gorm:"not null;index" json:"user_id"`
	User              User               `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Name              string             `gorm:"size:100;not null" json:"name"`
	EstimatedDuration int                `gorm:"not null;default:60" json:"estimated_duration"`
	LastUsed          *time.Time         `json:"last_used"`
	Exercises         []TemplateExercise `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE" json:"exercises"`
	CreatedAt         time.Time          `json:"created_at"`
}

// TemplateExercise is an ordered exercise slot inside a template.
type TemplateExercise struct {
	ID            uint               `gorm:"primaryKey" json:"id"`
	TemplateID    uint               `gorm:"not null;index" json:"template_id"`
	ExerciseID    uint               `gorm:"not null" json:"exercise_id"`
	Exercise      ExerciseDefinition `gorm:"foreignKey:ExerciseID;constraint:OnDelete:CASCADE" json:"exercise"`
	Order         int                `gorm:"column:sort_order;not null;default:0" json:"order"`
	DefaultSets   int                `gorm:"not null;default:3" json:"default_sets"`
	DefaultReps   int                `gorm:"not null;default:10" json:"default_reps"`
	DefaultWeight *float64           `json:"default_weight"`
}

// Workout is a single training session.
type Workout struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	UserID          uint              `gorm:"not null;index:idx_workout_user_started" json:"user_id"`
	User            User              `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Name            string            `gorm:"size:100;not null;default:'Workout'" json:"name"`
	TemplateID      *uint             `json:"template_id,omitempty"`
	Template        *WorkoutTemplate  `gorm:"foreignKey:TemplateID;constraint:OnDelete:SET NULL" json:"-"`
	StartedAt       time.Time         `gorm:"not null;index:idx_workout_user_started" json:"started_at"`
	CompletedAt     *time.Time        `json:"completed_at"`
	Completed       bool              `gorm:"not null;default:false" json:"completed"`
	DurationMinutes int               `gorm:"not null;default:0" json:"duration_minutes"`
	Notes           string            `gorm:"type:text" json:"notes"`
	PostedToFeed    bool              `gorm:"not null;default:false" json:"posted_to_feed"`
	Exercises       []WorkoutExercise `gorm:"foreignKey:WorkoutID;constraint:OnDelete:CASCADE" json:"exercises"`
}

// WorkoutExercise is an ordered exercise performed in a workout.
type WorkoutExercise struct {
	ID         uint               `gorm:"primaryKey" json:"id"`
	WorkoutID  uint               `gorm:"not null;index" json:"workout_id"`
	ExerciseID uint               `gorm:"not null" json:"exercise_id"`
	Exercise   ExerciseDefinition `gorm:"foreignKey:ExerciseID;constraint:OnDelete:CASCADE" json:"exercise"`
	Order      int                `gorm:"column:sort_order;not null;default:0" json:"order"`
	Sets       []WorkoutSet       `gorm:"foreignKey:WorkoutExerciseID;constraint:OnDelete:CASCADE" json:"sets"`
}

// WorkoutSet is an ordered set. Nil measurements were not recorded.
type WorkoutSet struct {
	ID                uint     `gorm:"primaryKey" json:"id"`
	WorkoutExerciseID uint     `gorm:"not null;index" json:"workout_exercise_id"`
	SetNumber         int      `gorm:"not null" json:"set_number"`
	Reps              *int     `json:"reps"`
	Weight            *float64 `json:"weight"`
	Distance          *float64 `json:"distance"`
	TimeSeconds       *int     `json:"time_seconds"`
	Completed         bool     `gorm:"not null;default:false" json:"completed"`
}

// PersonalRecord is a logged best lift.
type PersonalRecord struct {
	ID         uint               `gorm:"primaryKey" json:"id"`
	UserID     uint               `gorm:"not null;index" json:"user_id"`
	User       User               `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ExerciseID uint               `gorm:"not null;index" json:"exercise_id"`
	Exercise   ExerciseDefinition `gorm:"foreignKey:ExerciseID;constraint:OnDelete:CASCADE" json:"exercise"`
	Weight     float64            `gorm:"not null" json:"weight"`
	Reps       int                `gorm:"not null;default:1" json:"reps"`
	AchievedAt time.Time          `gorm:"not null" json:"achieved_at"`
}
