package database

import "spottr/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Profile{},
		&models.Follow{},
		&models.Friendship{},
		&models.Gym{},
		&models.GymMembership{},
		&models.GymTopLifter{},
		&models.Post{},
		&models.Reaction{},
		&models.Comment{},
		&models.PollVote{},
		&models.ExerciseDefinition{},
		&models.WorkoutTemplate{},
		&models.TemplateExercise{},
		&models.Workout{},
		&models.WorkoutExercise{},
		&models.WorkoutSet{},
		&models.PersonalRecord{},
		&models.Group{},
		&models.GroupMembership{},
		&models.GroupStreak{},
		&models.Message{},
		&models.WorkoutInvite{},
		&models.Nudge{},
		&models.Achievement{},
		&models.UserAchievement{},
	}
}
