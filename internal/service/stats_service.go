package service

import (
	"context"

	"spottr/internal/repository"
)

// ProfileStats are the aggregates shown on a profile.
type ProfileStats struct {
	TotalWorkouts  int64   `json:"total_workouts"`
	TotalSets      int64   `json:"total_sets"`
	TotalWeight    float64 `json:"total_weight"`
	FriendsCount   int64   `json:"friends_count"`
	FollowersCount int64   `json:"followers_count"`
	FollowingCount int64   `json:"following_count"`
}

// WorkoutStats are the aggregates of a single workout.
type WorkoutStats struct {
	ExerciseCount     int64   `json:"exercise_count"`
	SetCount          int64   `json:"set_count"`
	TotalWeightLifted float64 `json:"total_weight_lifted"`
}

// StatsService recomputes aggregates from the store on every call.
type StatsService struct {
	statsRepo  repository.StatsRepository
	friendRepo repository.FriendRepository
}

func NewStatsService(statsRepo repository.StatsRepository, friendRepo repository.FriendRepository) *StatsService {
	return &StatsService{statsRepo: statsRepo, friendRepo: friendRepo}
}

func (s *StatsService) GetProfileStats(ctx context.Context, userID uint) (*ProfileStats, error) {
	totals, err := s.statsRepo.UserTotals(ctx, userID)
	if err != nil {
		return nil, err
	}
	friends, err := s.friendRepo.CountFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	followers, err := s.friendRepo.CountFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.friendRepo.CountFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileStats{
		TotalWorkouts:  totals.TotalWorkouts,
		TotalSets:      totals.TotalSets,
		TotalWeight:    totals.TotalWeight,
		FriendsCount:   friends,
		FollowersCount: followers,
		FollowingCount: following,
	}, nil
}

func (s *StatsService) GetWorkoutStats(ctx context.Context, workoutID uint) (*WorkoutStats, error) {
	totals, err := s.statsRepo.WorkoutTotals(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	return &WorkoutStats{
		ExerciseCount:     totals.ExerciseCount,
		SetCount:          totals.SetCount,
		TotalWeightLifted: totals.TotalWeightLifted,
	}, nil
}

func (s *StatsService) GetPostCounts(ctx context.Context, postID uint) (*repository.PostCounts, error) {
	return s.statsRepo.PostCounts(ctx, postID)
}
