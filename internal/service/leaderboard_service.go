package service

import (
	"context"
	"sort"
	"time"

	"spottr/internal/models"
	"spottr/internal/observability"
	"spottr/internal/repository"
	"spottr/internal/streak"
)

// Leaderboard tabs.
const (
	TabGym     = "gym"
	TabFriends = "friends"
)

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	User           models.User `json:"user"`
	WeeklyWorkouts int64       `json:"weekly_workout_count"`
	Streak         int         `json:"streak"`
	Level          int         `json:"level"`
	Rank           int         `json:"rank"`
	IsViewer       bool        `json:"is_viewer"`
}

// Leaderboard is a ranked cohort plus the viewer's own entry when present.
type Leaderboard struct {
	Tab     string             `json:"tab"`
	Gym     *models.Gym        `json:"gym,omitempty"`
	Entries []LeaderboardEntry `json:"entries"`
	Viewer  *LeaderboardEntry  `json:"viewer,omitempty"`
}

// LeaderboardService ranks gym and friend cohorts by current streak.
type LeaderboardService struct {
	userRepo    repository.UserRepository
	friendRepo  repository.FriendRepository
	gymRepo     repository.GymRepository
	workoutRepo repository.WorkoutRepository
	statsRepo   repository.StatsRepository
	weekStart   time.Weekday
	now         func() time.Time
}

func NewLeaderboardService(
	userRepo repository.UserRepository,
	friendRepo repository.FriendRepository,
	gymRepo repository.GymRepository,
	workoutRepo repository.WorkoutRepository,
	statsRepo repository.StatsRepository,
	weekStart time.Weekday,
) *LeaderboardService {
	return &LeaderboardService{
		userRepo:    userRepo,
		friendRepo:  friendRepo,
		gymRepo:     gymRepo,
		workoutRepo: workoutRepo,
		statsRepo:   statsRepo,
		weekStart:   weekStart,
		now:         time.Now,
	}
}

// RankCohort ranks the given users by current streak descending with user id
// ascending as the tiebreak. Duplicate ids are ranked once and unknown ids
// are skipped.
func (s *LeaderboardService) RankCohort(ctx context.Context, cohort []uint, viewerID uint) ([]LeaderboardEntry, error) {
	ids := dedupe(cohort)
	if len(ids) == 0 {
		return []LeaderboardEntry{}, nil
	}

	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	found := make([]uint, 0, len(users))
	for _, u := range users {
		found = append(found, u.ID)
	}

	now := s.now().UTC()
	weekly, err := s.workoutRepo.CountCompletedBetweenByUser(ctx, found, streak.WeekStart(now, s.weekStart), now)
	if err != nil {
		return nil, err
	}
	totals, err := s.statsRepo.CompletedWorkoutCounts(ctx, found)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		current := 0
		if u.Profile != nil {
			current = u.Profile.CurrentStreak
		}
		entries = append(entries, LeaderboardEntry{
			User:           u,
			WeeklyWorkouts: weekly[u.ID],
			Streak:         current,
			Level:          streak.Level(totals[u.ID]),
			IsViewer:       u.ID == viewerID,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Streak != entries[j].Streak {
			return entries[i].Streak > entries[j].Streak
		}
		return entries[i].User.ID < entries[j].User.ID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// GymCohort returns the active members of the viewer's active gym. The gym
// is nil when the viewer has no active membership.
func (s *LeaderboardService) GymCohort(ctx context.Context, viewerID uint) ([]uint, *models.Gym, error) {
	membership, err := s.gymRepo.ActiveMembership(ctx, viewerID)
	if err != nil {
		return nil, nil, err
	}
	if membership == nil {
		return nil, nil, nil
	}
	ids, err := s.gymRepo.ActiveMemberIDs(ctx, membership.GymID)
	if err != nil {
		return nil, nil, err
	}
	gym := membership.Gym
	return ids, &gym, nil
}

// FriendsCohort returns accepted friends, followed users and the viewer.
func (s *LeaderboardService) FriendsCohort(ctx context.Context, viewerID uint) ([]uint, error) {
	friends, err := s.friendRepo.FriendIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	following, err := s.friendRepo.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	ids := append([]uint{viewerID}, friends...)
	return dedupe(append(ids, following...)), nil
}

// Leaderboard builds the ranked tab for the viewer. Unknown tabs fall back to
// the gym tab.
func (s *LeaderboardService) Leaderboard(ctx context.Context, viewerID uint, tab string) (*Leaderboard, error) {
	if tab != TabFriends {
		tab = TabGym
	}
	done := observability.TrackLeaderboard(tab)

	board := &Leaderboard{Tab: tab, Entries: []LeaderboardEntry{}}
	var cohort []uint
	var err error
	if tab == TabFriends {
		cohort, err = s.FriendsCohort(ctx, viewerID)
	} else {
		cohort, board.Gym, err = s.GymCohort(ctx, viewerID)
	}
	if err != nil {
		return nil, err
	}

	entries, err := s.RankCohort(ctx, cohort, viewerID)
	if err != nil {
		return nil, err
	}
	board.Entries = entries
	for i := range entries {
		if entries[i].IsViewer {
			board.Viewer = &entries[i]
			break
		}
	}
	done(len(entries))
	return board, nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
