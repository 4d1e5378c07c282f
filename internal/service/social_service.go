package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"spottr/internal/middleware"
	"spottr/internal/models"
	"spottr/internal/repository"
	"spottr/internal/streak"

	"github.com/redis/go-redis/v9"
)

const (
	recentWorkoutLimit = 4
	profilePostLimit   = 20
	nudgeWindow        = time.Hour
)

// SocialService covers follows, friendships, nudges and profiles.
type SocialService struct {
	userRepo    repository.UserRepository
	friendRepo  repository.FriendRepository
	inviteRepo  repository.InviteRepository
	workoutRepo repository.WorkoutRepository
	postRepo    repository.PostRepository
	stats       *StatsService
	redis       *redis.Client
	now         func() time.Time
}

type EditProfileInput struct {
	UserID           uint
	DisplayName      *string
	Bio              *string
	AvatarEmoji      *string
	WorkoutFrequency *int
}

// ProfileView is a user's profile page as seen by the viewer.
type ProfileView struct {
	User           *models.User            `json:"user"`
	Stats          *ProfileStats           `json:"stats"`
	StreakActive   bool                    `json:"streak_active"`
	RecentWorkouts []models.Workout        `json:"recent_workouts"`
	Records        []models.PersonalRecord `json:"personal_records"`
	Posts          []*models.Post          `json:"posts"`
	IsFollowing    bool                    `json:"is_following"`
	IsFriend       bool                    `json:"is_friend"`
	IsOwnProfile   bool                    `json:"is_own_profile"`
}

// ActivityCalendar marks the days of one month with workouts or posts.
type ActivityCalendar struct {
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	MonthName   string `json:"month_name"`
	WorkoutDays []int  `json:"workout_days"`
	PostDays    []int  `json:"post_days"`
}

func NewSocialService(
	userRepo repository.UserRepository,
	friendRepo repository.FriendRepository,
	inviteRepo repository.InviteRepository,
	workoutRepo repository.WorkoutRepository,
	postRepo repository.PostRepository,
	stats *StatsService,
	rdb *redis.Client,
) *SocialService {
	return &SocialService{
		userRepo:    userRepo,
		friendRepo:  friendRepo,
		inviteRepo:  inviteRepo,
		workoutRepo: workoutRepo,
		postRepo:    postRepo,
		stats:       stats,
		redis:       rdb,
		now:         time.Now,
	}
}

// ToggleFollow follows the target, or unfollows when already following. It
// reports whether the viewer follows the target afterwards.
func (s *SocialService) ToggleFollow(ctx context.Context, viewerID, targetID uint) (bool, error) {
	if viewerID == targetID {
		return false, models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return false, err
	}
	existing, err := s.friendRepo.GetFollow(ctx, viewerID, targetID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, s.friendRepo.DeleteFollow(ctx, viewerID, targetID)
	}
	if err := s.friendRepo.CreateFollow(ctx, &models.Follow{FollowerID: viewerID, FollowingID: targetID}); err != nil {
		return false, err
	}
	return true, nil
}

// SendFriendRequest creates a pending friendship. An existing friendship in
// either direction is returned unchanged.
func (s *SocialService) SendFriendRequest(ctx context.Context, viewerID, targetID uint) (*models.Friendship, error) {
	if viewerID == targetID {
		return nil, models.NewValidationError("Cannot send friend request to yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}
	existing, err := s.friendRepo.GetFriendshipBetweenUsers(ctx, viewerID, targetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	friendship := &models.Friendship{FromUserID: viewerID, ToUserID: targetID}
	if err := s.friendRepo.Create(ctx, friendship); err != nil {
		return nil, err
	}
	return s.friendRepo.GetByID(ctx, friendship.ID)
}

func (s *SocialService) AcceptFriendRequest(ctx context.Context, viewerID, friendshipID uint) (*models.Friendship, error) {
	friendship, err := s.friendRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return nil, err
	}
	if friendship.ToUserID != viewerID {
		return nil, models.NewForbiddenError("You can only accept friend requests sent to you")
	}
	if !friendship.Accepted {
		if err := s.friendRepo.Accept(ctx, friendshipID); err != nil {
			return nil, err
		}
		friendship.Accepted = true
	}
	return friendship, nil
}

func (s *SocialService) DeclineFriendRequest(ctx context.Context, viewerID, friendshipID uint) error {
	friendship, err := s.friendRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return err
	}
	if friendship.ToUserID != viewerID || friendship.Accepted {
		return models.NewForbiddenError("You can only decline pending requests sent to you")
	}
	return s.friendRepo.Delete(ctx, friendshipID)
}

func (s *SocialService) PendingRequests(ctx context.Context, viewerID uint) ([]models.Friendship, error) {
	return s.friendRepo.GetPendingRequests(ctx, viewerID)
}

// Friends returns the viewer's accepted friends.
func (s *SocialService) Friends(ctx context.Context, viewerID uint) ([]models.User, error) {
	ids, err := s.friendRepo.FriendIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return s.userRepo.FindByIDs(ctx, ids)
}

// Nudge pokes another user. A sender may nudge the same user once per hour.
func (s *SocialService) Nudge(ctx context.Context, fromID, toID uint) (*models.Nudge, error) {
	if fromID == toID {
		return nil, models.NewValidationError("You cannot nudge yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, toID); err != nil {
		return nil, err
	}

	allowed, err := middleware.CheckRateLimit(ctx, s.redis, "nudge", fmt.Sprintf("%d:%d", fromID, toID), 1, nudgeWindow)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "nudge rate limit unavailable",
			slog.String("error", err.Error()),
		)
		allowed = true
	}
	if !allowed {
		return nil, models.NewRateLimitedError("You already nudged this user recently")
	}

	nudge := &models.Nudge{FromUserID: fromID, ToUserID: toID}
	if err := s.inviteRepo.CreateNudge(ctx, nudge); err != nil {
		return nil, err
	}
	return nudge, nil
}

func (s *SocialService) Nudges(ctx context.Context, viewerID uint) ([]models.Nudge, error) {
	return s.inviteRepo.ListNudges(ctx, viewerID, 20)
}

func (s *SocialService) SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.userRepo.Search(ctx, query, limit)
}

// Profile builds the profile page of userID for viewerID.
func (s *SocialService) Profile(ctx context.Context, viewerID, userID uint) (*ProfileView, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profileOf(ctx, viewerID, user)
}

// ProfileByUsername builds the profile page of the named user for viewerID.
func (s *SocialService) ProfileByUsername(ctx context.Context, viewerID uint, username string) (*ProfileView, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	user, err = s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.profileOf(ctx, viewerID, user)
}

func (s *SocialService) profileOf(ctx context.Context, viewerID uint, user *models.User) (*ProfileView, error) {
	stats, err := s.stats.GetProfileStats(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	workouts, err := s.workoutRepo.ListCompleted(ctx, user.ID, recentWorkoutLimit)
	if err != nil {
		return nil, err
	}
	records, err := s.workoutRepo.BestPersonalRecords(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.ListByUser(ctx, user.ID, profilePostLimit, viewerID)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{
		User:           user,
		Stats:          stats,
		RecentWorkouts: workouts,
		Records:        records,
		Posts:          posts,
		IsOwnProfile:   viewerID == user.ID,
	}
	if user.Profile != nil {
		view.StreakActive = streak.IsActive(user.Profile.LastWorkoutDate, s.now())
	}
	if !view.IsOwnProfile {
		follow, err := s.friendRepo.GetFollow(ctx, viewerID, user.ID)
		if err != nil {
			return nil, err
		}
		friendship, err := s.friendRepo.GetFriendshipBetweenUsers(ctx, viewerID, user.ID)
		if err != nil {
			return nil, err
		}
		view.IsFollowing = follow != nil
		view.IsFriend = friendship != nil && friendship.Accepted
	}
	return view, nil
}

// Calendar returns the days of the given UTC month on which the user
// completed a workout or posted.
func (s *SocialService) Calendar(ctx context.Context, userID uint, year int, month time.Month) (*ActivityCalendar, error) {
	if month < time.January || month > time.December {
		return nil, models.NewValidationError("Month must be between 1 and 12")
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	starts, err := s.workoutRepo.CompletedStartsBetween(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.CreatedAtBetween(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return &ActivityCalendar{
		Year:        year,
		Month:       int(month),
		MonthName:   month.String(),
		WorkoutDays: daysOf(starts),
		PostDays:    daysOf(posts),
	}, nil
}

// daysOf returns the distinct UTC days of month in ascending order. Input
// times must be sorted.
func daysOf(times []time.Time) []int {
	days := []int{}
	for _, t := range times {
		d := t.UTC().Day()
		if len(days) == 0 || days[len(days)-1] != d {
			days = append(days, d)
		}
	}
	return days
}

// EditProfile updates the editable profile fields. Streak fields are never
// touched here.
func (s *SocialService) EditProfile(ctx context.Context, in EditProfileInput) (*models.Profile, error) {
	profile, err := s.userRepo.GetProfile(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if utf8.RuneCountInString(name) > 50 {
			return nil, models.NewValidationError("Display name too long (max 50 characters)")
		}
		profile.DisplayName = name
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if utf8.RuneCountInString(bio) > 150 {
			return nil, models.NewValidationError("Bio too long (max 150 characters)")
		}
		profile.Bio = bio
	}
	if in.AvatarEmoji != nil {
		emoji := strings.TrimSpace(*in.AvatarEmoji)
		if emoji == "" || utf8.RuneCountInString(emoji) > 10 {
			return nil, models.NewValidationError("Avatar must be a short emoji")
		}
		profile.AvatarEmoji = emoji
	}
	if in.WorkoutFrequency != nil {
		if *in.WorkoutFrequency < 1 || *in.WorkoutFrequency > 7 {
			return nil, models.NewValidationError("Workout frequency must be between 1 and 7 days")
		}
		profile.WorkoutFrequency = *in.WorkoutFrequency
	}
	if err := s.userRepo.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *SocialService) SetStatus(ctx context.Context, userID uint, status models.ProfileStatus) error {
	switch status {
	case models.ProfileStatusOnline, models.ProfileStatusOffline, models.ProfileStatusWorkingOut:
	default:
		return models.NewValidationError("Invalid status")
	}
	return s.userRepo.SetStatus(ctx, userID, status)
}
