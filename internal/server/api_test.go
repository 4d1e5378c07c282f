package server

import (
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"spottr/internal/config"
	"spottr/internal/models"
	"spottr/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestWorkoutFlow(t *testing.T) {
	h := newHarness(t, nil, nil)
	token, _ := h.signup("lifter")
	otherToken, _ := h.signup("stranger")
	squat := h.createExercise("Squat")

	var exercises []models.ExerciseDefinition
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/exercises", token, nil, &exercises))
	require.Len(t, exercises, 1)

	var workout models.Workout
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/workouts", token, nil, &workout))
	assert.Equal(t, "Empty Workout", workout.Name)
	base := "/api/workouts/" + itoa(workout.ID)

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, base+"/exercises", token, map[string]any{}, nil))

	var we models.WorkoutExercise
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, base+"/exercises", token,
		map[string]any{"exercise_id": squat.ID}, &we))

	var extra models.WorkoutSet
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost,
		"/api/workouts/exercises/"+itoa(we.ID)+"/sets", token, nil, &extra))

	var set models.WorkoutSet
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/workouts/sets/"+itoa(extra.ID), token,
		map[string]any{"reps": 5, "weight": 100, "completed": true}, &set))
	require.NotNil(t, set.Weight)
	assert.Equal(t, 100.0, *set.Weight)

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/workouts/sets/"+itoa(extra.ID), token,
		map[string]any{"reps": -1}, nil))
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodPost, "/api/workouts/sets/"+itoa(extra.ID), otherToken,
		map[string]any{"reps": 1}, nil))
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, base, otherToken, nil, nil))

	// Publishing requires a completed workout.
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, base+"/publish", token, nil, nil))

	var done models.Workout
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, base+"/complete", token, nil, &done))
	assert.True(t, done.Completed)

	var overview service.StreakOverview
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/streaks", token, nil, &overview))
	assert.Equal(t, 1, overview.Profile.CurrentStreak)
	assert.True(t, overview.StreakActive)
	assert.Equal(t, int64(1), overview.WeeklyWorkouts)

	var post map[string]any
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, base+"/publish", token,
		map[string]any{"description": "Legs done", "save_as_template": true}, &post))
	assert.Equal(t, string(models.PostTypeWorkout), post["post_type"])

	var again map[string]string
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, base+"/publish", token, nil, &again))
	assert.Equal(t, "Workout already published", again["message"])

	var templates []models.WorkoutTemplate
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/templates", token, nil, &templates))
	require.Len(t, templates, 1)

	var fromTemplate models.Workout
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost,
		"/api/templates/"+itoa(templates[0].ID)+"/start", token, nil, &fromTemplate))
	assert.Equal(t, templates[0].Name, fromTemplate.Name)

	var stats service.WorkoutStats
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, base+"/stats", token, nil, &stats))
	assert.Equal(t, int64(1), stats.ExerciseCount)
	assert.Equal(t, 100.0, stats.TotalWeightLifted)

	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, "/api/templates/"+itoa(templates[0].ID), token, nil, nil))
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, "/api/templates/"+itoa(templates[0].ID), token, nil, nil))

	var record models.PersonalRecord
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/records", token,
		map[string]any{"exercise_id": squat.ID, "weight": 140, "reps": 1}, &record))
	var records []models.PersonalRecord
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/records", token, nil, &records))
	require.Len(t, records, 1)
	assert.Equal(t, 140.0, records[0].Weight)
}

func TestPostsAndFeed(t *testing.T) {
	h := newHarness(t, nil, nil)
	token, _ := h.signup("lifter")
	friendToken, friendID := h.signup("buddy")
	gym := h.createGym("Iron Temple")

	var post map[string]any
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/posts", friendToken, map[string]any{
		"content": "Which split?",
		"poll":    map[string]any{"question": "Pick one", "options": []string{"PPL", "Upper/Lower"}},
	}, &post))
	postID := uint(post["id"].(float64))
	postPath := "/api/posts/" + itoa(postID)

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/posts", token, map[string]any{"content": ""}, nil))

	var checkin map[string]any
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/checkins", token, map[string]any{
		"gym_id": gym.ID, "caption": "Morning", "activities": []string{"legs"},
	}, &checkin))
	assert.Equal(t, string(models.PostTypeCheckin), checkin["post_type"])

	var react service.ReactResult
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, postPath+"/react", token, map[string]any{"reaction_type": "flex"}, &react))
	assert.Equal(t, service.ReactionAdded, react.Status)
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, postPath+"/react", token, map[string]any{"reaction_type": "flex"}, &react))
	assert.Equal(t, service.ReactionRemoved, react.Status)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, postPath+"/react", token, map[string]any{"reaction_type": "meh"}, nil))

	var comment models.Comment
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, postPath+"/comments", token, map[string]any{"content": "PPL"}, &comment))
	var comments []models.Comment
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, postPath+"/comments", token, nil, &comments))
	assert.Len(t, comments, 1)

	var results service.PollResults
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, postPath+"/poll/vote", token, map[string]any{"option": 1}, &results))
	assert.Equal(t, []int64{0, 1}, results.Votes)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, postPath+"/poll/vote", token, map[string]any{}, nil))
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, postPath+"/poll/vote", token, map[string]any{"option": 5}, nil))

	var main []map[string]any
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/feed", token, nil, &main))
	assert.Len(t, main, 2)

	var friends []map[string]any
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/feed?tab=friends", token, nil, &friends))
	assert.Empty(t, friends)

	var follow map[string]bool
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/users/"+itoa(friendID)+"/follow", token, nil, &follow))
	assert.True(t, follow["following"])

	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/feed?tab=friends", token, nil, &friends))
	require.Len(t, friends, 1)
	assert.Equal(t, float64(postID), friends[0]["id"])

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/posts/99999", token, nil, nil))
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/posts/abc", token, nil, nil))
}

func TestSocialEndpoints(t *testing.T) {
	h := newHarness(t, nil, nil)
	token, userID := h.signup("lifter")
	buddyToken, buddyID := h.signup("buddy")

	var friendship models.Friendship
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/friends/requests/user/"+itoa(buddyID), token, nil, &friendship))

	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost,
		"/api/friends/requests/"+itoa(friendship.ID)+"/accept", token, nil, nil))

	var pending []models.Friendship
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/friends/requests", buddyToken, nil, &pending))
	require.Len(t, pending, 1)
	require.Equal(t, http.StatusOK, h.do(http.MethodPost,
		"/api/friends/requests/"+itoa(friendship.ID)+"/accept", buddyToken, nil, nil))

	var friends []models.User
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/friends", token, nil, &friends))
	require.Len(t, friends, 1)
	assert.Equal(t, buddyID, friends[0].ID)

	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/users/"+itoa(userID)+"/nudge", buddyToken, nil, nil))
	var nudges []models.Nudge
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/nudges", token, nil, &nudges))
	assert.Len(t, nudges, 1)

	var profile models.Profile
	require.Equal(t, http.StatusOK, h.do(http.MethodPut, "/api/users/me", token,
		map[string]any{"display_name": "The Lifter", "workout_frequency": 4}, &profile))
	assert.Equal(t, "The Lifter", profile.DisplayName)
	assert.Equal(t, 4, profile.WorkoutFrequency)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPut, "/api/users/me", token,
		map[string]any{"workout_frequency": 9}, nil))

	assert.Equal(t, http.StatusNoContent, h.do(http.MethodPut, "/api/users/me/status", token,
		map[string]any{"status": "working-out"}, nil))
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPut, "/api/users/me/status", token,
		map[string]any{"status": "asleep"}, nil))

	var view service.ProfileView
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/users/by-username/lifter", buddyToken, nil, &view))
	assert.True(t, view.IsFriend)
	assert.False(t, view.IsOwnProfile)
	assert.Equal(t, int64(1), view.Stats.FriendsCount)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/users/by-username/ghost", buddyToken, nil, nil))

	var found []models.User
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/users/search?q=bud", token, nil, &found))
	require.Len(t, found, 1)

	var cal service.ActivityCalendar
	require.Equal(t, http.StatusOK, h.do(http.MethodGet,
		fmt.Sprintf("/api/users/%d/calendar?year=2026&month=2", userID), token, nil, &cal))
	assert.Equal(t, "February", cal.MonthName)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet,
		fmt.Sprintf("/api/users/%d/calendar?month=13", userID), token, nil, nil))
}

func TestGymsAndLeaderboard(t *testing.T) {
	h := newHarness(t, nil, nil)
	token, userID := h.signup("lifter")
	mateToken, _ := h.signup("mate")
	gym := h.createGym("Iron Temple")

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/gyms/9999", token, nil, nil))
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/gyms/"+itoa(gym.ID)+"/join", token, nil, nil))
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/gyms/"+itoa(gym.ID)+"/join", mateToken, nil, nil))

	var busy map[string]string
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/gyms/busy", token, map[string]any{"level": 5}, &busy))
	assert.Equal(t, "very_high", busy["busy_level"])
	assert.Equal(t, service.BusyLabel(models.BusyLevel(busy["busy_level"])), busy["label"])

	var invites []models.WorkoutInvite
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/invites/gym", token,
		map[string]any{"workout_type": "Legs", "spots": 2}, &invites))
	require.Len(t, invites, 1)

	var received []models.WorkoutInvite
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/invites", mateToken, nil, &received))
	require.Len(t, received, 1)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodPost, "/api/invites/"+itoa(received[0].ID)+"/respond", token,
		map[string]any{"action": "accept"}, nil))
	var responded map[string]string
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/invites/"+itoa(received[0].ID)+"/respond", mateToken,
		map[string]any{"action": "accept"}, &responded))
	assert.Equal(t, string(models.InviteStatusAccepted), responded["status"])

	// One completed workout puts the viewer ahead on streak.
	var workout models.Workout
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/workouts", token, map[string]any{"name": "Pull"}, &workout))
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/workouts/"+itoa(workout.ID)+"/complete", token, nil, nil))

	var board struct {
		Tab     string `json:"tab"`
		Entries []struct {
			User       models.User `json:"user"`
			Rank       int         `json:"rank"`
			Streak     int         `json:"streak"`
			RankLabel  string      `json:"rank_label"`
			StreakIcon string      `json:"streak_icon"`
		} `json:"entries"`
		Viewer *struct {
			Rank int `json:"rank"`
		} `json:"viewer"`
	}
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/leaderboard?tab=gym", token, nil, &board))
	assert.Equal(t, service.TabGym, board.Tab)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, userID, board.Entries[0].User.ID)
	assert.Equal(t, "1st", board.Entries[0].RankLabel)
	assert.Equal(t, service.StreakIcon(1), board.Entries[0].StreakIcon)
	assert.Equal(t, "2nd", board.Entries[1].RankLabel)
	require.NotNil(t, board.Viewer)
	assert.Equal(t, 1, board.Viewer.Rank)

	var achievements []models.UserAchievement
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/achievements", token, nil, &achievements))

	var stats service.ProfileStats
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/stats/me", token, nil, &stats))
	assert.Equal(t, int64(1), stats.TotalWorkouts)

	assert.Equal(t, http.StatusNoContent, h.do(http.MethodPost, "/api/gyms/leave", token, nil, nil))
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/gyms/busy", token, map[string]any{"level": 2}, nil))
}

func TestFriendsLeaderboardFlagFallsBackToGym(t *testing.T) {
	var board service.Leaderboard

	h := newHarness(t, nil, nil)
	token, _ := h.signup("lifter")
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/leaderboard?tab=friends", token, nil, &board))
	assert.Equal(t, service.TabFriends, board.Tab)
	require.Len(t, board.Entries, 1)

	off := newHarness(t, &config.Config{FeatureFlags: "friends_leaderboard=off"}, nil)
	token, _ = off.signup("lifter")
	require.Equal(t, http.StatusOK, off.do(http.MethodGet, "/api/leaderboard?tab=friends", token, nil, &board))
	assert.Equal(t, service.TabGym, board.Tab)
	assert.Empty(t, board.Entries)
}

func TestGroupsAndMessages(t *testing.T) {
	h := newHarness(t, nil, nil)
	token, _ := h.signup("lifter")
	buddyToken, buddyID := h.signup("buddy")
	outsiderToken, _ := h.signup("outsider")

	var group models.Group
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/groups", token, map[string]any{
		"name": "Dawn Patrol", "member_ids": []uint{buddyID},
	}, &group))
	require.Len(t, group.JoinCode, 8)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/groups", token, map[string]any{"name": ""}, nil))

	msgPath := "/api/groups/" + itoa(group.ID) + "/messages"
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, msgPath, token, map[string]any{"content": "6am?"}, nil))
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, msgPath, outsiderToken, map[string]any{"content": "hi"}, nil))

	var unread map[string]int64
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/messages/unread", buddyToken, nil, &unread))
	assert.Equal(t, int64(1), unread["unread"])

	var summaries []service.GroupSummary
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/groups", buddyToken, nil, &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(1), summaries[0].UnreadCount)

	var history []models.Message
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, msgPath, buddyToken, nil, &history))
	require.Len(t, history, 1)
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/messages/unread", buddyToken, nil, &unread))
	assert.Equal(t, int64(0), unread["unread"])

	var joined models.Group
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/groups/join", outsiderToken,
		map[string]any{"code": group.JoinCode}, &joined))
	assert.Equal(t, group.ID, joined.ID)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodPost, "/api/groups/join", outsiderToken,
		map[string]any{"code": "ZZZZZZZZ"}, nil))

	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/messages/direct/"+itoa(buddyID), token,
		map[string]any{"content": "see you there"}, nil))
	var direct []models.Message
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/messages/direct/"+itoa(buddyID), token, nil, &direct))
	assert.Len(t, direct, 1)
}

