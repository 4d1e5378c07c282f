package server

import (
	"spottr/internal/featureflags"
	"spottr/internal/service"

	"github.com/gofiber/fiber/v2"
)

// leaderboardRow decorates an entry with its display labels.
type leaderboardRow struct {
	service.LeaderboardEntry
	RankLabel  string `json:"rank_label"`
	StreakIcon string `json:"streak_icon"`
}

type leaderboardResponse struct {
	*service.Leaderboard
	Entries []leaderboardRow `json:"entries"`
	Viewer  *leaderboardRow  `json:"viewer,omitempty"`
}

func decorate(e service.LeaderboardEntry) leaderboardRow {
	return leaderboardRow{
		LeaderboardEntry: e,
		RankLabel:        service.RankSuffix(e.Rank),
		StreakIcon:       service.StreakIcon(e.Streak),
	}
}

// GetStreakOverview handles GET /api/streaks
// @Summary Streak page
// @Description Current streak, this week's activity, achievements and group streaks.
// @Tags streaks
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.StreakOverview
// @Router /streaks [get]
func (s *Server) GetStreakOverview(c *fiber.Ctx) error {
	overview, err := s.streakService.Overview(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(overview)
}

// GetLeaderboard handles GET /api/leaderboard?tab=
// @Summary Leaderboard
// @Description Ranks the viewer's gym (default) or friends by current streak, then weekly workouts.
// @Tags streaks
// @Security BearerAuth
// @Produce json
// @Param tab query string false "gym or friends"
// @Success 200 {object} leaderboardResponse
// @Router /leaderboard [get]
func (s *Server) GetLeaderboard(c *fiber.Ctx) error {
	viewerID := currentUserID(c)
	tab := c.Query("tab", service.TabGym)
	if tab == service.TabFriends && !s.featureFlags.Enabled(featureflags.FriendsLeaderboard, viewerID) {
		tab = service.TabGym
	}

	board, err := s.leaderboardService.Leaderboard(c.UserContext(), viewerID, tab)
	if err != nil {
		return respondError(c, err)
	}

	resp := leaderboardResponse{Leaderboard: board, Entries: make([]leaderboardRow, 0, len(board.Entries))}
	for _, e := range board.Entries {
		resp.Entries = append(resp.Entries, decorate(e))
	}
	if board.Viewer != nil {
		row := decorate(*board.Viewer)
		resp.Viewer = &row
	}
	return c.JSON(resp)
}

// GetAchievements handles GET /api/achievements
// @Summary Achievement progress
// @Description Re-evaluates every achievement for the viewer and returns progress.
// @Tags streaks
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.UserAchievement
// @Router /achievements [get]
func (s *Server) GetAchievements(c *fiber.Ctx) error {
	achievements, err := s.achievementService.EvaluateAchievements(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(achievements)
}

// GetMyStats handles GET /api/stats/me
// @Summary Lifetime totals
// @Tags streaks
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.ProfileStats
// @Router /stats/me [get]
func (s *Server) GetMyStats(c *fiber.Ctx) error {
	stats, err := s.statsService.GetProfileStats(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
