package server

import (
	"strings"
	"time"

	"spottr/internal/models"
	"spottr/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SearchUsers handles GET /api/users/search?q=...
// @Summary Search users
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param q query string true "Username or display name fragment"
// @Param limit query int false "Max results"
// @Success 200 {array} models.User
// @Router /users/search [get]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	users, err := s.socialService.SearchUsers(c.UserContext(), strings.TrimSpace(c.Query("q")), page.Limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetMyProfile handles GET /api/users/me
// @Summary Own profile page
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.ProfileView
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)
	view, err := s.socialService.Profile(c.UserContext(), userID, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// GetUserProfile handles GET /api/users/:id
// @Summary Profile page of a user
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} service.ProfileView
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	view, err := s.socialService.Profile(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// GetProfileByUsername handles GET /api/users/by-username/:username
// @Summary Profile page by username
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} service.ProfileView
// @Router /users/by-username/{username} [get]
func (s *Server) GetProfileByUsername(c *fiber.Ctx) error {
	view, err := s.socialService.ProfileByUsername(c.UserContext(), currentUserID(c), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Edit own profile
// @Description Only the supplied fields change. Streak fields cannot be edited.
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{display_name=string,bio=string,avatar_emoji=string,workout_frequency=int} true "Profile fields"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		DisplayName      *string `json:"display_name"`
		Bio              *string `json:"bio"`
		AvatarEmoji      *string `json:"avatar_emoji"`
		WorkoutFrequency *int    `json:"workout_frequency"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	profile, err := s.socialService.EditProfile(c.UserContext(), service.EditProfileInput{
		UserID:           currentUserID(c),
		DisplayName:      req.DisplayName,
		Bio:              req.Bio,
		AvatarEmoji:      req.AvatarEmoji,
		WorkoutFrequency: req.WorkoutFrequency,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// SetMyStatus handles PUT /api/users/me/status
// @Summary Set presence status
// @Tags users
// @Security BearerAuth
// @Accept json
// @Param request body object{status=string} true "online, offline or working-out"
// @Success 204
// @Router /users/me/status [put]
func (s *Server) SetMyStatus(c *fiber.Ctx) error {
	var req struct {
		Status models.ProfileStatus `json:"status"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.socialService.SetStatus(c.UserContext(), currentUserID(c), req.Status); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetCalendar handles GET /api/users/:id/calendar?year=&month=
// @Summary Monthly activity calendar
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Param year query int false "Year, defaults to the current year"
// @Param month query int false "Month 1-12, defaults to the current month"
// @Success 200 {object} service.ActivityCalendar
// @Router /users/{id}/calendar [get]
func (s *Server) GetCalendar(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	now := time.Now().UTC()
	year := c.QueryInt("year", now.Year())
	month := c.QueryInt("month", int(now.Month()))

	cal, err := s.socialService.Calendar(c.UserContext(), id, year, time.Month(month))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cal)
}

// GetUserPosts handles GET /api/users/:id/posts
// @Summary Posts by a user
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Param limit query int false "Max results"
// @Success 200 {array} models.Post
// @Router /users/{id}/posts [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	posts, err := s.postService.UserPosts(c.UserContext(), id, currentUserID(c), page.Limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// ToggleFollow handles POST /api/users/:id/follow
// @Summary Follow or unfollow a user
// @Tags social
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{following=bool}
// @Router /users/{id}/follow [post]
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	following, err := s.socialService.ToggleFollow(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

// Nudge handles POST /api/users/:id/nudge
// @Summary Nudge a user to work out
// @Tags social
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 201 {object} models.Nudge
// @Failure 429 {object} models.ErrorResponse
// @Router /users/{id}/nudge [post]
func (s *Server) Nudge(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	nudge, err := s.socialService.Nudge(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(nudge)
}

// GetNudges handles GET /api/nudges
// @Summary Nudges received
// @Tags social
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Nudge
// @Router /nudges [get]
func (s *Server) GetNudges(c *fiber.Ctx) error {
	nudges, err := s.socialService.Nudges(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(nudges)
}

// GetFriends handles GET /api/friends
// @Summary Accepted friends
// @Tags social
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.User
// @Router /friends [get]
func (s *Server) GetFriends(c *fiber.Ctx) error {
	friends, err := s.socialService.Friends(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(friends)
}

// GetPendingRequests handles GET /api/friends/requests
// @Summary Incoming friend requests
// @Tags social
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Friendship
// @Router /friends/requests [get]
func (s *Server) GetPendingRequests(c *fiber.Ctx) error {
	requests, err := s.socialService.PendingRequests(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(requests)
}

// SendFriendRequest handles POST /api/friends/requests/user/:userId
// @Summary Send a friend request
// @Description Returns the existing friendship when one already exists in either direction.
// @Tags social
// @Security BearerAuth
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} models.Friendship
// @Router /friends/requests/user/{userId} [post]
func (s *Server) SendFriendRequest(c *fiber.Ctx) error {
	id, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	friendship, err := s.socialService.SendFriendRequest(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(friendship)
}

// AcceptFriendRequest handles POST /api/friends/requests/:requestId/accept
// @Summary Accept a friend request
// @Tags social
// @Security BearerAuth
// @Produce json
// @Param requestId path int true "Friendship ID"
// @Success 200 {object} models.Friendship
// @Failure 403 {object} models.ErrorResponse
// @Router /friends/requests/{requestId}/accept [post]
func (s *Server) AcceptFriendRequest(c *fiber.Ctx) error {
	id, err := parseID(c, "requestId")
	if err != nil {
		return nil
	}

	friendship, err := s.socialService.AcceptFriendRequest(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(friendship)
}

// DeclineFriendRequest handles POST /api/friends/requests/:requestId/decline
// @Summary Decline a friend request
// @Tags social
// @Security BearerAuth
// @Param requestId path int true "Friendship ID"
// @Success 204
// @Router /friends/requests/{requestId}/decline [post]
func (s *Server) DeclineFriendRequest(c *fiber.Ctx) error {
	id, err := parseID(c, "requestId")
	if err != nil {
		return nil
	}

	if err := s.socialService.DeclineFriendRequest(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
