package server

import (
	"spottr/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetGroups handles GET /api/groups
// @Summary Groups the viewer belongs to
// @Tags groups
// @Security BearerAuth
// @Produce json
// @Success 200 {array} service.GroupSummary
// @Router /groups [get]
func (s *Server) GetGroups(c *fiber.Ctx) error {
	groups, err := s.groupService.ListGroups(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(groups)
}

// CreateGroup handles POST /api/groups
// @Summary Create a group
// @Description The creator becomes admin. A unique join code is generated.
// @Tags groups
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{name=string,description=string,avatar_emoji=string,member_ids=[]int} true "Group"
// @Success 201 {object} models.Group
// @Router /groups [post]
func (s *Server) CreateGroup(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		AvatarEmoji string `json:"avatar_emoji"`
		MemberIDs   []uint `json:"member_ids"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	group, err := s.groupService.CreateGroup(c.UserContext(), service.CreateGroupInput{
		CreatorID:   currentUserID(c),
		Name:        req.Name,
		Description: req.Description,
		AvatarEmoji: req.AvatarEmoji,
		MemberIDs:   req.MemberIDs,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

// JoinGroup handles POST /api/groups/join
// @Summary Join a group by code
// @Tags groups
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{code=string} true "Join code"
// @Success 200 {object} models.Group
// @Failure 404 {object} models.ErrorResponse
// @Router /groups/join [post]
func (s *Server) JoinGroup(c *fiber.Ctx) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	group, err := s.groupService.JoinByCode(c.UserContext(), currentUserID(c), req.Code)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(group)
}

// GetGroupMessages handles GET /api/groups/:id/messages
// @Summary Group chat history
// @Description Marks the returned messages as read for the viewer.
// @Tags groups
// @Security BearerAuth
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {array} models.Message
// @Failure 403 {object} models.ErrorResponse
// @Router /groups/{id}/messages [get]
func (s *Server) GetGroupMessages(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	messages, err := s.groupService.GroupHistory(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(messages)
}

// SendGroupMessage handles POST /api/groups/:id/messages
// @Summary Send a group message
// @Tags groups
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Group ID"
// @Param request body object{content=string} true "Message"
// @Success 201 {object} models.Message
// @Router /groups/{id}/messages [post]
func (s *Server) SendGroupMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	msg, err := s.groupService.SendGroupMessage(c.UserContext(), currentUserID(c), id, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GetDirectMessages handles GET /api/messages/direct/:userId
// @Summary Direct message history
// @Tags groups
// @Security BearerAuth
// @Produce json
// @Param userId path int true "Other user ID"
// @Success 200 {array} models.Message
// @Router /messages/direct/{userId} [get]
func (s *Server) GetDirectMessages(c *fiber.Ctx) error {
	id, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	messages, err := s.groupService.DirectHistory(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(messages)
}

// SendDirectMessage handles POST /api/messages/direct/:userId
// @Summary Send a direct message
// @Tags groups
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param userId path int true "Recipient ID"
// @Param request body object{content=string} true "Message"
// @Success 201 {object} models.Message
// @Router /messages/direct/{userId} [post]
func (s *Server) SendDirectMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "userId")
	if err != nil {
		return nil
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	msg, err := s.groupService.SendDirectMessage(c.UserContext(), currentUserID(c), id, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GetUnreadCount handles GET /api/messages/unread
// @Summary Unread message count
// @Tags groups
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{unread=int}
// @Router /messages/unread [get]
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	count, err := s.groupService.UnreadCount(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"unread": count})
}
