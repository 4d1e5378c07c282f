package server

import (
	"spottr/internal/models"
	"spottr/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed
// @Summary Activity feed
// @Description Newest posts first. tab=friends narrows to friends and followed users.
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param tab query string false "main or friends"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Router /feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	posts, err := s.postService.Feed(c.UserContext(), service.FeedInput{
		ViewerID: currentUserID(c),
		Tab:      c.Query("tab", service.FeedMain),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Description A general post, or a PR post when pr_exercise is set. Records streak activity for today.
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{content=string,image_url=string,hashtags=string,pr_exercise=string,pr_weight=int,poll=models.Poll} true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Content    string       `json:"content"`
		ImageURL   string       `json:"image_url"`
		Hashtags   string       `json:"hashtags"`
		PRExercise string       `json:"pr_exercise"`
		PRWeight   int          `json:"pr_weight"`
		Poll       *models.Poll `json:"poll"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:     currentUserID(c),
		Content:    req.Content,
		ImageURL:   req.ImageURL,
		Hashtags:   req.Hashtags,
		PRExercise: req.PRExercise,
		PRWeight:   req.PRWeight,
		Poll:       req.Poll,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// CreateCheckin handles POST /api/checkins
// @Summary Check in at a gym
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{gym_id=int,caption=string,activities=[]string,other=string,image_url=string} true "Check-in"
// @Success 201 {object} models.Post
// @Router /checkins [post]
func (s *Server) CreateCheckin(c *fiber.Ctx) error {
	var req struct {
		GymID      *uint    `json:"gym_id"`
		Caption    string   `json:"caption"`
		Activities []string `json:"activities"`
		Other      string   `json:"other"`
		ImageURL   string   `json:"image_url"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CreateCheckin(c.UserContext(), service.CheckinInput{
		UserID:     currentUserID(c),
		GymID:      req.GymID,
		Caption:    req.Caption,
		Activities: req.Activities,
		Other:      req.Other,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// ReactToPost handles POST /api/posts/:id/react
// @Summary Toggle a reaction
// @Description Sending the same reaction again removes it; a different one replaces it.
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{reaction_type=string} false "heart, thumbsup, flex or fire"
// @Success 200 {object} service.ReactResult
// @Router /posts/{id}/react [post]
func (s *Server) ReactToPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		ReactionType models.ReactionType `json:"reaction_type"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}

	result, err := s.postService.React(c.UserContext(), currentUserID(c), id, req.ReactionType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// GetComments handles GET /api/posts/:id/comments
// @Summary List comments
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {array} models.Comment
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.postService.Comments(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{content=string} true "Comment"
// @Success 201 {object} models.Comment
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
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

	comment, err := s.postService.Comment(c.UserContext(), currentUserID(c), id, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetPollResults handles GET /api/posts/:id/poll
// @Summary Poll results
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} service.PollResults
// @Router /posts/{id}/poll [get]
func (s *Server) GetPollResults(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	results, err := s.postService.PollResults(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(results)
}

// VotePoll handles POST /api/posts/:id/poll/vote
// @Summary Vote on a poll
// @Description Voting again moves the vote to the new option.
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{option=int} true "Zero-based option index"
// @Success 200 {object} service.PollResults
// @Router /posts/{id}/poll/vote [post]
func (s *Server) VotePoll(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Option *int `json:"option"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.Option == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("option is required"))
	}

	results, err := s.postService.VotePoll(c.UserContext(), currentUserID(c), id, *req.Option)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(results)
}
