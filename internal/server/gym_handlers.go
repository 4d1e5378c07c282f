package server

import (
	"time"

	"spottr/internal/models"
	"spottr/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetGymOverview handles GET /api/gyms
// @Summary Gym page
// @Description All gyms, the viewer's active gym with top lifters, and pending invites.
// @Tags gyms
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.GymOverview
// @Router /gyms [get]
func (s *Server) GetGymOverview(c *fiber.Ctx) error {
	overview, err := s.gymService.Overview(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(overview)
}

// GetGym handles GET /api/gyms/:id
// @Summary Gym detail
// @Tags gyms
// @Security BearerAuth
// @Produce json
// @Param id path int true "Gym ID"
// @Success 200 {object} service.GymDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /gyms/{id} [get]
func (s *Server) GetGym(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	detail, err := s.gymService.GymDetail(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// JoinGym handles POST /api/gyms/:id/join
// @Summary Make a gym the viewer's active gym
// @Tags gyms
// @Security BearerAuth
// @Produce json
// @Param id path int true "Gym ID"
// @Success 200 {object} service.GymDetail
// @Router /gyms/{id}/join [post]
func (s *Server) JoinGym(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	detail, err := s.gymService.JoinGym(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// LeaveGym handles POST /api/gyms/leave
// @Summary Leave the active gym
// @Tags gyms
// @Security BearerAuth
// @Success 204
// @Router /gyms/leave [post]
func (s *Server) LeaveGym(c *fiber.Ctx) error {
	if err := s.gymService.LeaveGym(c.UserContext(), currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReportBusyLevel handles POST /api/gyms/busy
// @Summary Report how crowded the active gym is
// @Tags gyms
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{level=int} true "1 (empty) to 5 (packed)"
// @Success 200 {object} object{busy_level=string,label=string}
// @Router /gyms/busy [post]
func (s *Server) ReportBusyLevel(c *fiber.Ctx) error {
	var req struct {
		Level int `json:"level"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	level, err := s.gymService.ReportBusyLevel(c.UserContext(), currentUserID(c), req.Level)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"busy_level": level,
		"label":      service.BusyLabel(level),
	})
}

// UpsertTopLift handles PUT /api/gyms/lifts
// @Summary Record best lifts at the active gym
// @Tags gyms
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{squat_max=int,bench_max=int,deadlift_max=int} true "Lifts"
// @Success 200 {object} models.GymTopLifter
// @Router /gyms/lifts [put]
func (s *Server) UpsertTopLift(c *fiber.Ctx) error {
	var req struct {
		SquatMax    int `json:"squat_max"`
		BenchMax    int `json:"bench_max"`
		DeadliftMax int `json:"deadlift_max"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	lifter, err := s.gymService.UpsertTopLift(c.UserContext(), service.TopLiftInput{
		UserID:      currentUserID(c),
		SquatMax:    req.SquatMax,
		BenchMax:    req.BenchMax,
		DeadliftMax: req.DeadliftMax,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(lifter)
}

type inviteRequest struct {
	ToUserIDs     []uint     `json:"to_user_ids"`
	WorkoutType   string     `json:"workout_type"`
	Message       string     `json:"message"`
	Spots         int        `json:"spots"`
	ScheduledTime *time.Time `json:"scheduled_time"`
}

func (r inviteRequest) input(from uint) service.InviteInput {
	return service.InviteInput{
		FromUserID:    from,
		ToUserIDs:     r.ToUserIDs,
		WorkoutType:   r.WorkoutType,
		Message:       r.Message,
		Spots:         r.Spots,
		ScheduledTime: r.ScheduledTime,
	}
}

// GetInvites handles GET /api/invites?status=
// @Summary Workout invites received
// @Tags gyms
// @Security BearerAuth
// @Produce json
// @Param status query string false "pending, accepted or declined"
// @Success 200 {array} models.WorkoutInvite
// @Router /invites [get]
func (s *Server) GetInvites(c *fiber.Ctx) error {
	status := models.InviteStatus(c.Query("status", string(models.InviteStatusPending)))

	invites, err := s.gymService.Invites(c.UserContext(), currentUserID(c), status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(invites)
}

// SendGymInvite handles POST /api/invites/gym
// @Summary Invite gym members to a workout
// @Description Fans out to members of the viewer's active gym, capped per request.
// @Tags gyms
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{workout_type=string,message=string,spots=int,scheduled_time=string} true "Invite"
// @Success 201 {array} models.WorkoutInvite
// @Router /invites/gym [post]
func (s *Server) SendGymInvite(c *fiber.Ctx) error {
	var req inviteRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	invites, err := s.gymService.SendGymInvite(c.UserContext(), req.input(currentUserID(c)))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invites)
}

// SendFriendInvite handles POST /api/invites/friends
// @Summary Invite friends to a workout
// @Tags gyms
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{to_user_ids=[]int,workout_type=string,message=string,spots=int,scheduled_time=string} true "Invite"
// @Success 201 {array} models.WorkoutInvite
// @Router /invites/friends [post]
func (s *Server) SendFriendInvite(c *fiber.Ctx) error {
	var req inviteRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	invites, err := s.gymService.SendFriendInvite(c.UserContext(), req.input(currentUserID(c)))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invites)
}

// RespondInvite handles POST /api/invites/:id/respond
// @Summary Accept or decline an invite
// @Tags gyms
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Invite ID"
// @Param request body object{action=string} true "accept or decline"
// @Success 200 {object} object{status=string}
// @Router /invites/{id}/respond [post]
func (s *Server) RespondInvite(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Action string `json:"action"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	status, err := s.gymService.RespondInvite(c.UserContext(), currentUserID(c), id, req.Action)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": status})
}
