package server

import (
	"spottr/internal/models"
	"spottr/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListExercises handles GET /api/exercises
// @Summary Exercise catalog
// @Tags workouts
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.ExerciseDefinition
// @Router /exercises [get]
func (s *Server) ListExercises(c *fiber.Ctx) error {
	exercises, err := s.workoutService.ListExercises(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(exercises)
}

// GetTrack handles GET /api/workouts/track
// @Summary Workout landing page
// @Description Active workout, this week's totals and saved templates.
// @Tags workouts
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.TrackView
// @Router /workouts/track [get]
func (s *Server) GetTrack(c *fiber.Ctx) error {
	view, err := s.workoutService.Track(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// StartWorkout handles POST /api/workouts
// @Summary Start a workout
// @Tags workouts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{name=string} false "Workout name"
// @Success 201 {object} models.Workout
// @Failure 400 {object} models.ErrorResponse
// @Router /workouts [post]
func (s *Server) StartWorkout(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}

	workout, err := s.workoutService.StartWorkout(c.UserContext(), currentUserID(c), req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(workout)
}

// GetWorkout handles GET /api/workouts/:id
// @Summary Get a workout
// @Tags workouts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Workout ID"
// @Success 200 {object} models.Workout
// @Failure 404 {object} models.ErrorResponse
// @Router /workouts/{id} [get]
func (s *Server) GetWorkout(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	workout, err := s.workoutService.GetWorkout(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(workout)
}

// GetWorkoutStats handles GET /api/workouts/:id/stats
// @Summary Workout aggregates
// @Tags workouts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Workout ID"
// @Success 200 {object} service.WorkoutStats
// @Router /workouts/{id}/stats [get]
func (s *Server) GetWorkoutStats(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.workoutService.GetWorkout(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	stats, err := s.statsService.GetWorkoutStats(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// AddExercise handles POST /api/workouts/:id/exercises
// @Summary Add an exercise to a workout
// @Tags workouts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Workout ID"
// @Param request body object{exercise_id=int} true "Exercise"
// @Success 201 {object} models.WorkoutExercise
// @Router /workouts/{id}/exercises [post]
func (s *Server) AddExercise(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		ExerciseID uint `json:"exercise_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.ExerciseID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("exercise_id is required"))
	}

	we, err := s.workoutService.AddExercise(c.UserContext(), currentUserID(c), id, req.ExerciseID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(we)
}

// AddSet handles POST /api/workouts/exercises/:exerciseId/sets
// @Summary Add a set
// @Tags workouts
// @Security BearerAuth
// @Produce json
// @Param exerciseId path int true "Workout exercise ID"
// @Success 201 {object} models.WorkoutSet
// @Router /workouts/exercises/{exerciseId}/sets [post]
func (s *Server) AddSet(c *fiber.Ctx) error {
	id, err := parseID(c, "exerciseId")
	if err != nil {
		return nil
	}

	set, err := s.workoutService.AddSet(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(set)
}

// UpdateSet handles POST /api/workouts/sets/:setId
// @Summary Update a set
// @Tags workouts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param setId path int true "Set ID"
// @Param request body object{reps=int,weight=number,distance=number,time_seconds=int,completed=bool} true "Set values"
// @Success 200 {object} models.WorkoutSet
// @Router /workouts/sets/{setId} [post]
func (s *Server) UpdateSet(c *fiber.Ctx) error {
	id, err := parseID(c, "setId")
	if err != nil {
		return nil
	}
	var req struct {
		Reps        *int     `json:"reps"`
		Weight      *float64 `json:"weight"`
		Distance    *float64 `json:"distance"`
		TimeSeconds *int     `json:"time_seconds"`
		Completed   bool     `json:"completed"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	set, err := s.workoutService.UpdateSet(c.UserContext(), service.UpdateSetInput{
		UserID:      currentUserID(c),
		SetID:       id,
		Reps:        req.Reps,
		Weight:      req.Weight,
		Distance:    req.Distance,
		TimeSeconds: req.TimeSeconds,
		Completed:   req.Completed,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(set)
}

// CompleteWorkout handles POST /api/workouts/:id/complete
// @Summary Complete a workout
// @Description Stamps the end time and records streak activity for today.
// @Tags workouts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Workout ID"
// @Success 200 {object} models.Workout
// @Router /workouts/{id}/complete [post]
func (s *Server) CompleteWorkout(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	workout, err := s.workoutService.CompleteWorkout(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(workout)
}

// PublishWorkout handles POST /api/workouts/:id/publish
// @Summary Share a completed workout to the feed
// @Tags workouts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Workout ID"
// @Param request body object{description=string,location=string,save_as_template=bool} false "Publish options"
// @Success 201 {object} models.Post
// @Success 200 {object} object{message=string}
// @Router /workouts/{id}/publish [post]
func (s *Server) PublishWorkout(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Description    string `json:"description"`
		Location       string `json:"location"`
		SaveAsTemplate bool   `json:"save_as_template"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}

	post, err := s.workoutService.PublishWorkout(c.UserContext(), service.PublishWorkoutInput{
		UserID:         currentUserID(c),
		WorkoutID:      id,
		Description:    req.Description,
		Location:       req.Location,
		SaveAsTemplate: req.SaveAsTemplate,
	})
	if err != nil {
		return respondError(c, err)
	}
	if post == nil {
		return c.JSON(fiber.Map{"message": "Workout already published"})
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// ListTemplates handles GET /api/templates
// @Summary Saved workout templates
// @Tags workouts
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.WorkoutTemplate
// @Router /templates [get]
func (s *Server) ListTemplates(c *fiber.Ctx) error {
	templates, err := s.workoutService.ListTemplates(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(templates)
}

// CreateTemplate handles POST /api/templates
// @Summary Create a workout template
// @Tags workouts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{name=string,exercises=[]models.TemplateExercise} true "Template"
// @Success 201 {object} models.WorkoutTemplate
// @Router /templates [post]
func (s *Server) CreateTemplate(c *fiber.Ctx) error {
	var req struct {
		Name      string                    `json:"name"`
		Exercises []models.TemplateExercise `json:"exercises"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	tmpl, err := s.workoutService.CreateTemplate(c.UserContext(), currentUserID(c), req.Name, req.Exercises)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tmpl)
}

// StartFromTemplate handles POST /api/templates/:id/start
// @Summary Start a workout from a template
// @Tags workouts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Template ID"
// @Success 201 {object} models.Workout
// @Router /templates/{id}/start [post]
func (s *Server) StartFromTemplate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	workout, err := s.workoutService.StartFromTemplate(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(workout)
}

// DeleteTemplate handles DELETE /api/templates/:id
// @Summary Delete a template
// @Tags workouts
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 204
// @Router /templates/{id} [delete]
func (s *Server) DeleteTemplate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.workoutService.DeleteTemplate(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetPersonalRecords handles GET /api/records
// @Summary Best personal record per exercise
// @Tags workouts
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.PersonalRecord
// @Router /records [get]
func (s *Server) GetPersonalRecords(c *fiber.Ctx) error {
	records, err := s.workoutService.PersonalRecords(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(records)
}

// LogPersonalRecord handles POST /api/records
// @Summary Log a personal record
// @Tags workouts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{exercise_id=int,weight=number,reps=int} true "Record"
// @Success 201 {object} models.PersonalRecord
// @Router /records [post]
func (s *Server) LogPersonalRecord(c *fiber.Ctx) error {
	var req struct {
		ExerciseID uint    `json:"exercise_id"`
		Weight     float64 `json:"weight"`
		Reps       int     `json:"reps"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	record, err := s.workoutService.LogPersonalRecord(c.UserContext(), service.LogPRInput{
		UserID:     currentUserID(c),
		ExerciseID: req.ExerciseID,
		Weight:     req.Weight,
		Reps:       req.Reps,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}
