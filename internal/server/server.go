// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "spottr/docs" // swagger docs
	"spottr/internal/config"
	"spottr/internal/database"
	"spottr/internal/featureflags"
	"spottr/internal/middleware"
	"spottr/internal/models"
	"spottr/internal/repository"
	"spottr/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager

	userRepo repository.UserRepository

	streakService      *service.StreakService
	statsService       *service.StatsService
	leaderboardService *service.LeaderboardService
	achievementService *service.AchievementService
	workoutService     *service.WorkoutService
	postService        *service.PostService
	socialService      *service.SocialService
	gymService         *service.GymService
	groupService       *service.GroupService
}

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// httpMetrics returns the process-wide request metrics middleware. Its
// collectors live in the default registry and can only be registered once.
func httpMetrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New("spottr-api")
	})
	return prom
}

// NewServerWithDeps wires repositories and services over an initialized
// database. redisClient may be nil, in which case rate limits fail open and
// token revocation is unavailable.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	workoutRepo := repository.NewWorkoutRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	gymRepo := repository.NewGymRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	chatRepo := repository.NewChatRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	tx := repository.NewTransactor(db)

	weekStart := cfg.WeekStart()

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: httpMetrics(),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		userRepo:       userRepo,
	}

	s.streakService = service.NewStreakService(tx, userRepo, groupRepo, workoutRepo, postRepo, achievementRepo, weekStart)
	s.statsService = service.NewStatsService(statsRepo, friendRepo)
	s.achievementService = service.NewAchievementService(achievementRepo, userRepo, statsRepo, friendRepo)
	s.leaderboardService = service.NewLeaderboardService(userRepo, friendRepo, gymRepo, workoutRepo, statsRepo, weekStart)
	s.workoutService = service.NewWorkoutService(tx, workoutRepo, postRepo, statsRepo, s.streakService, s.achievementService, weekStart)
	s.postService = service.NewPostService(tx, postRepo, commentRepo, friendRepo, gymRepo, s.streakService, s.achievementService)
	s.socialService = service.NewSocialService(userRepo, friendRepo, inviteRepo, workoutRepo, postRepo, s.statsService, redisClient)
	s.gymService = service.NewGymService(gymRepo, inviteRepo, userRepo)
	s.groupService = service.NewGroupService(groupRepo, chatRepo, userRepo)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				models.NewRateLimitedError("Too many requests, please try again later."))
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimitWithPolicy(s.redis, 10, 5*time.Minute, middleware.FailClosed, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	protected := api.Group("", s.AuthRequired())

	protected.Get("/feature-flags", s.GetFeatureFlags)

	// Exercise catalog and personal records
	protected.Get("/exercises", s.ListExercises)
	records := protected.Group("/records")
	records.Get("/", s.GetPersonalRecords)
	records.Post("/", s.LogPersonalRecord)

	// Workouts. Static segments before /:id.
	workouts := protected.Group("/workouts")
	workouts.Get("/track", s.GetTrack)
	workouts.Post("/", s.StartWorkout)
	workouts.Post("/sets/:setId", s.UpdateSet)
	workouts.Post("/exercises/:exerciseId/sets", s.AddSet)
	workouts.Post("/:id/exercises", s.AddExercise)
	workouts.Post("/:id/complete", s.CompleteWorkout)
	workouts.Post("/:id/publish", middleware.RateLimit(s.redis, 10, 5*time.Minute, "publish_workout"), s.PublishWorkout)
	workouts.Get("/:id/stats", s.GetWorkoutStats)
	workouts.Get("/:id", s.GetWorkout)

	templates := protected.Group("/templates")
	templates.Get("/", s.ListTemplates)
	templates.Post("/", s.CreateTemplate)
	templates.Post("/:id/start", s.StartFromTemplate)
	templates.Delete("/:id", s.DeleteTemplate)

	// Posts and feed
	protected.Get("/feed", s.GetFeed)
	protected.Post("/checkins", middleware.RateLimit(s.redis, 10, 5*time.Minute, "checkin"), s.CreateCheckin)
	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/react", s.ReactToPost)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Get("/:id/poll", s.GetPollResults)
	posts.Post("/:id/poll/vote", s.VotePoll)
	posts.Get("/:id", s.GetPost)

	// Users and profiles
	users := protected.Group("/users")
	users.Get("/search", middleware.RateLimit(s.redis, 30, time.Minute, "search"), s.SearchUsers)
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Put("/me/status", s.SetMyStatus)
	users.Get("/by-username/:username", s.GetProfileByUsername)
	users.Get("/:id/calendar", s.GetCalendar)
	users.Get("/:id/posts", s.GetUserPosts)
	users.Post("/:id/follow", s.ToggleFollow)
	users.Post("/:id/nudge", s.FeatureRequired(featureflags.Nudges), s.Nudge)
	users.Get("/:id", s.GetUserProfile)

	friends := protected.Group("/friends")
	friends.Get("/", s.GetFriends)
	friends.Get("/requests", s.GetPendingRequests)
	friends.Post("/requests/:requestId/accept", s.AcceptFriendRequest)
	friends.Post("/requests/:requestId/decline", s.DeclineFriendRequest)
	friends.Post("/requests/user/:userId", middleware.RateLimit(s.redis, 5, 5*time.Minute, "friend_request"), s.SendFriendRequest)
	protected.Get("/nudges", s.GetNudges)

	// Gyms and invites
	gyms := protected.Group("/gyms")
	gyms.Get("/", s.GetGymOverview)
	gyms.Post("/leave", s.LeaveGym)
	gyms.Post("/busy", s.ReportBusyLevel)
	gyms.Put("/lifts", s.UpsertTopLift)
	gyms.Post("/:id/join", s.JoinGym)
	gyms.Get("/:id", s.GetGym)

	invites := protected.Group("/invites")
	invites.Get("/", s.GetInvites)
	invites.Post("/gym", s.SendGymInvite)
	invites.Post("/friends", s.SendFriendInvite)
	invites.Post("/:id/respond", s.RespondInvite)

	// Groups and messaging
	groups := protected.Group("/groups", s.FeatureRequired(featureflags.GroupChat))
	groups.Get("/", s.GetGroups)
	groups.Post("/", s.CreateGroup)
	groups.Post("/join", s.JoinGroup)
	groups.Get("/:id/messages", s.GetGroupMessages)
	groups.Post("/:id/messages", middleware.RateLimit(s.redis, 15, time.Minute, "send_chat"), s.SendGroupMessage)

	messages := protected.Group("/messages", s.FeatureRequired(featureflags.GroupChat))
	messages.Get("/unread", s.GetUnreadCount)
	messages.Get("/direct/:userId", s.GetDirectMessages)
	messages.Post("/direct/:userId", middleware.RateLimit(s.redis, 15, time.Minute, "send_chat"), s.SendDirectMessage)

	// Streaks, leaderboard, achievements
	protected.Get("/streaks", s.GetStreakOverview)
	protected.Get("/leaderboard", s.GetLeaderboard)
	protected.Get("/achievements", s.GetAchievements)
	protected.Get("/stats/me", s.GetMyStats)
}

// LivenessCheck handles liveness check requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness check requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis only backs rate limits and the shared cache tier.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return middleware.AuthRequired(s.config.JWTSecret, s.redis)
}

// App builds the fiber app with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Spottr API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fe.Code, fe)
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.App()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.app != nil {
		err = multierr.Append(err, s.app.ShutdownWithContext(ctx))
	}
	err = multierr.Append(err, database.Close(s.db))
	if s.redis != nil {
		err = multierr.Append(err, s.redis.Close())
	}
	if err != nil {
		middleware.Logger.Error("Server shutdown finished with errors", slog.String("error", err.Error()))
		return err
	}
	middleware.Logger.Info("Server shutdown complete")
	return nil
}
