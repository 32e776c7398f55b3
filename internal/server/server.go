// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pictive/internal/cache"
	"pictive/internal/config"
	"pictive/internal/database"
	"pictive/internal/middleware"
	"pictive/internal/models"
	"pictive/internal/repository"
	"pictive/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	followRepo  repository.FollowRepository

	authService    *service.AuthService
	userService    *service.UserService
	postService    *service.PostService
	commentService *service.CommentService
	feedService    *service.FeedService
}

// NewServer creates a new server instance with all dependencies. The storage
// driver selects between a SQL database and the in-memory store.
func NewServer(cfg *config.Config) (*Server, error) {
	var db *gorm.DB
	if cfg.StorageDriver != config.DriverMemory {
		var err error
		db, err = database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("pictive-api"),
	}

	if db != nil {
		server.userRepo = repository.NewGormUserRepository(db)
		server.postRepo = repository.NewGormPostRepository(db)
		server.commentRepo = repository.NewGormCommentRepository(db)
		server.followRepo = repository.NewGormFollowRepository(db)
	} else {
		store := repository.NewMemoryStore()
		server.userRepo = store.Users()
		server.postRepo = store.Posts()
		server.commentRepo = store.Comments()
		server.followRepo = store.Follows()
	}

	server.authService = service.NewAuthService(server.userRepo, cfg.JWTSecret)
	server.userService = service.NewUserService(server.userRepo, server.followRepo, server.postRepo)
	server.postService = service.NewPostService(server.postRepo, server.userRepo)
	server.commentService = service.NewCommentService(server.commentRepo, server.postRepo)
	server.feedService = service.NewFeedService(server.postRepo, server.followRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Distributed tracing
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
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
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
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

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Pictive Backend Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Get("/me", s.AuthRequired(), s.Me)

	// User routes. /me must be registered before the /:username routes so
	// it is not swallowed by the profile lookup.
	users := api.Group("/users")
	users.Get("/me", s.AuthRequired(), s.MyProfile)
	users.Patch("/me", s.AuthRequired(), s.UpdateMyProfile)
	users.Post("/follow/:username", s.AuthRequired(), s.FollowUser)
	users.Post("/unfollow/:username", s.AuthRequired(), s.UnfollowUser)
	users.Get("/:username/followers", s.AuthRequired(), s.GetFollowers)
	users.Get("/:username/following", s.AuthRequired(), s.GetFollowing)
	users.Get("/:username", s.optionalUser(), s.GetProfile)

	// Post routes. /feed and /user/:username must precede the /:id routes
	// for the same reason.
	posts := api.Group("/posts")
	posts.Post("/", s.AuthRequired(), middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Get("/feed", s.AuthRequired(), s.GetFeed)
	posts.Get("/user/:username", s.optionalUser(), s.GetUserPosts)
	posts.Get("/", s.optionalUser(), s.GetPosts)
	posts.Post("/:id/like", s.AuthRequired(), s.LikePost)
	posts.Post("/:id/unlike", s.AuthRequired(), s.UnlikePost)
	posts.Get("/:id", s.optionalUser(), s.GetPost)
	posts.Patch("/:id", s.AuthRequired(), s.UpdatePost)
	posts.Delete("/:id", s.AuthRequired(), s.DeletePost)

	// Comment routes
	comments := api.Group("/comments")
	comments.Post("/", s.AuthRequired(), middleware.RateLimit(
		s.redis, 20, time.Minute, "create_comment"), s.CreateComment)
	comments.Get("/post/:postId", s.GetComments)
	comments.Get("/replies/:commentId", s.GetReplies)
	comments.Patch("/:id", s.AuthRequired(), s.UpdateComment)
	comments.Delete("/:id", s.AuthRequired(), s.DeleteComment)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			dbStatus = "unhealthy"
		} else if err := sqlDB.PingContext(ctx); err != nil {
			dbStatus = "unhealthy"
		}
	} else if s.config.StorageDriver != config.DriverMemory {
		dbStatus = "unavailable"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
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

// parseToken validates a JWT string and extracts the user ID. Used by both
// the required and optional auth middlewares.
func (s *Server) parseToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, models.NewUnauthorizedError("Invalid token claims")
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "pictive" {
		return 0, models.NewUnauthorizedError("Invalid token issuer")
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "pictive-api" {
		return 0, models.NewUnauthorizedError("Invalid token audience")
	}

	sub, ok := claims["sub"].(float64)
	if !ok || sub < 1 {
		return 0, models.NewUnauthorizedError("Invalid subject claim")
	}
	return uint(sub), nil
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		userID, err := s.parseToken(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		c.Locals("userID", userID)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// optionalUser resolves the user ID from a bearer token when one is present
// but lets unauthenticated requests through. Invalid tokens are treated as
// anonymous rather than rejected.
func (s *Server) optionalUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString != "" {
			if userID, err := s.parseToken(tokenString); err == nil {
				c.Locals("userID", userID)
				ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
				c.SetUserContext(ctx)
			}
		}
		return c.Next()
	}
}

// currentUserID returns the authenticated user's ID, or 0 for anonymous
// requests.
func currentUserID(c *fiber.Ctx) uint {
	if userID, ok := c.Locals("userID").(uint); ok {
		return userID
	}
	return 0
}

// Start configures and launches the HTTP server.
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:      "Pictive API",
		BodyLimit:    10 * 1024 * 1024, // 10MB limit
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app == nil {
		return nil
	}
	return s.app.ShutdownWithContext(ctx)
}
