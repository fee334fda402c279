package server

import (
	"backend-tripgraph/internal/account"
	"backend-tripgraph/internal/activity"
	"backend-tripgraph/internal/auth"
	"backend-tripgraph/internal/config"
	"backend-tripgraph/internal/feed"
	"backend-tripgraph/internal/photoshare"
	"backend-tripgraph/internal/relationship"
	"backend-tripgraph/internal/stream"
	"backend-tripgraph/internal/trip"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authSvc := auth.NewService(s.Cfg.JWTSecret, s.DB)
	jwtMiddleware := authSvc.Middleware()
	activities := activity.NewStore(s.DB)

	auth.RegisterRoutes(s.App.Group("/auth"), authSvc)
	account.RegisterRoutes(s.App.Group("/accounts"), account.NewService(s.DB), jwtMiddleware)
	relationship.RegisterRoutes(s.App.Group("/relationships"), relationship.NewService(s.DB, activities, s.Stream), jwtMiddleware)
	trip.RegisterRoutes(s.App.Group("/trips"), trip.NewService(s.DB, activities), jwtMiddleware)
	photoshare.RegisterRoutes(s.App.Group("/photos"), photoshare.NewService(s.DB, activities, s.Stream), jwtMiddleware)
	feed.RegisterRoutes(s.App.Group("/feed"), feed.NewService(s.DB, activities), jwtMiddleware, s.Cfg.FeedLimit)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, authSvc.ValidateAccessToken)
}
