package server

import (
	"backend-practicelog/internal/analysis"
	"backend-practicelog/internal/auth"
	"backend-practicelog/internal/config"
	"backend-practicelog/internal/live"
	"backend-practicelog/internal/session"
	"backend-practicelog/internal/stats"
	"backend-practicelog/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App   *fiber.App
	Cfg   config.Config
	DB    *pgxpool.Pool
	Redis *redis.Client
	Live  *live.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:   app,
		Cfg:   cfg,
		DB:    db,
		Redis: redisClient,
		Live:  live.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	vision := analysis.NewHTTPVisionClient(s.Cfg.VisionAPIURL, s.Cfg.VisionAPIKey)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	session.RegisterRoutes(s.App.Group("/sessions"), session.NewService(s.DB, s.Live), jwtMiddleware)
	stats.RegisterRoutes(s.App.Group("/stats"), stats.NewService(s.DB), jwtMiddleware)
	analysis.RegisterRoutes(s.App.Group("/analysis"), analysis.NewService(s.DB, s.Redis, vision), jwtMiddleware)
	storage.RegisterRoutes(s.App.Group("/storage"), storage.NewService(s.DB), jwtMiddleware)
	live.RegisterRoutes(s.App.Group("/live"), s.Live)
}
