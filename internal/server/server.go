// Package server contains the HTTP handlers, guards and routing of the API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "melodia/docs" // swagger docs
	"melodia/internal/cache"
	"melodia/internal/config"
	"melodia/internal/featureflags"
	"melodia/internal/media"
	"melodia/internal/middleware"
	"melodia/internal/models"
	"melodia/internal/repository"
	"melodia/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	store          *cache.Store
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager
	uploader       *media.Uploader

	userService     *service.UserService
	artistService   *service.ArtistService
	songService     *service.SongService
	albumService    *service.AlbumService
	playlistService *service.PlaylistService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching, token revocation and auth rate limits are
// then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	uploader, err := media.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("media storage: %w", err)
	}
	return newServer(cfg, db, redisClient, uploader), nil
}

func newServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, uploader *media.Uploader) *Server {
	userRepo := repository.NewUserRepository(db)
	artistRepo := repository.NewArtistRepository(db)
	songRepo := repository.NewSongRepository(db)
	albumRepo := repository.NewAlbumRepository(db)
	playlistRepo := repository.NewPlaylistRepository(db)

	store := cache.NewStore(redisClient)
	flags := featureflags.NewManager(cfg.FeatureFlags)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		store:          store,
		promMiddleware: middleware.InitMetrics("melodia-api"),
		featureFlags:   flags,
		uploader:       uploader,
		userService: service.NewUserService(userRepo, songRepo, artistRepo, playlistRepo, store, service.UserServiceConfig{
			JWTSecret: cfg.JWTSecret,
			TokenTTL:  cfg.JWTTTL,
		}),
		artistService:   service.NewArtistService(artistRepo, songRepo, albumRepo, store),
		songService:     service.NewSongService(songRepo, artistRepo, albumRepo, store, flags),
		albumService:    service.NewAlbumService(albumRepo, artistRepo, songRepo, store),
		playlistService: service.NewPlaylistService(playlistRepo, songRepo, userRepo),
	}
}

// App returns the Fiber application, building it on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	bodyLimit := s.config.UploadMaxSizeMB
	if bodyLimit <= 0 {
		bodyLimit = 50
	}

	app := fiber.New(fiber.Config{
		AppName:      "Melodia API",
		BodyLimit:    bodyLimit * 1024 * 1024,
		ErrorHandler: s.handleError,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// handleError renders every error returned by a handler as {"message": ...}.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusFor(err), err, !s.config.IsProduction())
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Spans first so the trace id reaches the request context
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application. Specific paths such
// as /songs/top are registered before the generic /:id routes.
func (s *Server) SetupRoutes(app *fiber.App) {
	auth := s.AuthRequired()
	admin := s.AdminRequired()
	viewer := s.optionalUser()

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Locally stored uploads
	if disk, ok := s.uploader.Provider().(*media.DiskProvider); ok {
		app.Static("/media", disk.Dir())
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", auth, admin, monitor.New(monitor.Config{
		Title: "Melodia API Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// User routes
	users := api.Group("/users")
	users.Post("/register", middleware.RateLimit(s.redis, s.config.Env, 5, 10*time.Minute, "register"), s.Register)
	users.Post("/login", middleware.RateLimit(s.redis, s.config.Env, 10, 5*time.Minute, "login"), s.Login)
	users.Post("/logout", auth, s.Logout)
	users.Get("/me", auth, s.GetMe)
	users.Put("/me", auth, s.UpdateMe)
	users.Delete("/me", auth, s.DeleteMe)
	users.Get("/me/liked-songs", auth, s.GetLikedSongs)
	users.Get("/me/followed-artists", auth, s.GetFollowedArtists)
	users.Get("/me/followed-playlists", auth, s.GetFollowedPlaylists)
	users.Get("/", auth, admin, s.ListUsers)
	users.Get("/:id", s.GetUserProfile)
	users.Delete("/:id", auth, admin, s.DeleteUser)

	// Artist routes
	artists := api.Group("/artists")
	artists.Get("/", s.ListArtists)
	artists.Get("/top", s.TopArtists)
	artists.Get("/:id/songs", s.GetArtistSongs)
	artists.Get("/:id/albums", s.GetArtistAlbums)
	artists.Post("/:id/follow", auth, s.FollowArtist)
	artists.Delete("/:id/follow", auth, s.UnfollowArtist)
	artists.Get("/:id", s.GetArtist)
	artists.Post("/", auth, admin, s.CreateArtist)
	artists.Put("/:id", auth, admin, s.UpdateArtist)
	artists.Delete("/:id", auth, admin, s.DeleteArtist)

	// Song routes
	songs := api.Group("/songs")
	songs.Get("/", s.ListSongs)
	songs.Get("/top", s.TopSongs)
	songs.Get("/new-releases", s.NewReleases)
	songs.Post("/:id/like", auth, s.LikeSong)
	songs.Delete("/:id/like", auth, s.UnlikeSong)
	songs.Post("/:id/play", viewer, s.PlaySong)
	songs.Get("/:id", s.GetSong)
	songs.Post("/", auth, admin, s.CreateSong)
	songs.Put("/:id", auth, admin, s.UpdateSong)
	songs.Delete("/:id", auth, admin, s.DeleteSong)

	// Album routes
	albums := api.Group("/albums")
	albums.Get("/", s.ListAlbums)
	albums.Post("/:id/songs", auth, admin, s.AddAlbumSongs)
	albums.Delete("/:id/songs/:songId", auth, admin, s.RemoveAlbumSong)
	albums.Get("/:id", s.GetAlbum)
	albums.Post("/", auth, admin, s.CreateAlbum)
	albums.Put("/:id", auth, admin, s.UpdateAlbum)
	albums.Delete("/:id", auth, admin, s.DeleteAlbum)

	// Playlist routes
	playlists := api.Group("/playlists")
	playlists.Get("/", s.ListPlaylists)
	playlists.Get("/me", auth, s.ListMyPlaylists)
	playlists.Post("/:id/songs", auth, s.AddPlaylistSongs)
	playlists.Delete("/:id/songs", auth, s.RemovePlaylistSongs)
	playlists.Post("/:id/collaborators", auth, s.AddCollaborator)
	playlists.Delete("/:id/collaborators/:userId", auth, s.RemoveCollaborator)
	playlists.Post("/:id/follow", auth, s.FollowPlaylist)
	playlists.Delete("/:id/follow", auth, s.UnfollowPlaylist)
	playlists.Get("/:id", viewer, s.GetPlaylist)
	playlists.Post("/", auth, s.CreatePlaylist)
	playlists.Put("/:id", auth, s.UpdatePlaylist)
	playlists.Delete("/:id", auth, s.DeletePlaylist)

	// Admin routes
	adminGroup := api.Group("/admin")
	adminGroup.Get("/feature-flags", auth, admin, s.GetFeatureFlags)
}

// LivenessCheck handles liveness check requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness check requests. Redis is optional, so only
// the database decides readiness.
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

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "disabled"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Melodia API",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
			"storage":  s.uploader.Provider().Name(),
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
