package api

import (
	"fmt"
	"net/http"

	"afisha/internal/cache"
	"afisha/internal/config"
	"afisha/internal/database"
	"afisha/internal/external"
	"afisha/internal/handlers"
	"afisha/internal/logger"
	"afisha/internal/messaging"
	"afisha/internal/middleware"
	"afisha/internal/repository"
	"afisha/internal/search"
	"afisha/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	router      *gin.Engine
	config      *config.Config
	db          *database.DB
	nats        *messaging.NATSClient
	cacheClient *cache.Client
	services    *service.Services
	repos       *repository.Repositories
}

func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// Optional integrations degrade to nil when disabled or unreachable.
	var natsClient *messaging.NATSClient
	if cfg.NATSEnabled {
		natsClient, err = messaging.NewNATSClient(cfg.NATS)
		if err != nil {
			logger.Get().Warn("NATS unavailable, domain events disabled", "error", err)
		}
	}

	var searchClient *search.Client
	if cfg.SearchEnabled {
		searchClient, err = search.NewClient(cfg.Search)
		if err != nil {
			logger.Get().Warn("Elasticsearch unavailable, text search falls back to SQL", "error", err)
		}
	}

	var cacheClient *cache.Client
	if cfg.CacheEnabled {
		cacheClient, err = cache.NewClient(cfg.Cache)
		if err != nil {
			logger.Get().Warn("Redis unavailable, listing cache disabled", "error", err)
		}
	}

	var statsClient *external.StatsClient
	if cfg.StatsEnabled {
		statsClient = external.NewStatsClient(cfg.Stats)
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(db, repos, service.Collaborators{
		Stats:  statsClient,
		NATS:   natsClient,
		Search: searchClient,
		Cache:  cacheClient,
	})

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS())

	server := &Server{
		router:      router,
		config:      cfg,
		db:          db,
		nats:        natsClient,
		cacheClient: cacheClient,
		services:    services,
		repos:       repos,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.cacheClient)

	admin := s.router.Group("/admin")
	{
		users := admin.Group("/users")
		{
			users.POST("", h.CreateUser)
			users.GET("", h.ListUsers)
			users.DELETE("/:userId", h.DeleteUser)
		}

		categories := admin.Group("/categories")
		{
			categories.POST("", h.CreateCategory)
			categories.PATCH("/:catId", h.UpdateCategory)
			categories.DELETE("/:catId", h.DeleteCategory)
		}

		events := admin.Group("/events")
		{
			events.GET("", h.FindEventsAdmin)
			events.PATCH("/:eventId", h.UpdateEventAdmin)
		}

		compilations := admin.Group("/compilations")
		{
			compilations.POST("", h.CreateCompilation)
			compilations.PATCH("/:compId", h.UpdateCompilation)
			compilations.DELETE("/:compId", h.DeleteCompilation)
		}

		comments := admin.Group("/comments")
		{
			comments.PATCH("/:commentId", h.ModerateComment)
			comments.DELETE("/:commentId", h.DeleteCommentAdmin)
		}
	}

	users := s.router.Group("/users/:userId")
	{
		events := users.Group("/events")
		{
			events.POST("", h.CreateEvent)
			events.GET("", h.ListOwnEvents)
			events.GET("/:eventId", h.GetOwnEvent)
			events.PATCH("/:eventId", h.UpdateOwnEvent)
			events.GET("/:eventId/requests", h.ListEventRequests)
			events.PATCH("/:eventId/requests", h.UpdateRequestStatuses)
			events.POST("/:eventId/comments", h.CreateComment)
			events.PATCH("/:eventId/comments/:commentId", h.UpdateComment)
			events.DELETE("/:eventId/comments/:commentId", h.DeleteComment)
		}

		requests := users.Group("/requests")
		{
			requests.POST("", h.CreateRequest)
			requests.GET("", h.ListOwnRequests)
			requests.PATCH("/:requestId/cancel", h.CancelRequest)
		}

		subscriptions := users.Group("/subscriptions")
		{
			subscriptions.GET("", h.ListSubscriptions)
			subscriptions.GET("/events", h.EventFeed)
			subscriptions.PUT("/:targetId", h.Subscribe)
			subscriptions.DELETE("/:targetId", h.Unsubscribe)
		}

		users.GET("/comments", h.ListOwnComments)
	}

	events := s.router.Group("/events")
	{
		events.GET("", h.FindEventsPublic)
		events.GET("/:eventId", h.GetEventPublic)
		events.GET("/:eventId/comments", h.ListEventComments)
	}

	categories := s.router.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.GET("/:catId", h.GetCategory)
	}

	compilations := s.router.Group("/compilations")
	{
		compilations.GET("", h.ListCompilations)
		compilations.GET("/:compId", h.GetCompilation)
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) healthCheck(c *gin.Context) {
	dbHealth := s.db.HealthCheck(c.Request.Context())

	status := http.StatusOK
	if dbHealth.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   dbHealth.Status,
		"service":  "afisha-api",
		"database": dbHealth,
	})
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for tests.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if s.cacheClient != nil {
		if err := s.cacheClient.Close(); err != nil {
			logger.Get().Error("Error closing Redis connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
