package stats

import (
	"fmt"
	"net/http"

	"afisha/internal/config"
	"afisha/internal/database"
	"afisha/internal/logger"
	"afisha/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the stats micro-service: it records page views and serves
// aggregated counts to the main API.
type Server struct {
	router *gin.Engine
	config *config.StatsServiceConfig
	db     *database.DB
}

func NewServer(cfg *config.StatsServiceConfig) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunStatsMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	service := NewService(NewRepository(db))
	h := NewHandlers(service)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	router.POST("/hit", h.RecordHit)
	router.GET("/stats", h.GetStats)

	server := &Server{router: router, config: cfg, db: db}

	router.GET("/health", server.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return server
}

func (s *Server) healthCheck(c *gin.Context) {
	dbHealth := s.db.HealthCheck(c.Request.Context())

	status := http.StatusOK
	if dbHealth.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   dbHealth.Status,
		"service":  "afisha-stats",
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
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
