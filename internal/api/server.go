package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mood-engine/internal/api/middleware"
	"mood-engine/internal/bus"
	"mood-engine/internal/config"
	"mood-engine/internal/inference"
	"mood-engine/internal/mood"
	"mood-engine/internal/notify"
	"mood-engine/internal/scheduler"
	"mood-engine/internal/session"
)

type Server struct {
	cfg       *config.Config
	store     *mood.Store
	cache     *mood.Cache
	sched     *scheduler.Scheduler
	sessions  *session.Manager
	notifier  *notify.Notifier
	eventBus  *bus.Bus
	inference *inference.Client
	router    *gin.Engine
}

func New(
	cfg *config.Config,
	store *mood.Store,
	cache *mood.Cache,
	sched *scheduler.Scheduler,
	sessions *session.Manager,
	notifier *notify.Notifier,
	eventBus *bus.Bus,
	client *inference.Client,
) *Server {
	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:       cfg,
		store:     store,
		cache:     cache,
		sched:     sched,
		sessions:  sessions,
		notifier:  notifier,
		eventBus:  eventBus,
		inference: client,
		router:    gin.Default(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}

	s.router.Use(cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	// Health Check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "mood-engine"})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Cross-view mood feed
	s.router.GET("/ws", s.MoodFeed)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/state", s.GetState)
		v1.GET("/history", s.GetHistory)
		v1.GET("/stats", s.GetStats)
		v1.GET("/recommendations/:mood", s.GetRecommendations)

		auth := v1.Group("", middleware.RequireAuth(s.cfg.Server.AuthSecret))
		{
			auth.POST("/detect", s.TriggerDetect)
			auth.POST("/analyze", s.AnalyzeMultimodal)
			auth.POST("/mood", s.SetManualMood)
			auth.PUT("/session", s.SignIn)
			auth.DELETE("/session", s.SignOut)
			auth.GET("/preferences", s.GetPreferences)
			auth.PUT("/preferences", s.SetPreferences)
			auth.DELETE("/history", s.ClearHistory)
		}
	}
}

// Start runs the server on the configured port
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}

// Router exposes the handler for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
