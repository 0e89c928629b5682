package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/pollstream/pollstream-api/internal/auth"
	"github.com/pollstream/pollstream-api/internal/config"
	"github.com/pollstream/pollstream-api/internal/events"
	"github.com/pollstream/pollstream-api/internal/handlers"
	"github.com/pollstream/pollstream-api/internal/logger"
	"github.com/pollstream/pollstream-api/internal/middleware"
	"github.com/pollstream/pollstream-api/internal/services"
	"github.com/pollstream/pollstream-api/internal/storage/postgres"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	config     *config.Config
	container  *postgres.Container
	bus        *events.Bus
}

// New creates a new server instance
func New(cfg *config.Config, container *postgres.Container, bus *events.Bus) *Server {
	return &Server{
		config:    cfg,
		container: container,
		bus:       bus,
	}
}

// Start starts the HTTP server. WriteTimeout is left unset so SSE
// subscribers can hold their connection open; slow-client protection on
// the stream comes from the bounded per-subscriber queue instead.
func (s *Server) Start() error {
	router := s.setupRouter()

	s.httpServer = &http.Server{
		Addr:    ":" + s.config.Server.Port,
		Handler: router,

		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Get().Info("Starting HTTP server", "port", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	logger.Get().Info("Shutting down HTTP server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if s.config.CORS.AllowOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(s.config.CORS.AllowOrigins, ",")
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = strings.Split(s.config.CORS.AllowMethods, ",")
	corsConfig.AllowHeaders = strings.Split(s.config.CORS.AllowHeaders, ",")
	router.Use(cors.New(corsConfig))

	tokens := auth.NewManager(s.config.Auth.JWTSecret, s.config.Auth.Issuer, s.config.Auth.TokenTTL)

	userService := services.NewUserService(s.container.Users(), tokens)
	pollService := services.NewPollService(s.container.Polls(), s.container.Votes(), s.bus)
	voteService := services.NewVoteService(s.container.Votes(), s.container.Polls(), s.bus)

	userHandler := handlers.NewUserHandler(userService)
	pollHandler := handlers.NewPollHandler(pollService)
	voteHandler := handlers.NewVoteHandler(voteService)
	streamHandler := handlers.NewStreamHandler(s.bus)

	// Health check
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Pollstream API is running",
			"status":  "healthy",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.setupAPIRoutes(router, tokens, userHandler, pollHandler, voteHandler, streamHandler)

	return router
}

// setupAPIRoutes configures all API routes
func (s *Server) setupAPIRoutes(
	router *gin.Engine,
	tokens *auth.Manager,
	userHandler *handlers.UserHandler,
	pollHandler *handlers.PollHandler,
	voteHandler *handlers.VoteHandler,
	streamHandler *handlers.StreamHandler,
) {
	limited := middleware.RateLimit(rate.Limit(s.config.RateLimit.RequestsPerSecond), s.config.RateLimit.Burst)

	api := router.Group("/api")
	{
		users := api.Group("/users")
		{
			users.POST("/register", limited, userHandler.Register)
			users.POST("/login", limited, userHandler.Login)
			users.GET("/me", middleware.Authenticate(tokens), userHandler.Me)
		}

		polls := api.Group("/polls")
		{
			polls.GET("/stream", streamHandler.PollUpdates)
			polls.POST("/list", middleware.MaybeAuthenticate(tokens), pollHandler.List)
			polls.POST("", middleware.Authenticate(tokens), pollHandler.Create)
			polls.POST("/mine", middleware.Authenticate(tokens), pollHandler.ListMine)
			polls.POST("/:id/like", middleware.Authenticate(tokens), pollHandler.Like)
			polls.POST("/:id/dislike", middleware.Authenticate(tokens), pollHandler.Dislike)
			polls.DELETE("/:id", middleware.Authenticate(tokens), pollHandler.Delete)
		}

		votes := api.Group("/votes")
		{
			votes.POST("", middleware.Authenticate(tokens), limited, voteHandler.Cast)
			votes.GET("/poll/:id", middleware.Authenticate(tokens), voteHandler.MyVote)
		}
	}
}
