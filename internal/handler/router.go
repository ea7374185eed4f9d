package handler

import (
	"net/http"
	"time"

	"acquisitions/internal/middleware"
	"acquisitions/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterConfig collects everything NewRouter wires together
type RouterConfig struct {
	Auth           *AuthHandler
	Tokens         *utils.JWTUtil
	Logger         zerolog.Logger
	Limiter        middleware.Limiter // nil disables rate limiting
	CORSOrigins    []string
	RequestTimeout time.Duration
	StartedAt      time.Time
}

// NewRouter builds the HTTP surface of the service
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(cfg.Logger),
		middleware.ErrorHandler(),
		middleware.Timeout(cfg.RequestTimeout),
	)

	if len(cfg.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.CORSOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
		corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
		router.Use(cors.New(corsConfig))
	}

	startedAt := cfg.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello from acquisitions!")
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			"uptime":    time.Since(startedAt).Seconds(),
		})
	})

	apiGroup := router.Group("/api")
	apiGroup.GET("", func(c *gin.Context) {
		c.String(http.StatusOK, "Acquisition API is running")
	})

	var limit []gin.HandlerFunc
	if cfg.Limiter != nil {
		limit = append(limit, middleware.RateLimit(cfg.Limiter))
	}
	cfg.Auth.RegisterAuthRoutes(apiGroup, middleware.JWTAuthMiddleware(cfg.Tokens), limit...)

	return router
}
