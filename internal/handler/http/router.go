package http

import (
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	tollbooth_gin "github.com/didip/tollbooth_gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Deokive/BE-sub001/internal/handler/http/middleware"
	"github.com/Deokive/BE-sub001/internal/infrastructure/config"
)

type Router struct {
	interactionHandler *InteractionHandler
	adminHandler       *AdminHandler
	healthHandler      *HealthHandler
	cfg                *config.Config
}

func NewRouter(interactionHandler *InteractionHandler, adminHandler *AdminHandler, healthHandler *HealthHandler, cfg *config.Config) *Router {
	return &Router{
		interactionHandler: interactionHandler,
		adminHandler:       adminHandler,
		healthHandler:      healthHandler,
		cfg:                cfg,
	}
}

func (r *Router) SetupRoutes(router *gin.Engine) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	// rate limiter configuration
	lmt := tollbooth.NewLimiter(r.cfg.RateLimitPerSecond, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
	lmt.SetIPLookups([]string{"RemoteAddr", "X-Forwarded-For", "X-Real-IP"})
	lmt.SetMessage("Too many requests, please try again later.")
	router.Use(tollbooth_gin.LimitHandler(lmt))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", r.healthHandler.HealthzHandler)

	// API v1 routes
	v1 := router.Group("/api/v1")

	// Like routes require an authenticated actor
	likes := v1.Group("/:domain/:id")
	likes.Use(middleware.AuthMiddleWare(r.cfg.JWTSecret))
	{
		likes.POST("/like", r.interactionHandler.ToggleLikeHandler)
		likes.GET("/like", r.interactionHandler.GetLikeStateHandler)
	}

	// Public routes (no authentication required)
	public := v1.Group("/:domain/:id")
	{
		public.GET("/like-count", r.interactionHandler.GetLikeCountHandler)
		public.GET("/stats", r.interactionHandler.GetStatsHandler)
	}

	// View registration accepts anonymous viewers, keyed by client IP
	views := v1.Group("/:domain/:id")
	views.Use(middleware.OptionalAuthMiddleWare(r.cfg.JWTSecret))
	{
		views.POST("/view", r.interactionHandler.RegisterViewHandler)
	}

	// Operator routes
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleWare(r.cfg.JWTSecret))
	{
		admin.POST("/jobs/:job/:domain/run", r.adminHandler.TriggerJobHandler)
	}
}
