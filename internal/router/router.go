package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/bible-studies-api/internal/handler"
	"github.com/noah-isme/bible-studies-api/internal/middleware"
	"github.com/noah-isme/bible-studies-api/internal/service"
	"github.com/noah-isme/bible-studies-api/pkg/config"
	"github.com/noah-isme/bible-studies-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/bible-studies-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/bible-studies-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Lecturer *handler.LecturerHandler
	Class    *handler.ClassHandler
	Schedule *handler.ScheduleHandler
	Booking  *handler.BookingHandler
	Metrics  *handler.MetricsHandler
}

// Setup builds the gin engine with global middleware and all routes.
func Setup(cfg *config.Config, h Handlers, metrics *service.MetricsService, logr *zap.Logger) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	if logr == nil {
		logr = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics", "/health", "/ready"))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())
	{
		lecturers := api.Group("/lecturers")
		{
			lecturers.GET("", h.Lecturer.List)
			lecturers.GET("/:id", h.Lecturer.Get)
			lecturers.GET("/:id/availability", h.Lecturer.Availability)
		}

		api.GET("/classes", h.Class.List)

		schedules := api.Group("/schedules")
		{
			schedules.POST("", h.Schedule.Create)
			schedules.GET("/overview", h.Schedule.Overview)
			schedules.GET("/upcoming", h.Schedule.Upcoming)
			schedules.GET("/upcoming/export", h.Schedule.Export)
		}

		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.Booking.Open)
			bookings.GET("/:id", h.Booking.Get)
			bookings.PATCH("/:id", h.Booking.Update)
			bookings.POST("/:id/submit", h.Booking.Submit)
			bookings.DELETE("/:id", h.Booking.Cancel)
		}

		api.GET("/metrics/summary", h.Metrics.Summary)
	}

	return r
}
