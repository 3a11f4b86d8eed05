package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/driving-lesson-api/internal/middleware"
	"github.com/noah-isme/driving-lesson-api/internal/models"
	"github.com/noah-isme/driving-lesson-api/internal/service"
	"github.com/noah-isme/driving-lesson-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/driving-lesson-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/driving-lesson-api/pkg/middleware/requestid"
)

// RouterConfig carries the handlers and cross-cutting services the HTTP surface is built from.
// Nil handlers leave their routes unregistered.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Tokens         middleware.TokenValidator
	Instructors    middleware.InstructorResolver

	Health       *MetricsHandler
	Directory    *InstructorHandler
	Availability *AvailabilityHandler
	Bookings     *BookingHandler
	Geocode      *GeocodeHandler
	Admin        *AdminHandler
}

// NewRouter assembles the gin engine.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))

	if cfg.Health != nil {
		r.GET("/health", cfg.Health.Health)
		r.GET("/ready", cfg.Health.Ready)
		if cfg.Metrics != nil {
			r.GET("/metrics", cfg.Health.Prometheus)
		}
	}
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta(), middleware.JWT(cfg.Tokens))

	if cfg.Directory != nil {
		instructors := api.Group("/instructors")
		instructors.GET("/nearby", cfg.Directory.Nearby)
		instructors.GET("/:id", cfg.Directory.Get)
		instructors.GET("/:id/slots", cfg.Directory.Slots)
		instructors.GET("/:id/calendar", cfg.Directory.Calendar)
	}

	if cfg.Availability != nil {
		self := api.Group("/instructors/me",
			middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin),
			middleware.InstructorSelf(cfg.Instructors),
		)
		self.GET("/availability", cfg.Availability.GetWeekly)
		self.PUT("/availability", middleware.Audit(cfg.Logger, "set_weekly_availability", "availability"), cfg.Availability.SetWeekly)
		self.GET("/exceptions", cfg.Availability.ListExceptions)
		self.POST("/exceptions", middleware.Audit(cfg.Logger, "create_exception", "block_exception"), cfg.Availability.CreateException)
		self.DELETE("/exceptions/:id", middleware.Audit(cfg.Logger, "delete_exception", "block_exception"), cfg.Availability.DeleteException)
	}

	if cfg.Bookings != nil {
		bookings := api.Group("/bookings")
		learner := middleware.RequireRoles(models.RoleLearner)
		bookings.POST("/quote", cfg.Bookings.Quote)
		bookings.POST("/checkout", learner, cfg.Bookings.Checkout)
		bookings.POST("/confirm", learner, middleware.Audit(cfg.Logger, "confirm_booking", "booking"), cfg.Bookings.Confirm)
		bookings.GET("", cfg.Bookings.List)
		bookings.GET("/:id", cfg.Bookings.Get)
		bookings.GET("/:id/schedule", cfg.Bookings.Schedule)
		bookings.POST("/:id/cancel", middleware.Audit(cfg.Logger, "cancel_booking", "booking"), cfg.Bookings.Cancel)
	}

	if cfg.Geocode != nil {
		api.GET("/geocode/reverse", cfg.Geocode.Reverse)
	}

	if cfg.Admin != nil {
		admin := api.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
		admin.GET("/system", cfg.Admin.System)
		if cfg.Admin.tables != nil {
			admin.GET("/tables", cfg.Admin.Tables)
			admin.GET("/tables/:table", cfg.Admin.Query)
			admin.POST("/tables/:table", middleware.Audit(cfg.Logger, "insert_row", "admin_table"), cfg.Admin.Insert)
			admin.PUT("/tables/:table", middleware.Audit(cfg.Logger, "upsert_rows", "admin_table"), cfg.Admin.Upsert)
		}
	}

	return r
}
