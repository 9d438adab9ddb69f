package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/sharath018/event-calendar-backend/config"
	_ "github.com/sharath018/event-calendar-backend/docs"
	"github.com/sharath018/event-calendar-backend/internal/auditlog"
	"github.com/sharath018/event-calendar-backend/internal/calendar"
	"github.com/sharath018/event-calendar-backend/internal/eventstore"
	"github.com/sharath018/event-calendar-backend/internal/notification"
	"github.com/sharath018/event-calendar-backend/internal/reports"
	"github.com/sharath018/event-calendar-backend/middleware"
)

// Deps is everything the routes are built from. Audit is nil when no
// database is configured.
type Deps struct {
	Config        *config.Config
	Store         *eventstore.Store
	Sessions      *calendar.Sessions
	Notifications *notification.Service
	Audit         auditlog.Service
	Redis         *redis.Client
}

func Setup(r *gin.Engine, deps Deps) {
	cfg := deps.Config

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "OK",
			"loading":    deps.Store.Loading(),
			"events":     len(deps.Store.Events()),
			"backend":    cfg.CollectionBackend,
			"audit":      deps.Audit != nil,
			"checked_at": time.Now().UTC(),
		})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	sessionMW := middleware.SessionMiddleware(cfg.SecureCookies)
	pageHandler := calendar.NewHandler(deps.Sessions)

	r.GET("/", middleware.AuditMiddleware(), sessionMW, pageHandler.Index)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, deps.Redis))
	api.Use(middleware.AuditMiddleware()) // Audit middleware to capture IP

	// ========== Events ==========
	eventHandler := eventstore.NewHandler(deps.Store, reports.NewEventExporter())
	eventRoutes := api.Group("/events")
	{
		eventRoutes.GET("", eventHandler.ListEvents)
		eventRoutes.GET("/stream", eventHandler.Stream)
		eventRoutes.GET("/export", eventHandler.Export)
		eventRoutes.POST("", eventHandler.CreateEvent)
		eventRoutes.GET("/:id", eventHandler.GetEvent)
		eventRoutes.PATCH("/:id", eventHandler.UpdateEvent)
		eventRoutes.DELETE("/:id", eventHandler.DeleteEvent)
	}

	// ========== Calendar Page ==========
	pageRoutes := api.Group("/page")
	pageRoutes.Use(sessionMW)
	{
		pageRoutes.GET("", pageHandler.GetView)
		pageRoutes.POST("/selection", pageHandler.SelectRange)
		pageRoutes.PUT("/form", pageHandler.SetForm)
		pageRoutes.POST("/save", pageHandler.Save)
		pageRoutes.POST("/close", pageHandler.Close)
		pageRoutes.DELETE("/notice", pageHandler.DismissNotice)
		pageRoutes.PUT("/preferences", pageHandler.SetPreferences)
		pageRoutes.POST("/events/:id/open", pageHandler.OpenEvent)
		pageRoutes.POST("/events/:id/drop", pageHandler.DropEvent)
		pageRoutes.POST("/events/:id/expand", pageHandler.ToggleExpanded)
		pageRoutes.POST("/events/:id/menu", pageHandler.ToggleMenu)
		pageRoutes.POST("/events/:id/delete", pageHandler.Delete)
	}

	// ========== Notifications ==========
	notificationHandler := notification.NewHandler(deps.Notifications)
	api.GET("/notifications/recent", notificationHandler.GetRecent)

	// ========== Audit Logs ==========
	if deps.Audit != nil {
		auditHandler := auditlog.NewHandler(deps.Audit)
		auditRoutes := api.Group("/auditlogs")
		{
			auditRoutes.GET("", auditHandler.GetAuditLogs)
			auditRoutes.GET("/stats", auditHandler.GetAuditLogStats)
			auditRoutes.GET("/:id", auditHandler.GetAuditLogByID)
		}
	}
}
