package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/modusklar/modusklar/config"
	"github.com/modusklar/modusklar/controllers"
	"github.com/modusklar/modusklar/middleware"
	"github.com/modusklar/modusklar/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(utils.GinLogger())
	r.Use(utils.GinRecovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Stored recordings are public-URL objects, same as the original store.
	r.Static("/static/videos", cfg.UploadDir)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	dashboardController := controllers.NewDashboardController(db)
	videoController := controllers.NewVideoController(db)
	adminController := controllers.NewAdminController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())
	protected.GET("/dashboard", dashboardController.Dashboard)
	protected.POST("/videos", videoController.Submit)

	admin := api.Group("/admin")
	admin.POST("/login", middleware.RateLimitMiddleware(), adminController.Login)

	adminProtected := admin.Group("")
	adminProtected.Use(middleware.AdminRequired(db))
	adminProtected.GET("/users", adminController.ListUsers)
	adminProtected.GET("/videos", adminController.ListVideos)
	adminProtected.POST("/videos/:id/decision", adminController.Decide)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
