package router

import (
	"ckan-go/internal/config"
	"ckan-go/internal/handler"
	"ckan-go/internal/logic"
	"ckan-go/internal/middleware"
	"ckan-go/internal/repository"
	"ckan-go/internal/service"
	"ckan-go/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SetupRouter 设置路由
func SetupRouter(
	settings *config.Settings,
	jwtManager *utils.JWTManager,
	logger *logrus.Logger,
	db *gorm.DB,
	registry *logic.Registry,
) *gin.Engine {
	if settings.CKAN.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}
	utils.InitValidator()

	r := gin.New()

	// 全局中间件
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(settings.CKAN.CORS))
	r.Use(middleware.IdentityMiddleware(jwtManager))

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message":      "CKAN API",
			"version":      logic.Version,
			"site_id":      settings.CKAN.SiteID,
			"api_versions": []int{3},
		})
	})

	// 初始化Repository
	userRepo := repository.NewUserRepository(db)
	ratingRepo := repository.NewRatingRepository(db)

	// 初始化Service
	authService := service.NewAuthService(userRepo, jwtManager, settings)

	// 初始化Handler
	authHandler := handler.NewAuthHandler(authService)
	actionHandler := handler.NewActionHandler(registry, settings.CKAN.SiteURL)
	adminHandler := handler.NewAdminHandler(userRepo, ratingRepo)
	viewHandler := handler.NewViewHandler(registry)

	api := r.Group("/api")
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.GET("/me", middleware.RequireAuth(), authHandler.GetMe)

		// 动作API
		api.GET("/3/action/:name", actionHandler.Handle)
		api.POST("/3/action/:name", actionHandler.Handle)
		api.GET("/action/:name", actionHandler.Handle)
		api.POST("/action/:name", actionHandler.Handle)

		// 系统管理员
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAuth(), middleware.RequireSysadmin())
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
			admin.GET("/ratings", adminHandler.RatingStats)
		}
	}

	// 资源视图页面
	r.GET("/dataset/:id/resource/:resource_id/view/:view_id", viewHandler.Render)
	r.GET("/dataset/:id/resource/:resource_id/view/:view_id/edit", viewHandler.Edit)

	return r
}
