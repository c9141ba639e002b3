package app

import (
	"math_quest_backend/docs"
	"math_quest_backend/internal/config"
	"math_quest_backend/internal/middleware"
	"math_quest_backend/internal/model"
	"math_quest_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 访客模式
	a.registerGuestRoutes(router, c)

	// 3. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		a.registerStudentRoutes(authGroup, c)
	}

	// 4. 管理员相关接口
	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/curriculum", c.concept.Curriculum)
	}
}

func (a *App) registerGuestRoutes(router *gin.Engine, c *controllers) {
	guest := router.Group("/api/guest")
	{
		guest.GET("/concepts", c.guest.Concepts)
		guest.GET("/concepts/:slug", c.guest.ConceptDetail)
		guest.GET("/practice/:conceptId", c.guest.Practice)
		guest.POST("/practice/submit/:problemId", c.guest.Submit)
	}
}

func (a *App) registerStudentRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/profile", c.auth.GetProfile)
	api.GET("/dashboard", c.progress.Dashboard)
	api.GET("/leaderboard", c.progress.Leaderboard)

	concepts := api.Group("/concepts")
	{
		concepts.GET("", c.concept.List)
		concepts.GET("/:slug", c.concept.Detail)
		concepts.GET("/:slug/problems", c.concept.Problems)
		concepts.POST("/:slug/complete", c.concept.Complete)
		concepts.POST("/:slug/progress", c.concept.UpdateProgress)
	}

	practice := api.Group("/practice")
	{
		practice.GET("/problems/:id", c.practice.GetProblem)
		practice.POST("/submit/:problemId", c.practice.Submit)
		practice.GET("/quiz/:conceptId", c.practice.Quiz)
		practice.POST("/quiz/submit", c.practice.SubmitQuiz)
		practice.GET("/history", c.practice.History)
	}

	progress := api.Group("/progress")
	{
		progress.GET("", c.progress.Overview)
		progress.GET("/concepts/:id", c.progress.ConceptProgress)
		progress.GET("/stats", c.progress.Stats)
		progress.GET("/achievements", c.progress.Achievements)
		progress.GET("/chart-data", c.progress.ChartData)
		progress.GET("/export", c.progress.Export)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg.JWT.Secret), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/concepts/:slug/illustration", c.admin.UploadIllustration)
		admin.POST("/curriculum/reload", c.admin.ReloadCurriculum)
		admin.PUT("/users/role", c.admin.UpdateUserRole)
	}
}
