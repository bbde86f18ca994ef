package app

import (
	"learnhub_backend/docs"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/middleware"
	"learnhub_backend/internal/model"
	"learnhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 课程目录允许游客浏览，登录身份影响可见范围
		public.GET("/courses", middleware.TryAuthMiddleware(cfg), c.course.ListCourses)
		public.GET("/courses/:id", middleware.TryAuthMiddleware(cfg), c.course.GetCourse)
		public.GET("/courses/:id/lessons", middleware.TryAuthMiddleware(cfg), c.course.ListLessons)
		public.GET("/dashboard/courses/top", c.dashboard.GetTopCourses)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		// 仪表盘
		authGroup.GET("/dashboard", c.dashboard.GetGlobalStats)
		authGroup.GET("/dashboard/me", c.dashboard.GetStudentStats)
		authGroup.GET("/dashboard/courses/:courseId", c.dashboard.GetCourseStats)
		authGroup.GET("/dashboard/streak", c.dashboard.GetLearningStreak)

		// 选课与学习
		authGroup.POST("/courses/:id/enroll", c.enrollment.Enroll)
		authGroup.DELETE("/courses/:id/enroll", c.enrollment.Withdraw)
		authGroup.POST("/courses/:id/complete", c.enrollment.Complete)
		authGroup.GET("/enrollments", c.enrollment.ListMine)
		authGroup.GET("/courses/:id/progress", c.learning.GetCourseProgress)
		authGroup.POST("/lessons/:lessonId/start", c.learning.StartLesson)
		authGroup.POST("/lessons/:lessonId/complete", c.learning.CompleteLesson)
		authGroup.POST("/lessons/:lessonId/quiz", c.learning.SubmitQuiz)

		// 教师相关接口
		teacher := authGroup.Group("/teacher")
		teacher.Use(middleware.RoleMiddleware(model.Teacher))
		{
			teacher.POST("/courses", c.course.CreateCourse)
			teacher.PUT("/courses/:id", c.course.UpdateCourse)
			teacher.POST("/courses/:id/lessons", c.course.AddLesson)
			teacher.PUT("/lessons/:lessonId", c.course.UpdateLesson)
			teacher.DELETE("/lessons/:lessonId", c.course.DeleteLesson)
		}

		// 管理员相关接口
		admin := authGroup.Group("/admin")
		admin.Use(middleware.RoleMiddleware(model.Admin))
		{
			admin.DELETE("/courses/:id", c.course.DeleteCourse)
			admin.POST("/cache/clear", c.dashboard.ClearCache)
		}
	}
}
