package app

import (
	"lms_backend/docs"
	"lms_backend/internal/config"
	"lms_backend/internal/middleware"
	"lms_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// public routes
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/courses", c.course.ListCourses)
		public.GET("/courses/:id", c.course.GetCourse)
	}

	// authenticated routes
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		authGroup.GET("/enrollments", c.enrollment.MyEnrollments)
		authGroup.POST("/courses/:id/enroll", c.enrollment.Enroll)

		authGroup.GET("/courses/:id/progress", c.progress.GetProgress)
		authGroup.GET("/courses/:id/grades", c.progress.GetGrades)
		authGroup.PUT("/courses/:id/lessons/:lessonId/progress", c.progress.UpdateLessonProgress)
		authGroup.POST("/courses/:id/lessons/:lessonId/complete", c.progress.CompleteLesson)

		authGroup.GET("/courses/:id/quizzes", c.quiz.GetQuizzes)
		authGroup.POST("/courses/:id/quizzes/:quizId/submit", c.quiz.SubmitQuiz)
		authGroup.GET("/courses/:id/quizzes/:quizId/attempts", c.quiz.GetAttempts)
	}
}
