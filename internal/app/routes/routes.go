package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acadsys/aulario/internal/app/controllers"
	"github.com/acadsys/aulario/internal/app/models"
	"github.com/acadsys/aulario/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	courseController *controllers.CourseController,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", authController.Logout)
		authenticated.GET("/auth/me", authController.Me)

		// Course reads are open to every authenticated role
		courses := authenticated.Group("/courses")
		{
			courses.GET("", courseController.GetCourses)
			courses.GET("/all", courseController.GetAllCourses)
			courses.GET("/:id", courseController.GetCourse)
			courses.GET("/:id/students", courseController.GetStudentsInCourse)

			// Admin-only course mutations
			coursesAdmin := courses.Group("")
			coursesAdmin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
			{
				coursesAdmin.POST("", courseController.CreateCourse)
				coursesAdmin.POST("/:id/students", courseController.AssignStudent)
				coursesAdmin.POST("/:id/seats", courseController.BulkAssignStudents)
				coursesAdmin.DELETE("/:id/students/:studentId", courseController.UnassignStudent)
				coursesAdmin.PUT("/:id/students/:studentId/mark", courseController.SetMark)
			}
		}

		// Admin-only user and person management
		admin := authenticated.Group("")
		admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
		{
			admin.POST("/users", userController.CreateUser)
			admin.GET("/users", userController.GetPersons)
			admin.PUT("/persons/:id", userController.UpdatePerson)
			admin.GET("/professors", userController.GetProfessors)
			admin.GET("/students/search", userController.SearchStudents)
		}

		// Self-service reads
		authenticated.GET("/students/me/courses",
			authMiddleware.RoleRequired(models.RoleStudent), courseController.MyCourses)
		authenticated.GET("/professors/me/courses",
			authMiddleware.RoleRequired(models.RoleProfessor), courseController.MyTaughtCourses)
	}
}
