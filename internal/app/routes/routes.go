package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/osasdev/osas/internal/app/controllers"
	"github.com/osasdev/osas/internal/app/models"
	"github.com/osasdev/osas/internal/app/models/dto"
	"github.com/osasdev/osas/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	dashboardController *controllers.DashboardController,
	studentController *controllers.StudentController,
	departmentController *controllers.DepartmentController,
	sectionController *controllers.SectionController,
	violationController *controllers.ViolationController,
	reportController *controllers.ReportController,
	announcementController *controllers.AnnouncementController,
	settingController *controllers.SettingController,
	authMiddleware *middleware.AuthMiddleware,
) {
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
		authenticated.GET("/dashboard", dashboardController.GetDashboard)

		// User management; listing and account changes are admin-only
		users := authenticated.Group("/users")
		{
			users.GET("/me", authController.GetProfile)

			usersAdminProtected := users.Group("")
			usersAdminProtected.Use(authMiddleware.RoleRequired(models.RoleAdmin))
			{
				usersAdminProtected.GET("/admins", authController.ListAdmins)
				usersAdminProtected.POST("/admins", authController.AddAdmin)
				usersAdminProtected.POST("/:id/deactivate", authController.DeactivateUser)
				usersAdminProtected.POST("/:id/activate", authController.ActivateUser)
			}
		}

		// Student routes; staff can read, admins manage records
		students := authenticated.Group("/students")
		{
			students.GET("", studentController.ListStudents)
			students.GET("/:id", studentController.GetStudentByID)
			students.GET("/by-student-id/:studentId", studentController.GetStudentByStudentID)
			students.GET("/by-student-id/:studentId/violation-level", studentController.GetStudentViolationLevel)

			studentsAdminProtected := students.Group("")
			studentsAdminProtected.Use(authMiddleware.RoleRequired(models.RoleAdmin))
			{
				studentsAdminProtected.POST("", studentController.CreateStudent)
				studentsAdminProtected.PUT("/:id", studentController.UpdateStudent)
				studentsAdminProtected.POST("/:id/archive", studentController.ArchiveStudent)
				studentsAdminProtected.POST("/:id/restore", studentController.RestoreStudent)
				studentsAdminProtected.POST("/import", studentController.ImportStudents)
			}
		}

		// Department routes
		departments := authenticated.Group("/departments")
		{
			departments.GET("", departmentController.ListDepartments)
			departments.GET("/:id", departmentController.GetDepartmentByID)

			departmentsAdminProtected := departments.Group("")
			departmentsAdminProtected.Use(authMiddleware.RoleRequired(models.RoleAdmin))
			{
				departmentsAdminProtected.POST("", departmentController.CreateDepartment)
				departmentsAdminProtected.PUT("/:id", departmentController.UpdateDepartment)
				departmentsAdminProtected.POST("/:id/archive", departmentController.ArchiveDepartment)
				departmentsAdminProtected.POST("/:id/restore", departmentController.RestoreDepartment)
			}
		}

		// Section routes
		sections := authenticated.Group("/sections")
		{
			sections.GET("", sectionController.ListSections)
			sections.GET("/:id", sectionController.GetSectionByID)

			sectionsAdminProtected := sections.Group("")
			sectionsAdminProtected.Use(authMiddleware.RoleRequired(models.RoleAdmin))
			{
				sectionsAdminProtected.POST("", sectionController.CreateSection)
				sectionsAdminProtected.PUT("/:id", sectionController.UpdateSection)
				sectionsAdminProtected.POST("/:id/archive", sectionController.ArchiveSection)
				sectionsAdminProtected.POST("/:id/restore", sectionController.RestoreSection)
			}
		}

		// Violation routes; both roles report and read, archive is admin-only
		violations := authenticated.Group("/violations")
		{
			violations.GET("", violationController.ListViolations)
			violations.GET("/types", violationController.ListViolationTypes)
			violations.GET("/levels", violationController.ListViolationLevels)
			violations.GET("/archive/last", violationController.GetLastArchiveRun)
			violations.GET("/:id", violationController.GetViolationByID)
			violations.POST("", violationController.CreateViolation)
			violations.PUT("/:id/status", violationController.UpdateViolationStatus)

			violationsAdminProtected := violations.Group("")
			violationsAdminProtected.Use(authMiddleware.RoleRequired(models.RoleAdmin))
			{
				violationsAdminProtected.POST("/archive", violationController.RunArchive)
			}
		}

		// Report routes; generation is admin-only
		reports := authenticated.Group("/reports")
		{
			reports.GET("", reportController.ListReports)
			reports.GET("/:reportId", reportController.GetReport)

			reportsAdminProtected := reports.Group("")
			reportsAdminProtected.Use(authMiddleware.RoleRequired(models.RoleAdmin))
			{
				reportsAdminProtected.POST("/generate", reportController.GenerateReports)
			}
		}

		// Announcement routes
		announcements := authenticated.Group("/announcements")
		{
			announcements.GET("", announcementController.ListAnnouncements)
			announcements.GET("/:id", announcementController.GetAnnouncementByID)

			announcementsAdminProtected := announcements.Group("")
			announcementsAdminProtected.Use(authMiddleware.RoleRequired(models.RoleAdmin))
			{
				announcementsAdminProtected.POST("", announcementController.CreateAnnouncement)
				announcementsAdminProtected.PUT("/:id", announcementController.UpdateAnnouncement)
				announcementsAdminProtected.POST("/:id/archive", announcementController.ArchiveAnnouncement)
				announcementsAdminProtected.POST("/:id/restore", announcementController.RestoreAnnouncement)
				announcementsAdminProtected.DELETE("/:id", announcementController.DeleteAnnouncement)
			}
		}

		// Setting routes; writes are admin-only
		settings := authenticated.Group("/settings")
		{
			settings.GET("", settingController.ListSettings)
			settings.GET("/:key", settingController.GetSetting)

			settingsAdminProtected := settings.Group("")
			settingsAdminProtected.Use(authMiddleware.RoleRequired(models.RoleAdmin))
			{
				settingsAdminProtected.PUT("", settingController.UpsertSetting)
			}
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Data: gin.H{"status": "ok"},
		})
	})

	// Swagger routes are set up in bootstrap.go already
}
