package http

import (
	"time"

	"schoolcampus/internal/auth"
	"schoolcampus/internal/config"
	"schoolcampus/internal/domain/models"
	"schoolcampus/internal/http/handlers"
	"schoolcampus/internal/http/middleware"
	"schoolcampus/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps carries everything the router wires together. main builds one after
// connecting the store; tests build one over the in-memory store.
type Deps struct {
	Env    config.Env
	Tokens *auth.Manager

	Users         *services.UserService
	Students      *services.StudentService
	Teachers      *services.TeacherService
	Organisations *services.OrganisationService
	Reports       services.ReportService

	// PingStore is nil when the store needs no connection check.
	PingStore func() error
}

func NewRouter(deps Deps) *gin.Engine {
	gin.SetMode(deps.Env.GinMode)
	handlers.SetExposeErrors(!deps.Env.IsProduction())

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Env.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	system := handlers.NewSystemHandler(deps.Env.AppEnv, deps.PingStore)
	r.GET("/health", system.Health)
	r.GET("/health/db", system.DBCheck)

	authn := middleware.Authenticate(deps.Tokens, deps.Users)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleManager)
	admin := middleware.RequireRoles(models.RoleAdmin)

	api := r.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh-token", authHandler.Refresh)
		authGroup.GET("/check-email", authHandler.CheckEmail)
		authGroup.GET("/me", authn, authHandler.Me)
		authGroup.POST("/change-password", authn, authHandler.ChangePassword)
	}

	users := handlers.NewUserHandler(deps.Users)
	userGroup := api.Group("/users", authn)
	{
		userGroup.POST("", admin, users.HandleCreate)
		userGroup.GET("", users.HandleGetAll)
		userGroup.GET("/search", users.HandleSearch)
		userGroup.GET("/stats", users.HandleGetStats)
		userGroup.GET("/count", users.HandleGetCount)
		userGroup.GET("/distinct/:field", users.HandleGetDistinct)
		userGroup.POST("/exists", users.HandleExists)
		userGroup.PUT("/bulk-update", admin, users.HandleBulkUpdate)
		userGroup.DELETE("/bulk-delete", admin, users.HandleBulkDelete)
		userGroup.GET("/:_id", users.HandleGetByID)
		userGroup.PUT("/:_id", admin, users.HandleUpdate)
		userGroup.PATCH("/:_id/toggle-status", admin, users.HandleToggleStatus)
		userGroup.DELETE("/:_id", admin, users.HandleDelete)
	}

	students := handlers.NewStudentHandler(deps.Students)
	studentGroup := api.Group("/students", authn)
	{
		studentGroup.POST("", staff, students.HandleCreate)
		studentGroup.GET("", students.HandleGetAll)
		studentGroup.GET("/search", students.HandleSearch)
		studentGroup.GET("/stats", students.HandleGetStats)
		studentGroup.GET("/count", students.HandleGetCount)
		studentGroup.GET("/distinct/:field", students.HandleGetDistinct)
		studentGroup.POST("/exists", students.HandleExists)
		studentGroup.PUT("/bulk-update", staff, students.HandleBulkUpdate)
		studentGroup.DELETE("/bulk-delete", staff, students.HandleBulkDelete)
		studentGroup.GET("/:_id", students.HandleGetByID)
		studentGroup.PUT("/:_id", staff, students.HandleUpdate)
		studentGroup.DELETE("/:_id", staff, students.HandleDelete)
		studentGroup.POST("/normalize-names", admin, students.HandleNormalizeNames)
	}

	teachers := handlers.NewTeacherHandler(deps.Teachers)
	teacherGroup := api.Group("/teachers", authn)
	{
		teacherGroup.POST("", staff, teachers.HandleCreate)
		teacherGroup.GET("", teachers.HandleGetAll)
		teacherGroup.GET("/search", teachers.HandleSearch)
		teacherGroup.GET("/stats", teachers.HandleGetStats)
		teacherGroup.GET("/count", teachers.HandleGetCount)
		teacherGroup.GET("/distinct/:field", teachers.HandleGetDistinct)
		teacherGroup.POST("/exists", teachers.HandleExists)
		teacherGroup.PUT("/bulk-update", staff, teachers.HandleBulkUpdate)
		teacherGroup.DELETE("/bulk-delete", staff, teachers.HandleBulkDelete)
		teacherGroup.GET("/:_id", teachers.HandleGetByID)
		teacherGroup.PUT("/:_id", staff, teachers.HandleUpdate)
		teacherGroup.DELETE("/:_id", staff, teachers.HandleDelete)
		teacherGroup.POST("/normalize-names", admin, teachers.HandleNormalizeNames)
	}

	organisations := handlers.NewOrganisationHandler(deps.Organisations)
	orgGroup := api.Group("/organisations", authn)
	{
		orgGroup.POST("", admin, organisations.HandleCreate)
		orgGroup.GET("", organisations.HandleGetAll)
		orgGroup.GET("/search", organisations.HandleSearch)
		orgGroup.GET("/stats", organisations.HandleGetStats)
		orgGroup.GET("/stats/types", organisations.HandleTypeDistribution)
		orgGroup.GET("/count", organisations.HandleGetCount)
		orgGroup.GET("/distinct/:field", organisations.HandleGetDistinct)
		orgGroup.POST("/exists", organisations.HandleExists)
		orgGroup.GET("/slug/:slug", organisations.HandleGetBySlug)
		orgGroup.PUT("/bulk-update", admin, organisations.HandleBulkUpdate)
		orgGroup.DELETE("/bulk-delete", admin, organisations.HandleBulkDelete)
		orgGroup.GET("/:_id", organisations.HandleGetByID)
		orgGroup.PUT("/:_id", admin, organisations.HandleUpdate)
		orgGroup.DELETE("/:_id", admin, organisations.HandleDelete)
	}

	reports := handlers.NewReportHandler(deps.Reports)
	reportGroup := api.Group("/reports", authn, staff)
	{
		reportGroup.GET("/overview.pdf", reports.Overview)
	}

	return r
}
