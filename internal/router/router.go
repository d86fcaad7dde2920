package router

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/testtrack-dev/testtrack/internal/handlers"
	"github.com/testtrack-dev/testtrack/internal/middleware"
	"github.com/testtrack-dev/testtrack/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	secret := os.Getenv("SESSION_SECRET")

	if secret == "" {
		secret = "change-me-in-production"
	}

	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("testtrack_session", store))

	r.GET("/health", handlers.HealthCheck)

	r.GET("/login", handlers.ShowLogin)
	r.POST("/login", handlers.Login)
	r.GET("/register", handlers.ShowRegister)
	r.POST("/register", handlers.Register)

	authed := r.Group("", middleware.RequireAuth())
	{
		authed.GET("/", handlers.Index)
		authed.GET("/logout", handlers.Logout)
		authed.GET("/me", handlers.Me)

		authed.GET("/projects", handlers.ListProjects)
		authed.GET("/projects/new", handlers.ShowProjectForm)
		authed.POST("/projects/new", handlers.CreateProject)
		authed.GET("/projects/:id/edit", handlers.ShowEditProject)
		authed.POST("/projects/:id/edit", handlers.EditProject)
		authed.POST("/projects/:id/delete", middleware.RequireAdmin(), handlers.DeleteProject)

		authed.GET("/projects/:id/testcases", handlers.ListTestCases)
		authed.GET("/projects/:id/testcases/new", handlers.ShowTestCaseForm)
		authed.POST("/projects/:id/testcases/new", handlers.CreateTestCase)
		authed.GET("/testcases/:id/edit", handlers.ShowEditTestCase)
		authed.POST("/testcases/:id/edit", handlers.EditTestCase)
		authed.POST("/testcases/:id/delete", handlers.DeleteTestCase)

		authed.GET("/projects/:id/defects", handlers.ListDefects)
		authed.GET("/projects/:id/defects/new", handlers.ShowDefectForm)
		authed.POST("/projects/:id/defects/new", handlers.CreateDefect)
		authed.GET("/defects/:id/edit", handlers.ShowEditDefect)
		authed.POST("/defects/:id/edit", handlers.EditDefect)
		authed.POST("/defects/:id/delete", handlers.DeleteDefect)
	}

	return r
}
