package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/orbitlms/coursework-api/internal/config"
	"github.com/orbitlms/coursework-api/internal/handler"
	"github.com/orbitlms/coursework-api/internal/middleware"
	"github.com/orbitlms/coursework-api/internal/models"
	"github.com/orbitlms/coursework-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	UserHandler       *handler.UserHandler
	CourseHandler     *handler.CourseHandler
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	teacherOnly := middleware.RequireRole(string(models.RoleTeacher))
	studentOnly := middleware.RequireRole(string(models.RoleStudent))

	if deps.UserHandler != nil {
		// Registration stays outside the JWT guard; fiber group middleware
		// matches by prefix, so public routes need their own one.
		deps.UserHandler.RegisterPublic(api.Group("/register"))

		accounts := api.Group("/users", jwtMiddleware)
		deps.UserHandler.Register(accounts)
	}

	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses, teacherOnly)
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments, teacherOnly)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions, studentOnly, teacherOnly)
	}
}
