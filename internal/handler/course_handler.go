package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/orbitlms/coursework-api/internal/dto"
	"github.com/orbitlms/coursework-api/internal/models"
	"github.com/orbitlms/coursework-api/internal/service"
	"github.com/orbitlms/coursework-api/internal/utils"
)

// CourseHandler wires the course directory HTTP routes.
type CourseHandler struct {
	directory service.CourseDirectory
	logger    zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(directory service.CourseDirectory, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		directory: directory,
		logger:    logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches course endpoints to the router group. Only teachers
// may open new courses.
func (h *CourseHandler) Register(router fiber.Router, teacherOnly fiber.Handler) {
	router.Get("", h.list)
	router.Post("", teacherOnly, h.create)
	router.Get("/code/:code", h.findByCode)
	router.Get("/:id", h.get)
	router.Post("/:id/enrollments", h.enroll)
	router.Get("/:id/statistics", h.statistics)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	var filter dto.CourseFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	courses, err := h.directory.List(c.Context(), filter)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.directory.Create(c.Context(), payload, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().Str("course_id", course.CourseID).Msg("course created")
	return utils.SendCreated(c, "course created", course)
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	course, err := h.directory.Get(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) findByCode(c *fiber.Ctx) error {
	course, err := h.directory.FindByCode(c.Context(), c.Params("code"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "course retrieved", course)
}

// enroll lets a student join the course themselves, or a teacher enroll a
// named student.
func (h *CourseHandler) enroll(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if userRoleFromContext(c) == string(models.RoleTeacher) {
		var payload dto.EnrollStudentRequest
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
		if payload.StudentID != "" {
			studentID = payload.StudentID
		}
	}

	course, err := h.directory.Enroll(c.Context(), c.Params("id"), studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().
		Str("course_id", course.CourseID).
		Str("student_id", studentID).
		Msg("student enrolled")
	return utils.SendSuccess(c, "student enrolled", course)
}

func (h *CourseHandler) statistics(c *fiber.Ctx) error {
	stats, err := h.directory.Statistics(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "course statistics retrieved", stats)
}

func (h *CourseHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrTeacherRequired):
		return utils.SendError(c, fiber.StatusForbidden, "operation requires a teacher account")
	case errors.Is(err, service.ErrStudentRequired):
		return utils.SendError(c, fiber.StatusBadRequest, "operation requires a student account")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *CourseHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
