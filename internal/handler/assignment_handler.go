package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/orbitlms/coursework-api/internal/dto"
	"github.com/orbitlms/coursework-api/internal/service"
	"github.com/orbitlms/coursework-api/internal/utils"
)

// AssignmentHandler wires the assignment ledger HTTP routes.
type AssignmentHandler struct {
	ledger service.Ledger
	logger zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(ledger service.Ledger, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		ledger: ledger,
		logger: logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints to the router group. Mutating
// routes pass through the teacher guard first.
func (h *AssignmentHandler) Register(router fiber.Router, teacherOnly fiber.Handler) {
	router.Get("", h.list)
	router.Post("", teacherOnly, h.create)
	router.Get("/overdue", h.overdue)
	router.Get("/:id", h.get)
	router.Post("/:id/close", teacherOnly, h.close)
	router.Post("/:id/attachments", teacherOnly, h.addAttachment)
	router.Get("/:id/submissions", h.submissions)
	router.Get("/:id/statistics", h.statistics)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	var filter dto.AssignmentFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	assignments, err := h.ledger.ListAssignments(c.Context(), filter)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.ledger.CreateAssignment(c.Context(), payload, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().
		Str("assignment_id", assignment.AssignmentID).
		Str("course_id", assignment.CourseID).
		Msg("assignment created")
	return utils.SendCreated(c, "assignment created", assignment)
}

func (h *AssignmentHandler) overdue(c *fiber.Ctx) error {
	assignments, err := h.ledger.OverdueAssignments(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "overdue assignments retrieved", assignments)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	assignment, err := h.ledger.GetAssignment(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

// close accepts unknown identifiers without complaint so that repeated
// close requests stay idempotent.
func (h *AssignmentHandler) close(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.ledger.Close(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().Str("assignment_id", id).Msg("assignment closed")
	return utils.SendSuccess(c, "assignment closed", fiber.Map{"assignment_id": id})
}

func (h *AssignmentHandler) addAttachment(c *fiber.Ctx) error {
	var payload dto.AddAttachmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.ledger.AddAttachment(c.Context(), c.Params("id"), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attachment added", assignment)
}

func (h *AssignmentHandler) submissions(c *fiber.Ctx) error {
	filter := dto.SubmissionFilter{AssignmentID: c.Params("id")}
	submissions, err := h.ledger.ListSubmissions(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *AssignmentHandler) statistics(c *fiber.Ctx) error {
	stats, err := h.ledger.Statistics(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment statistics retrieved", stats)
}

func (h *AssignmentHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrTeacherRequired):
		return utils.SendError(c, fiber.StatusForbidden, "operation requires a teacher account")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *AssignmentHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
