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

// SubmissionHandler wires the submission HTTP routes.
type SubmissionHandler struct {
	ledger service.Ledger
	logger zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(ledger service.Ledger, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		ledger: ledger,
		logger: logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches submission endpoints to the router group. Students
// submit, teachers grade.
func (h *SubmissionHandler) Register(router fiber.Router, studentOnly, teacherOnly fiber.Handler) {
	router.Get("", h.list)
	router.Post("", studentOnly, h.submit)
	router.Get("/:id", h.get)
	router.Post("/:id/grade", teacherOnly, h.grade)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	var filter dto.SubmissionFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	submissions, err := h.ledger.ListSubmissions(c.Context(), filter)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.ledger.Submit(c.Context(), payload, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().
		Str("submission_id", submission.SubmissionID).
		Str("assignment_id", submission.AssignmentID).
		Bool("late", submission.LateSubmission).
		Msg("submission recorded")
	return utils.SendCreated(c, "submission recorded", submission)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	submission, err := h.ledger.GetSubmission(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *SubmissionHandler) grade(c *fiber.Ctx) error {
	var payload dto.GradeSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.ledger.Grade(c.Context(), c.Params("id"), payload, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().
		Str("submission_id", submission.SubmissionID).
		Msg("submission graded")
	return utils.SendSuccess(c, "submission graded", submission)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrAssignmentNotActive):
		return utils.SendError(c, fiber.StatusConflict, "assignment is not accepting submissions")
	case errors.Is(err, service.ErrMarksExceedMax):
		return utils.SendError(c, fiber.StatusBadRequest, "marks cannot exceed maximum marks")
	case errors.Is(err, service.ErrMarksNegative):
		return utils.SendError(c, fiber.StatusBadRequest, "marks cannot be negative")
	case errors.Is(err, service.ErrEmptyContent):
		return utils.SendError(c, fiber.StatusBadRequest, "submission content is empty")
	case errors.Is(err, service.ErrStudentRequired):
		return utils.SendError(c, fiber.StatusForbidden, "operation requires a student account")
	case errors.Is(err, service.ErrTeacherRequired):
		return utils.SendError(c, fiber.StatusForbidden, "operation requires a teacher account")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *SubmissionHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
