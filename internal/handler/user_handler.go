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

// UserHandler wires the account registry HTTP routes.
type UserHandler struct {
	registry service.UserRegistry
	logger   zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(registry service.UserRegistry, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		registry: registry,
		logger:   logger.With().Str("component", "user_handler").Logger(),
	}
}

// RegisterPublic attaches the registration endpoints, which do not require
// authentication and therefore live outside the JWT-guarded prefix.
func (h *UserHandler) RegisterPublic(router fiber.Router) {
	router.Post("/students", h.registerStudent)
	router.Post("/teachers", h.registerTeacher)
}

// Register attaches the authenticated account endpoints.
func (h *UserHandler) Register(router fiber.Router) {
	router.Get("/me", h.me)
	router.Post("/me/verify-email", h.verifyEmail)
	router.Delete("/me", h.deactivate)
	router.Get("/:id", h.get)
}

func (h *UserHandler) registerStudent(c *fiber.Ctx) error {
	var payload dto.RegisterStudentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.registry.RegisterStudent(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().Str("user_id", user.UserID).Msg("student registered")
	return utils.SendCreated(c, "student registered", user)
}

func (h *UserHandler) registerTeacher(c *fiber.Ctx) error {
	var payload dto.RegisterTeacherRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.registry.RegisterTeacher(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().Str("user_id", user.UserID).Msg("teacher registered")
	return utils.SendCreated(c, "teacher registered", user)
}

func (h *UserHandler) me(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	user, err := h.registry.Get(c.Context(), userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "account retrieved", user)
}

func (h *UserHandler) verifyEmail(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.VerifyEmailRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.registry.MarkEmailVerified(c.Context(), userID, payload.Code)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "email verified", user)
}

func (h *UserHandler) deactivate(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	if err := h.registry.Deactivate(c.Context(), userID); err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().Str("user_id", userID).Msg("account deactivated")
	return utils.SendSuccess(c, "account deactivated", fiber.Map{"user_id": userID})
}

func (h *UserHandler) get(c *fiber.Ctx) error {
	user, err := h.registry.Get(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "user retrieved", user)
}

func (h *UserHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrEmailTaken):
		return utils.SendError(c, fiber.StatusConflict, "email already registered")
	case errors.Is(err, service.ErrVerificationCodeMismatch):
		return utils.SendError(c, fiber.StatusBadRequest, "verification code does not match")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *UserHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
