package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/orbitlms/coursework-api/internal/dto"
	"github.com/orbitlms/coursework-api/internal/models"
)

// ErrUserNotFound indicates an unknown user ID or email was supplied.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken indicates the email already belongs to an active account.
var ErrEmailTaken = errors.New("email already registered")

// ErrVerificationCodeMismatch indicates the supplied one-time code is wrong.
var ErrVerificationCodeMismatch = errors.New("verification code does not match")

// ErrTeacherRequired indicates the operation needs a teacher account.
var ErrTeacherRequired = errors.New("operation requires a teacher account")

// ErrStudentRequired indicates the operation needs a student account.
var ErrStudentRequired = errors.New("operation requires a student account")

// UserSource resolves user records for other services.
type UserSource interface {
	Resolve(ctx context.Context, userID string) (models.User, error)
}

// UserRegistry owns user accounts. State is session scoped, like the course
// directory; identity verification itself happens outside the core.
type UserRegistry interface {
	UserSource
	RegisterStudent(ctx context.Context, payload dto.RegisterStudentRequest) (dto.UserResponse, error)
	RegisterTeacher(ctx context.Context, payload dto.RegisterTeacherRequest) (dto.UserResponse, error)
	Get(ctx context.Context, userID string) (dto.UserResponse, error)
	FindByEmail(ctx context.Context, email string) (dto.UserResponse, error)
	MarkEmailVerified(ctx context.Context, userID, code string) (dto.UserResponse, error)
	Deactivate(ctx context.Context, userID string) error
}

type userRegistry struct {
	mu         sync.RWMutex
	users      map[string]models.User
	emailIndex map[string]string
	counter    int

	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewUserRegistry constructs an empty registry.
func NewUserRegistry(validate *validator.Validate, logger zerolog.Logger) UserRegistry {
	return &userRegistry{
		users:      make(map[string]models.User),
		emailIndex: make(map[string]string),
		counter:    1,
		validator:  validate,
		logger:     logger.With().Str("component", "user_registry").Logger(),
		now:        time.Now,
	}
}

func (r *userRegistry) RegisterStudent(ctx context.Context, payload dto.RegisterStudentRequest) (dto.UserResponse, error) {
	if err := r.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Name:  strings.TrimSpace(payload.Name),
		Email: strings.TrimSpace(payload.Email),
		Role:  models.RoleStudent,
		Student: &models.StudentProfile{
			StudentID: payload.StudentID,
			Program:   payload.Program,
			Semester:  payload.Semester,
		},
	}

	return r.register(user)
}

func (r *userRegistry) RegisterTeacher(ctx context.Context, payload dto.RegisterTeacherRequest) (dto.UserResponse, error) {
	if err := r.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Name:  strings.TrimSpace(payload.Name),
		Email: strings.TrimSpace(payload.Email),
		Role:  models.RoleTeacher,
		Teacher: &models.TeacherProfile{
			Department: payload.Department,
			EmployeeID: payload.EmployeeID,
		},
	}

	return r.register(user)
}

func (r *userRegistry) register(user models.User) (dto.UserResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	emailKey := strings.ToLower(user.Email)
	if _, exists := r.emailIndex[emailKey]; exists {
		return dto.UserResponse{}, ErrEmailTaken
	}

	user.UserID = newUserID(r.counter)
	r.counter++
	user.CreatedAt = r.now()
	user.IsActive = true
	user.EmailVerificationCode = uuid.NewString()

	r.users[user.UserID] = user
	r.emailIndex[emailKey] = user.UserID

	r.logger.Info().
		Str("user_id", user.UserID).
		Str("role", string(user.Role)).
		Msg("user registered")

	return dto.NewUserResponse(user), nil
}

func (r *userRegistry) Get(ctx context.Context, userID string) (dto.UserResponse, error) {
	user, err := r.Resolve(ctx, userID)
	if err != nil {
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (r *userRegistry) FindByEmail(ctx context.Context, email string) (dto.UserResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userID, ok := r.emailIndex[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return dto.UserResponse{}, ErrUserNotFound
	}

	return dto.NewUserResponse(r.users[userID]), nil
}

func (r *userRegistry) MarkEmailVerified(ctx context.Context, userID, code string) (dto.UserResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return dto.UserResponse{}, ErrUserNotFound
	}

	if user.EmailVerificationCode == "" || user.EmailVerificationCode != code {
		return dto.UserResponse{}, ErrVerificationCodeMismatch
	}

	user.IsEmailVerified = true
	user.EmailVerificationCode = ""
	r.users[userID] = user

	r.logger.Info().Str("user_id", userID).Msg("email verified")

	return dto.NewUserResponse(user), nil
}

func (r *userRegistry) Deactivate(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}

	user.IsActive = false
	delete(r.emailIndex, strings.ToLower(user.Email))
	r.users[userID] = user

	r.logger.Info().Str("user_id", userID).Msg("user deactivated")

	return nil
}

// Resolve implements UserSource.
func (r *userRegistry) Resolve(ctx context.Context, userID string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return models.User{}, ErrUserNotFound
	}

	return user.Clone(), nil
}
