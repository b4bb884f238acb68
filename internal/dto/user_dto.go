package dto

import (
	"time"

	"github.com/orbitlms/coursework-api/internal/models"
)

// RegisterStudentRequest describes the payload for registering a student.
type RegisterStudentRequest struct {
	Name      string `json:"name" validate:"required,min=2"`
	Email     string `json:"email" validate:"required,email"`
	StudentID string `json:"student_id" validate:"required"`
	Program   string `json:"program" validate:"required"`
	Semester  int    `json:"semester" validate:"required,min=1"`
}

// RegisterTeacherRequest describes the payload for registering a teacher.
type RegisterTeacherRequest struct {
	Name       string `json:"name" validate:"required,min=2"`
	Email      string `json:"email" validate:"required,email"`
	Department string `json:"department" validate:"required"`
	EmployeeID string `json:"employee_id" validate:"required"`
}

// VerifyEmailRequest carries the one-time code issued at registration.
type VerifyEmailRequest struct {
	Code string `json:"code" validate:"required"`
}

// UserResponse is the serialized representation of a user account. The
// verification code never leaves the core.
type UserResponse struct {
	UserID          string                 `json:"user_id"`
	Name            string                 `json:"name"`
	Email           string                 `json:"email"`
	Role            models.Role            `json:"role"`
	DisplayName     string                 `json:"display_name"`
	CreatedAt       time.Time              `json:"created_at"`
	IsActive        bool                   `json:"is_active"`
	IsEmailVerified bool                   `json:"is_email_verified"`
	Student         *models.StudentProfile `json:"student,omitempty"`
	Teacher         *models.TeacherProfile `json:"teacher,omitempty"`
}

// NewUserResponse converts a model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	clone := user.Clone()
	return UserResponse{
		UserID:          clone.UserID,
		Name:            clone.Name,
		Email:           clone.Email,
		Role:            clone.Role,
		DisplayName:     clone.DisplayName(),
		CreatedAt:       clone.CreatedAt,
		IsActive:        clone.IsActive,
		IsEmailVerified: clone.IsEmailVerified,
		Student:         clone.Student,
		Teacher:         clone.Teacher,
	}
}
