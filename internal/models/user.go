package models

import "time"

// Role identifies the capability set granted to a user account.
type Role string

// Supported account roles.
const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
)

// StudentProfile carries the fields specific to student accounts.
type StudentProfile struct {
	StudentID string `json:"student_id"`
	Program   string `json:"program"`
	Semester  int    `json:"semester"`
}

// TeacherProfile carries the fields specific to teacher accounts.
type TeacherProfile struct {
	Department string `json:"department"`
	EmployeeID string `json:"employee_id"`
}

// User is the shared identity record for students and teachers. Exactly one
// of the role profiles is populated, matching Role.
type User struct {
	UserID                string          `json:"user_id"`
	Name                  string          `json:"name"`
	Email                 string          `json:"email"`
	Role                  Role            `json:"role"`
	CreatedAt             time.Time       `json:"created_at"`
	IsActive              bool            `json:"is_active"`
	IsEmailVerified       bool            `json:"is_email_verified"`
	EmailVerificationCode string          `json:"email_verification_code,omitempty"`
	Student               *StudentProfile `json:"student,omitempty"`
	Teacher               *TeacherProfile `json:"teacher,omitempty"`
}

// IsStudent reports whether the account has the student role.
func (u User) IsStudent() bool {
	return u.Role == RoleStudent
}

// IsTeacher reports whether the account has the teacher role.
func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// DisplayName returns the name used by presentation surfaces.
func (u User) DisplayName() string {
	switch u.Role {
	case RoleStudent:
		if u.Student != nil {
			return u.Name + " (" + u.Student.StudentID + ")"
		}
	case RoleTeacher:
		if u.Teacher != nil {
			return "Prof. " + u.Name + " (" + u.Teacher.Department + ")"
		}
	}
	return u.Name
}

// Clone returns an independent copy of the user record.
func (u User) Clone() User {
	clone := u
	if u.Student != nil {
		profile := *u.Student
		clone.Student = &profile
	}
	if u.Teacher != nil {
		profile := *u.Teacher
		clone.Teacher = &profile
	}
	return clone
}
