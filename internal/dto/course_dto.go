package dto

import "github.com/orbitlms/coursework-api/internal/models"

// CourseCreateRequest describes the payload for creating a course.
type CourseCreateRequest struct {
	CourseName  string `json:"course_name" validate:"required,min=3"`
	CourseCode  string `json:"course_code" validate:"required"`
	Department  string `json:"department" validate:"required"`
	CreditHours int    `json:"credit_hours" validate:"required,min=1"`
	Semester    string `json:"semester" validate:"required"`
}

// EnrollStudentRequest optionally names the student when a teacher enrolls
// someone other than the caller.
type EnrollStudentRequest struct {
	StudentID string `json:"student_id" validate:"omitempty"`
}

// CourseFilter narrows course listings. All fields are optional and
// combined with AND semantics.
type CourseFilter struct {
	Department string `query:"department"`
	Semester   string `query:"semester"`
	TeacherID  string `query:"teacher_id"`
	StudentID  string `query:"student_id"`
}

// CourseResponse is the serialized representation returned to API clients.
type CourseResponse struct {
	CourseID           string   `json:"course_id"`
	CourseName         string   `json:"course_name"`
	CourseCode         string   `json:"course_code"`
	Department         string   `json:"department"`
	CreditHours        int      `json:"credit_hours"`
	Semester           string   `json:"semester"`
	InstructorID       string   `json:"instructor_id"`
	EnrolledStudentIDs []string `json:"enrolled_student_ids"`
	AssignmentIDs      []string `json:"assignment_ids"`
}

// NewCourseResponse converts a model into a DTO.
func NewCourseResponse(course models.Course) CourseResponse {
	clone := course.Clone()
	return CourseResponse{
		CourseID:           clone.CourseID,
		CourseName:         clone.CourseName,
		CourseCode:         clone.CourseCode,
		Department:         clone.Department,
		CreditHours:        clone.CreditHours,
		Semester:           clone.Semester,
		InstructorID:       clone.InstructorID,
		EnrolledStudentIDs: clone.EnrolledStudentIDs,
		AssignmentIDs:      clone.AssignmentIDs,
	}
}

// NewCourseResponseSlice converts a slice of models into DTOs.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}

	return responses
}

// CourseStatistics summarises a course for instructor dashboards.
type CourseStatistics struct {
	CourseID         string `json:"course_id"`
	CourseName       string `json:"course_name"`
	EnrolledStudents int    `json:"enrolled_students"`
	TotalAssignments int    `json:"total_assignments"`
	InstructorID     string `json:"instructor_id"`
	InstructorName   string `json:"instructor_name"`
}
