package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/orbitlms/coursework-api/internal/dto"
	"github.com/orbitlms/coursework-api/internal/models"
)

// ErrCourseNotFound indicates the requested course does not exist.
var ErrCourseNotFound = errors.New("course not found")

// CourseLinker is the slice of the directory the ledger uses to keep the
// course side of the assignment cross-link in sync.
type CourseLinker interface {
	ResolveCourse(ctx context.Context, courseID string) (models.Course, error)
	AttachAssignment(ctx context.Context, courseID, assignmentID string) error
	DetachAssignment(ctx context.Context, courseID, assignmentID string)
}

// CourseDirectory owns course creation and enrollment. Its state is session
// scoped: courses are created fresh each process start and never flushed to
// the persistence gateway.
type CourseDirectory interface {
	CourseLinker
	Create(ctx context.Context, payload dto.CourseCreateRequest, instructorID string) (dto.CourseResponse, error)
	Enroll(ctx context.Context, courseID, studentID string) (dto.CourseResponse, error)
	Get(ctx context.Context, courseID string) (dto.CourseResponse, error)
	FindByCode(ctx context.Context, courseCode string) (dto.CourseResponse, error)
	List(ctx context.Context, filter dto.CourseFilter) ([]dto.CourseResponse, error)
	Statistics(ctx context.Context, courseID string) (dto.CourseStatistics, error)
}

type courseDirectory struct {
	mu      sync.RWMutex
	courses map[string]models.Course
	counter int

	users     UserSource
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCourseDirectory constructs an empty directory.
func NewCourseDirectory(users UserSource, validate *validator.Validate, logger zerolog.Logger) CourseDirectory {
	return &courseDirectory{
		courses:   make(map[string]models.Course),
		counter:   1,
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "course_directory").Logger(),
	}
}

func (d *courseDirectory) Create(ctx context.Context, payload dto.CourseCreateRequest, instructorID string) (dto.CourseResponse, error) {
	if err := d.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	instructor, err := d.users.Resolve(ctx, instructorID)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	if !instructor.IsTeacher() {
		return dto.CourseResponse{}, ErrTeacherRequired
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Course codes are deliberately not checked for uniqueness.
	course := models.Course{
		CourseID:     newCourseID(d.counter),
		CourseName:   payload.CourseName,
		CourseCode:   payload.CourseCode,
		Department:   payload.Department,
		CreditHours:  payload.CreditHours,
		Semester:     payload.Semester,
		InstructorID: instructor.UserID,
	}
	d.counter++
	d.courses[course.CourseID] = course

	d.logger.Info().
		Str("course_id", course.CourseID).
		Str("instructor_id", instructor.UserID).
		Msg("course created")

	return dto.NewCourseResponse(course), nil
}

func (d *courseDirectory) Enroll(ctx context.Context, courseID, studentID string) (dto.CourseResponse, error) {
	student, err := d.users.Resolve(ctx, studentID)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	if !student.IsStudent() {
		return dto.CourseResponse{}, ErrStudentRequired
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	course, ok := d.courses[courseID]
	if !ok {
		return dto.CourseResponse{}, ErrCourseNotFound
	}

	if course.EnrollStudent(student.UserID) {
		d.courses[courseID] = course
		d.logger.Info().
			Str("course_id", courseID).
			Str("student_id", student.UserID).
			Msg("student enrolled")
	}

	return dto.NewCourseResponse(course), nil
}

func (d *courseDirectory) Get(ctx context.Context, courseID string) (dto.CourseResponse, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	course, ok := d.courses[courseID]
	if !ok {
		return dto.CourseResponse{}, ErrCourseNotFound
	}

	return dto.NewCourseResponse(course), nil
}

func (d *courseDirectory) FindByCode(ctx context.Context, courseCode string) (dto.CourseResponse, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, id := range d.sortedIDs() {
		course := d.courses[id]
		if strings.EqualFold(course.CourseCode, courseCode) {
			return dto.NewCourseResponse(course), nil
		}
	}

	return dto.CourseResponse{}, ErrCourseNotFound
}

func (d *courseDirectory) List(ctx context.Context, filter dto.CourseFilter) ([]dto.CourseResponse, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	matches := make([]models.Course, 0, len(d.courses))
	for _, id := range d.sortedIDs() {
		course := d.courses[id]
		if filter.Department != "" && !strings.EqualFold(course.Department, filter.Department) {
			continue
		}
		if filter.Semester != "" && !strings.EqualFold(course.Semester, filter.Semester) {
			continue
		}
		if filter.TeacherID != "" && course.InstructorID != filter.TeacherID {
			continue
		}
		if filter.StudentID != "" && !course.IsEnrolled(filter.StudentID) {
			continue
		}
		matches = append(matches, course)
	}

	return dto.NewCourseResponseSlice(matches), nil
}

func (d *courseDirectory) Statistics(ctx context.Context, courseID string) (dto.CourseStatistics, error) {
	d.mu.RLock()
	course, ok := d.courses[courseID]
	d.mu.RUnlock()
	if !ok {
		return dto.CourseStatistics{}, ErrCourseNotFound
	}

	stats := dto.CourseStatistics{
		CourseID:         course.CourseID,
		CourseName:       course.CourseName,
		EnrolledStudents: len(course.EnrolledStudentIDs),
		TotalAssignments: len(course.AssignmentIDs),
		InstructorID:     course.InstructorID,
	}

	if instructor, err := d.users.Resolve(ctx, course.InstructorID); err == nil {
		stats.InstructorName = instructor.Name
	}

	return stats, nil
}

// ResolveCourse implements CourseLinker.
func (d *courseDirectory) ResolveCourse(ctx context.Context, courseID string) (models.Course, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	course, ok := d.courses[courseID]
	if !ok {
		return models.Course{}, ErrCourseNotFound
	}

	return course.Clone(), nil
}

// AttachAssignment implements CourseLinker.
func (d *courseDirectory) AttachAssignment(ctx context.Context, courseID, assignmentID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	course, ok := d.courses[courseID]
	if !ok {
		return ErrCourseNotFound
	}

	course.AddAssignment(assignmentID)
	d.courses[courseID] = course

	return nil
}

// DetachAssignment implements CourseLinker. Used to undo the cross-link
// when an assignment fails to flush.
func (d *courseDirectory) DetachAssignment(ctx context.Context, courseID, assignmentID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	course, ok := d.courses[courseID]
	if !ok {
		return
	}

	course.RemoveAssignment(assignmentID)
	d.courses[courseID] = course
}

// sortedIDs returns course IDs in issuance order. Callers hold the lock.
func (d *courseDirectory) sortedIDs() []string {
	ids := make([]string, 0, len(d.courses))
	for id := range d.courses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
