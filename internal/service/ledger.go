package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/orbitlms/coursework-api/internal/dto"
	"github.com/orbitlms/coursework-api/internal/models"
	"github.com/orbitlms/coursework-api/internal/observability"
	"github.com/orbitlms/coursework-api/internal/storage"
	"github.com/orbitlms/coursework-api/pkg/events"
)

// ErrAssignmentNotFound indicates the requested assignment does not exist.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrSubmissionNotFound indicates the requested submission does not exist.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrAssignmentNotActive indicates a submission was attempted against an
// assignment that no longer accepts work.
var ErrAssignmentNotActive = errors.New("assignment is not active for submissions")

// ErrMarksExceedMax indicates grading marks surpass the assignment maximum.
var ErrMarksExceedMax = errors.New("marks cannot exceed maximum marks")

// ErrMarksNegative indicates grading marks below zero.
var ErrMarksNegative = errors.New("marks cannot be negative")

// ErrEmptyContent indicates submission content was empty once sanitized.
var ErrEmptyContent = errors.New("submission content empty after sanitization")

// Ledger owns the assignment and submission workflow. Every successful
// mutation is flushed to the persistence gateway before returning; a failed
// flush rolls the in-memory change back, though consumed counter values are
// never reclaimed.
type Ledger interface {
	CreateAssignment(ctx context.Context, payload dto.AssignmentCreateRequest, creatorID string) (dto.AssignmentResponse, error)
	Submit(ctx context.Context, payload dto.SubmissionCreateRequest, studentID string) (dto.SubmissionResponse, error)
	Grade(ctx context.Context, submissionID string, payload dto.GradeSubmissionRequest, teacherID string) (dto.SubmissionResponse, error)
	Close(ctx context.Context, assignmentID string) error
	AddAttachment(ctx context.Context, assignmentID string, payload dto.AddAttachmentRequest) (dto.AssignmentResponse, error)
	GetAssignment(ctx context.Context, assignmentID string) (dto.AssignmentResponse, error)
	GetSubmission(ctx context.Context, submissionID string) (dto.SubmissionResponse, error)
	ListAssignments(ctx context.Context, filter dto.AssignmentFilter) ([]dto.AssignmentResponse, error)
	ListSubmissions(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	OverdueAssignments(ctx context.Context) ([]dto.AssignmentResponse, error)
	Statistics(ctx context.Context, assignmentID string) (dto.AssignmentStatistics, error)
}

type ledger struct {
	mu                sync.RWMutex
	assignments       map[string]models.Assignment
	submissions       map[string]models.Submission
	assignmentCounter int
	submissionCounter int

	gateway   storage.Gateway
	courses   CourseLinker
	users     UserSource
	notifier  events.Notifier
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewLedger loads durable state from the gateway and returns the ledger.
func NewLedger(gateway storage.Gateway, courses CourseLinker, users UserSource, notifier events.Notifier, validate *validator.Validate, logger zerolog.Logger) (Ledger, error) {
	snapshot, err := gateway.Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger state: %w", err)
	}

	if notifier == nil {
		notifier = events.NopNotifier{}
	}

	return &ledger{
		assignments:       snapshot.Assignments,
		submissions:       snapshot.Submissions,
		assignmentCounter: snapshot.AssignmentCounter,
		submissionCounter: snapshot.SubmissionCounter,
		gateway:           gateway,
		courses:           courses,
		users:             users,
		notifier:          notifier,
		validator:         validate,
		sanitizer:         bluemonday.StrictPolicy(),
		logger:            logger.With().Str("component", "ledger").Logger(),
		tracer:            otel.Tracer("github.com/orbitlms/coursework-api/internal/service/ledger"),
		now:               time.Now,
	}, nil
}

func (l *ledger) CreateAssignment(ctx context.Context, payload dto.AssignmentCreateRequest, creatorID string) (dto.AssignmentResponse, error) {
	if err := l.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	dueDate, err := time.Parse(time.RFC3339, payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("invalid due date: %w", err)
	}

	creator, err := l.users.Resolve(ctx, creatorID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if !creator.IsTeacher() {
		return dto.AssignmentResponse{}, ErrTeacherRequired
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	course, err := l.courses.ResolveCourse(ctx, payload.CourseID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	now := l.now()
	assignment := models.Assignment{
		AssignmentID: newAssignmentID(l.assignmentCounter),
		Title:        payload.Title,
		Description:  payload.Description,
		CourseID:     course.CourseID,
		CreatorID:    creator.UserID,
		Type:         models.AssignmentType(payload.Type),
		MaxMarks:     payload.MaxMarks,
		CreatedAt:    now,
		DueDate:      dueDate,
		Status:       models.AssignmentStatusActive,
	}
	l.assignmentCounter++

	l.assignments[assignment.AssignmentID] = assignment
	if err := l.courses.AttachAssignment(ctx, course.CourseID, assignment.AssignmentID); err != nil {
		delete(l.assignments, assignment.AssignmentID)
		return dto.AssignmentResponse{}, err
	}

	if err := l.flushLocked(ctx); err != nil {
		delete(l.assignments, assignment.AssignmentID)
		l.courses.DetachAssignment(ctx, course.CourseID, assignment.AssignmentID)
		return dto.AssignmentResponse{}, err
	}

	response := dto.NewAssignmentResponse(assignment, now)
	l.notifier.Notify(ctx, events.SubjectAssignmentCreated, response)
	observability.LedgerOperations().WithLabelValues("create_assignment", "ok").Inc()

	l.logger.Info().
		Str("assignment_id", assignment.AssignmentID).
		Str("course_id", course.CourseID).
		Msg("assignment created")

	return response, nil
}

func (l *ledger) Submit(ctx context.Context, payload dto.SubmissionCreateRequest, studentID string) (dto.SubmissionResponse, error) {
	if err := l.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	content := strings.TrimSpace(l.sanitizer.Sanitize(payload.Content))
	if content == "" {
		return dto.SubmissionResponse{}, ErrEmptyContent
	}

	student, err := l.users.Resolve(ctx, studentID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !student.IsStudent() {
		return dto.SubmissionResponse{}, ErrStudentRequired
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	assignment, ok := l.assignments[payload.AssignmentID]
	if !ok {
		return dto.SubmissionResponse{}, ErrAssignmentNotFound
	}
	if !assignment.IsActive() {
		return dto.SubmissionResponse{}, ErrAssignmentNotActive
	}

	// The ledger deliberately allows multiple submissions for the same
	// (assignment, student) pair.
	now := l.now()
	submission := models.Submission{
		SubmissionID:   newSubmissionID(l.submissionCounter),
		AssignmentID:   assignment.AssignmentID,
		StudentID:      student.UserID,
		Content:        content,
		SubmittedAt:    now,
		Status:         models.SubmissionStatusSubmitted,
		LateSubmission: now.After(assignment.DueDate),
	}
	l.submissionCounter++

	for _, path := range payload.AttachmentPaths {
		submission.AddAttachment(path)
	}

	priorAssignment := assignment.Clone()
	assignment.AddSubmission(submission.SubmissionID)
	l.assignments[assignment.AssignmentID] = assignment
	l.submissions[submission.SubmissionID] = submission

	if err := l.flushLocked(ctx); err != nil {
		delete(l.submissions, submission.SubmissionID)
		l.assignments[assignment.AssignmentID] = priorAssignment
		return dto.SubmissionResponse{}, err
	}

	response := dto.NewSubmissionResponse(submission, assignment.MaxMarks)
	l.notifier.Notify(ctx, events.SubjectSubmissionCreated, response)
	observability.LedgerOperations().WithLabelValues("submit", "ok").Inc()

	l.logger.Info().
		Str("submission_id", submission.SubmissionID).
		Str("assignment_id", assignment.AssignmentID).
		Str("student_id", student.UserID).
		Bool("late", submission.LateSubmission).
		Msg("assignment submitted")

	return response, nil
}

func (l *ledger) Grade(ctx context.Context, submissionID string, payload dto.GradeSubmissionRequest, teacherID string) (dto.SubmissionResponse, error) {
	ctx, span := l.tracer.Start(ctx, "ledger.grade", trace.WithAttributes(
		attribute.String("grading.submission_id", submissionID),
		attribute.String("grading.teacher_id", teacherID),
	))
	defer span.End()

	teacher, err := l.users.Resolve(ctx, teacherID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "teacher_lookup_failed")
		return dto.SubmissionResponse{}, err
	}
	if !teacher.IsTeacher() {
		span.SetStatus(codes.Error, "not_a_teacher")
		return dto.SubmissionResponse{}, ErrTeacherRequired
	}

	feedback := strings.TrimSpace(l.sanitizer.Sanitize(payload.Feedback))

	l.mu.Lock()
	defer l.mu.Unlock()

	submission, ok := l.submissions[submissionID]
	if !ok {
		span.SetStatus(codes.Error, "submission_not_found")
		return dto.SubmissionResponse{}, ErrSubmissionNotFound
	}

	assignment, ok := l.assignments[submission.AssignmentID]
	if !ok {
		span.SetStatus(codes.Error, "assignment_not_found")
		return dto.SubmissionResponse{}, ErrAssignmentNotFound
	}

	if payload.Marks < 0 {
		span.SetStatus(codes.Error, "marks_negative")
		return dto.SubmissionResponse{}, ErrMarksNegative
	}
	if payload.Marks > assignment.MaxMarks {
		span.SetStatus(codes.Error, "marks_exceed_max")
		return dto.SubmissionResponse{}, ErrMarksExceedMax
	}

	// Re-grading overwrites the previous result without complaint.
	prior := submission.Clone()
	submission.Grade(payload.Marks, feedback, teacher.UserID, l.now())
	l.submissions[submissionID] = submission

	if err := l.flushLocked(ctx); err != nil {
		l.submissions[submissionID] = prior
		span.RecordError(err)
		span.SetStatus(codes.Error, "flush_failed")
		return dto.SubmissionResponse{}, err
	}

	response := dto.NewSubmissionResponse(submission, assignment.MaxMarks)
	l.notifier.Notify(ctx, events.SubjectSubmissionGraded, response)
	observability.LedgerOperations().WithLabelValues("grade", "ok").Inc()

	span.SetAttributes(attribute.Int("grading.marks", payload.Marks))

	l.logger.Info().
		Str("submission_id", submissionID).
		Str("teacher_id", teacher.UserID).
		Int("marks", payload.Marks).
		Msg("submission graded")

	return response, nil
}

func (l *ledger) Close(ctx context.Context, assignmentID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	assignment, ok := l.assignments[assignmentID]
	if !ok {
		// Closing an unknown assignment is a no-op.
		return nil
	}

	prior := assignment.Clone()
	assignment.Close()
	l.assignments[assignmentID] = assignment

	if err := l.flushLocked(ctx); err != nil {
		l.assignments[assignmentID] = prior
		return err
	}

	l.notifier.Notify(ctx, events.SubjectAssignmentClosed, dto.NewAssignmentResponse(assignment, l.now()))
	observability.LedgerOperations().WithLabelValues("close_assignment", "ok").Inc()

	l.logger.Info().Str("assignment_id", assignmentID).Msg("assignment closed")

	return nil
}

func (l *ledger) AddAttachment(ctx context.Context, assignmentID string, payload dto.AddAttachmentRequest) (dto.AssignmentResponse, error) {
	if err := l.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	assignment, ok := l.assignments[assignmentID]
	if !ok {
		return dto.AssignmentResponse{}, ErrAssignmentNotFound
	}

	prior := assignment.Clone()
	if !assignment.AddAttachment(payload.Path) {
		// Already referenced; nothing changed, nothing to flush.
		return dto.NewAssignmentResponse(assignment, l.now()), nil
	}
	l.assignments[assignmentID] = assignment

	if err := l.flushLocked(ctx); err != nil {
		l.assignments[assignmentID] = prior
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment, l.now()), nil
}

func (l *ledger) GetAssignment(ctx context.Context, assignmentID string) (dto.AssignmentResponse, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	assignment, ok := l.assignments[assignmentID]
	if !ok {
		return dto.AssignmentResponse{}, ErrAssignmentNotFound
	}

	return dto.NewAssignmentResponse(assignment, l.now()), nil
}

func (l *ledger) GetSubmission(ctx context.Context, submissionID string) (dto.SubmissionResponse, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	submission, ok := l.submissions[submissionID]
	if !ok {
		return dto.SubmissionResponse{}, ErrSubmissionNotFound
	}

	return dto.NewSubmissionResponse(submission, l.maxMarksLocked(submission.AssignmentID)), nil
}

func (l *ledger) ListAssignments(ctx context.Context, filter dto.AssignmentFilter) ([]dto.AssignmentResponse, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	matches := make([]models.Assignment, 0, len(l.assignments))
	for _, id := range sortedKeys(l.assignments) {
		assignment := l.assignments[id]
		if filter.CourseID != "" && assignment.CourseID != filter.CourseID {
			continue
		}
		if filter.TeacherID != "" && assignment.CreatorID != filter.TeacherID {
			continue
		}
		matches = append(matches, assignment)
	}

	return dto.NewAssignmentResponseSlice(matches, l.now()), nil
}

func (l *ledger) ListSubmissions(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	responses := make([]dto.SubmissionResponse, 0, len(l.submissions))
	for _, id := range sortedKeys(l.submissions) {
		submission := l.submissions[id]
		if filter.AssignmentID != "" && submission.AssignmentID != filter.AssignmentID {
			continue
		}
		if filter.StudentID != "" && submission.StudentID != filter.StudentID {
			continue
		}
		responses = append(responses, dto.NewSubmissionResponse(submission, l.maxMarksLocked(submission.AssignmentID)))
	}

	return responses, nil
}

func (l *ledger) OverdueAssignments(ctx context.Context) ([]dto.AssignmentResponse, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	now := l.now()
	matches := make([]models.Assignment, 0)
	for _, id := range sortedKeys(l.assignments) {
		assignment := l.assignments[id]
		if assignment.IsOverdue(now) {
			matches = append(matches, assignment)
		}
	}

	return dto.NewAssignmentResponseSlice(matches, now), nil
}

func (l *ledger) Statistics(ctx context.Context, assignmentID string) (dto.AssignmentStatistics, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	assignment, ok := l.assignments[assignmentID]
	if !ok {
		return dto.AssignmentStatistics{}, ErrAssignmentNotFound
	}

	submitted := 0
	graded := 0
	for _, submission := range l.submissions {
		if submission.AssignmentID != assignmentID {
			continue
		}
		submitted++
		if submission.IsGraded() {
			graded++
		}
	}

	stats := dto.AssignmentStatistics{
		AssignmentID:   assignment.AssignmentID,
		Title:          assignment.Title,
		SubmittedCount: submitted,
		GradedCount:    graded,
	}

	// The course side is session scoped; after a restart the course may be
	// gone while the assignment survived. Statistics degrade to zero
	// enrollment rather than failing.
	if course, err := l.courses.ResolveCourse(ctx, assignment.CourseID); err == nil {
		stats.TotalStudents = len(course.EnrolledStudentIDs)
	}
	if stats.TotalStudents > 0 {
		stats.SubmissionRate = float64(submitted) * 100.0 / float64(stats.TotalStudents)
	}

	return stats, nil
}

// flushLocked writes the full ledger state through the gateway. Callers
// hold the write lock.
func (l *ledger) flushLocked(ctx context.Context) error {
	snapshot := storage.Snapshot{
		Assignments:       l.assignments,
		Submissions:       l.submissions,
		AssignmentCounter: l.assignmentCounter,
		SubmissionCounter: l.submissionCounter,
	}

	if err := l.gateway.Save(ctx, snapshot); err != nil {
		observability.LedgerOperations().WithLabelValues("flush", "error").Inc()
		return fmt.Errorf("failed to flush ledger state: %w", err)
	}

	return nil
}

// maxMarksLocked looks up the owning assignment's maximum. Callers hold at
// least the read lock.
func (l *ledger) maxMarksLocked(assignmentID string) int {
	if assignment, ok := l.assignments[assignmentID]; ok {
		return assignment.MaxMarks
	}
	return 0
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
