package models

// Course is the authoritative record for enrollment membership. Cross links
// into assignments are maintained by the ledger when it creates the forward
// edge; the course itself is session scoped and never persisted.
type Course struct {
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

// EnrollStudent adds the student to the enrollment set. Re-enrolling is a
// no-op; the return value reports whether membership changed.
func (c *Course) EnrollStudent(studentID string) bool {
	if c.IsEnrolled(studentID) {
		return false
	}
	c.EnrolledStudentIDs = append(c.EnrolledStudentIDs, studentID)
	return true
}

// IsEnrolled reports whether the student belongs to the enrollment set.
func (c *Course) IsEnrolled(studentID string) bool {
	for _, id := range c.EnrolledStudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// AddAssignment links an assignment into the course, preserving issuance
// order and skipping duplicates.
func (c *Course) AddAssignment(assignmentID string) {
	for _, id := range c.AssignmentIDs {
		if id == assignmentID {
			return
		}
	}
	c.AssignmentIDs = append(c.AssignmentIDs, assignmentID)
}

// RemoveAssignment unlinks an assignment reference.
func (c *Course) RemoveAssignment(assignmentID string) {
	for i, id := range c.AssignmentIDs {
		if id == assignmentID {
			c.AssignmentIDs = append(c.AssignmentIDs[:i], c.AssignmentIDs[i+1:]...)
			return
		}
	}
}

// Clone returns an independent copy so callers cannot mutate directory state.
func (c Course) Clone() Course {
	clone := c
	clone.EnrolledStudentIDs = append([]string(nil), c.EnrolledStudentIDs...)
	clone.AssignmentIDs = append([]string(nil), c.AssignmentIDs...)
	return clone
}
