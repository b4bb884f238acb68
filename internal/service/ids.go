package service

import "fmt"

// Sequential identifier formats. Counters are post-incremented at issuance,
// so the first ID of each kind ends in 0001.
func newUserID(n int) string       { return fmt.Sprintf("USR-%04d", n) }
func newCourseID(n int) string     { return fmt.Sprintf("CRS-%04d", n) }
func newAssignmentID(n int) string { return fmt.Sprintf("ASSIGN-%04d", n) }
func newSubmissionID(n int) string { return fmt.Sprintf("SUB-%04d", n) }
