package storage

import (
	"context"

	"github.com/orbitlms/coursework-api/internal/models"
)

// Snapshot is the full durable state of the ledger: both registries plus
// the monotonic ID counters. Counters hold the next value to issue.
type Snapshot struct {
	Assignments       map[string]models.Assignment `json:"assignments"`
	Submissions       map[string]models.Submission `json:"submissions"`
	AssignmentCounter int                          `json:"assignment_counter"`
	SubmissionCounter int                          `json:"submission_counter"`
}

// NewSnapshot returns the initial empty state.
func NewSnapshot() Snapshot {
	return Snapshot{
		Assignments:       make(map[string]models.Assignment),
		Submissions:       make(map[string]models.Submission),
		AssignmentCounter: 1,
		SubmissionCounter: 1,
	}
}

// normalize repairs nil maps and zero counters after decoding.
func (s *Snapshot) normalize() {
	if s.Assignments == nil {
		s.Assignments = make(map[string]models.Assignment)
	}
	if s.Submissions == nil {
		s.Submissions = make(map[string]models.Submission)
	}
	if s.AssignmentCounter < 1 {
		s.AssignmentCounter = 1
	}
	if s.SubmissionCounter < 1 {
		s.SubmissionCounter = 1
	}
}

// Gateway persists ledger snapshots. Save must be atomic with respect to a
// single process: a crash mid-save may not corrupt the prior durable
// snapshot. Concurrent writers are out of contract.
type Gateway interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
}
