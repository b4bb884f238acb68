package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/orbitlms/coursework-api/internal/models"
)

func sampleSnapshot() Snapshot {
	marks := 85
	gradedAt := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)

	snapshot := NewSnapshot()
	snapshot.Assignments["ASSIGN-0001"] = models.Assignment{
		AssignmentID:  "ASSIGN-0001",
		Title:         "Heap implementation",
		CourseID:      "CRS-0001",
		CreatorID:     "USR-0001",
		Type:          models.AssignmentTypeHomework,
		MaxMarks:      100,
		CreatedAt:     gradedAt.Add(-72 * time.Hour),
		DueDate:       gradedAt.Add(-24 * time.Hour),
		Status:        models.AssignmentStatusActive,
		SubmissionIDs: []string{"SUB-0001"},
	}
	snapshot.Submissions["SUB-0001"] = models.Submission{
		SubmissionID: "SUB-0001",
		AssignmentID: "ASSIGN-0001",
		StudentID:    "USR-0002",
		Content:      "see attached",
		SubmittedAt:  gradedAt.Add(-30 * time.Hour),
		Status:       models.SubmissionStatusGraded,
		Marks:        &marks,
		Feedback:     "good",
		GradedBy:     "USR-0001",
		GradedAt:     &gradedAt,
	}
	snapshot.AssignmentCounter = 2
	snapshot.SubmissionCounter = 2
	return snapshot
}

func TestFileGatewayRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	gateway, err := NewFileGateway(path, zerolog.New(io.Discard))
	require.NoError(t, err)

	want := sampleSnapshot()
	require.NoError(t, gateway.Save(context.Background(), want))

	got, err := gateway.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want.Assignments, got.Assignments)
	require.Equal(t, want.Submissions, got.Submissions)
	require.Equal(t, want.AssignmentCounter, got.AssignmentCounter)
	require.Equal(t, want.SubmissionCounter, got.SubmissionCounter)
}

func TestFileGatewayMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")
	gateway, err := NewFileGateway(path, zerolog.New(io.Discard))
	require.NoError(t, err)

	snapshot, err := gateway.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, snapshot.Assignments)
	require.Empty(t, snapshot.Submissions)
	require.Equal(t, 1, snapshot.AssignmentCounter)
	require.Equal(t, 1, snapshot.SubmissionCounter)
}

func TestFileGatewayRejectsCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"assignments": []}`), 0o644))

	gateway, err := NewFileGateway(path, zerolog.New(io.Discard))
	require.NoError(t, err)

	_, err = gateway.Load(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "schema")
}

func TestFileGatewaySaveReplacesPriorSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	gateway, err := NewFileGateway(path, zerolog.New(io.Discard))
	require.NoError(t, err)

	first := sampleSnapshot()
	require.NoError(t, gateway.Save(context.Background(), first))

	second := sampleSnapshot()
	second.AssignmentCounter = 7
	require.NoError(t, gateway.Save(context.Background(), second))

	got, err := gateway.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, got.AssignmentCounter)

	// No temp files left behind by the atomic replace.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
