package storage

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisGatewayRoundTrip(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	gateway := NewRedisGateway(client, "")

	snapshot, err := gateway.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, snapshot.Assignments)
	require.Equal(t, 1, snapshot.SubmissionCounter)

	want := sampleSnapshot()
	require.NoError(t, gateway.Save(context.Background(), want))

	got, err := gateway.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want.Assignments, got.Assignments)
	require.Equal(t, want.Submissions, got.Submissions)
	require.Equal(t, want.AssignmentCounter, got.AssignmentCounter)
	require.Equal(t, want.SubmissionCounter, got.SubmissionCounter)
}

func TestRedisGatewayRejectsCorruptPayload(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	require.NoError(t, mini.Set(defaultSnapshotKey, "not-json"))

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	gateway := NewRedisGateway(client, "")

	_, err = gateway.Load(context.Background())
	require.Error(t, err)
}
