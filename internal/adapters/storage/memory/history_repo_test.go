package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laraxichu/goteo/internal/domain/history"
	"github.com/laraxichu/goteo/internal/domain/infusion"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func timeEntry(user string, at time.Time, volume float64) history.Entry {
	return history.Entry{
		UserID:    user,
		CreatedAt: at,
		Result: infusion.NewTimeResult(infusion.TimeResult{
			TotalSeconds: 100, VolumeMl: volume, DropsPerMl: 20, SecondsPerDrop: 1, Timestamp: at,
		}),
	}
}

func flowEntry(user string, at time.Time) history.Entry {
	return history.Entry{
		UserID:    user,
		CreatedAt: at,
		Result: infusion.NewFlowResult(infusion.FlowResult{
			DropsPerMinute: 41.67, MlPerHour: 125, VolumeMl: 1000, DropsPerMl: 20,
			Desired: infusion.Duration{Hours: 8}, Timestamp: at,
		}),
	}
}

func TestHistoryRepo_NewestFirstPerUser(t *testing.T) {
	repo := NewHistoryRepo()
	ctx := context.Background()

	id1, err := repo.Append(ctx, timeEntry("u-1", t0, 100))
	require.NoError(t, err)
	id2, err := repo.Append(ctx, flowEntry("u-1", t0.Add(time.Minute)))
	require.NoError(t, err)
	_, err = repo.Append(ctx, timeEntry("u-2", t0, 300))
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	items, err := repo.List(ctx, "u-1", history.ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, id2, items[0].ID)
	assert.Equal(t, id1, items[1].ID)

	times, err := repo.List(ctx, "u-1", history.ListFilter{Kind: infusion.ModeTime})
	require.NoError(t, err)
	require.Len(t, times, 1)
	assert.Equal(t, id1, times[0].ID)

	none, err := repo.List(ctx, "nobody", history.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestHistoryRepo_SameTimestampKeepsInsertionRecency(t *testing.T) {
	repo := NewHistoryRepo()
	ctx := context.Background()

	first, err := repo.Append(ctx, timeEntry("u-1", t0, 100))
	require.NoError(t, err)
	second, err := repo.Append(ctx, timeEntry("u-1", t0, 200))
	require.NoError(t, err)

	items, err := repo.List(ctx, "u-1", history.ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second, items[0].ID)
	assert.Equal(t, first, items[1].ID)
}

func TestHistoryRepo_Limit(t *testing.T) {
	repo := NewHistoryRepo()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := repo.Append(ctx, timeEntry("u-1", t0.Add(time.Duration(i)*time.Second), 100))
		require.NoError(t, err)
	}

	items, err := repo.List(ctx, "u-1", history.ListFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, t0.Add(4*time.Second), items[0].CreatedAt)
}

func TestHistoryRepo_GetAndRemove(t *testing.T) {
	repo := NewHistoryRepo()
	ctx := context.Background()

	id, err := repo.Append(ctx, timeEntry("u-1", t0, 100))
	require.NoError(t, err)

	_, err = repo.Get(ctx, "u-2", id)
	assert.ErrorIs(t, err, history.ErrNotFound)
	assert.ErrorIs(t, repo.Remove(ctx, "u-2", id), history.ErrNotFound)

	got, err := repo.Get(ctx, "u-1", id)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Result.VolumeMl())

	require.NoError(t, repo.Remove(ctx, "u-1", id))
	assert.ErrorIs(t, repo.Remove(ctx, "u-1", id), history.ErrNotFound)
}

func TestHistoryRepo_RejectsInvalidEntry(t *testing.T) {
	repo := NewHistoryRepo()
	_, err := repo.Append(context.Background(), history.Entry{UserID: "u-1"})
	assert.Error(t, err)

	_, err = repo.Append(context.Background(), timeEntry("", t0, 100))
	assert.Error(t, err)
}
