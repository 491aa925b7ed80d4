package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laraxichu/goteo/internal/domain/history"
	"github.com/laraxichu/goteo/internal/domain/infusion"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *HistoryRepo) {
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return mr, NewHistoryRepo(c, "test")
}

func timeEntry(user string, at time.Time) history.Entry {
	return history.Entry{
		UserID:    user,
		CreatedAt: at,
		Result: infusion.NewTimeResult(infusion.TimeResult{
			TotalSeconds: 103400, Hours: 28, Minutes: 43, Seconds: 20,
			VolumeMl: 500, DropsPerMl: 20, SecondsPerDrop: 10.34, Timestamp: at,
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

func TestHistoryRepo_AppendAndList(t *testing.T) {
	mr, repo := setupTestRedis(t)
	ctx := context.Background()

	id1, err := repo.Append(ctx, timeEntry("u-1", t0))
	require.NoError(t, err)
	id2, err := repo.Append(ctx, flowEntry("u-1", t0.Add(time.Minute)))
	require.NoError(t, err)
	_, err = repo.Append(ctx, timeEntry("u-2", t0))
	require.NoError(t, err)

	assert.True(t, mr.Exists("goteo:test:history:u-1:entries"))

	items, err := repo.List(ctx, "u-1", history.ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, id2, items[0].ID)
	assert.Equal(t, id1, items[1].ID)
	require.NotNil(t, items[1].Result.Time)
	assert.Equal(t, 43, items[1].Result.Time.Minutes)
	assert.Equal(t, t0, items[1].CreatedAt)

	flows, err := repo.List(ctx, "u-1", history.ListFilter{Kind: infusion.ModeFlow})
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, id2, flows[0].ID)

	limited, err := repo.List(ctx, "u-1", history.ListFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, id2, limited[0].ID)
}

func TestHistoryRepo_GetAndRemove(t *testing.T) {
	_, repo := setupTestRedis(t)
	ctx := context.Background()

	id, err := repo.Append(ctx, flowEntry("u-1", t0))
	require.NoError(t, err)

	_, err = repo.Get(ctx, "u-2", id)
	assert.ErrorIs(t, err, history.ErrNotFound)

	got, err := repo.Get(ctx, "u-1", id)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, got.Result.VolumeMl())

	require.NoError(t, repo.Remove(ctx, "u-1", id))
	assert.ErrorIs(t, repo.Remove(ctx, "u-1", id), history.ErrNotFound)

	flows, err := repo.List(ctx, "u-1", history.ListFilter{Kind: infusion.ModeFlow})
	require.NoError(t, err)
	assert.Empty(t, flows)
}

func TestHistoryRepo_ServerDown(t *testing.T) {
	mr, repo := setupTestRedis(t)
	mr.Close()

	_, err := repo.Append(context.Background(), timeEntry("u-1", t0))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, history.ErrNotFound)
}
