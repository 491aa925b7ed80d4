package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laraxichu/goteo/internal/domain/infusion"
	"github.com/laraxichu/goteo/internal/domain/reminder"
	"github.com/laraxichu/goteo/internal/ports/notify"
	"github.com/laraxichu/goteo/internal/ports/timer"
)

type stubHandle struct{ disarmed *bool }

func (h stubHandle) Disarm() bool {
	was := *h.disarmed
	*h.disarmed = true
	return !was
}

type stubTrigger struct {
	mu       sync.Mutex
	fns      []func()
	disarmed []*bool
}

func (t *stubTrigger) Arm(_ time.Duration, fn func()) timer.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := new(bool)
	t.fns = append(t.fns, fn)
	t.disarmed = append(t.disarmed, d)
	return stubHandle{disarmed: d}
}

type countingNotifier struct {
	mu sync.Mutex
	n  int
}

func (c *countingNotifier) Notify(context.Context, notify.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return nil
}

func newTestManager() (*Manager, *stubTrigger) {
	tr := &stubTrigger{}
	return NewManager(ManagerOptions{Trigger: tr, Notifier: &countingNotifier{}}), tr
}

func timeRes(total float64) infusion.Result {
	return infusion.NewTimeResult(infusion.TimeResult{TotalSeconds: total, VolumeMl: 500})
}

func TestManager_GetIsPerUser(t *testing.T) {
	m, _ := newTestManager()

	a, err := m.Get("user-a")
	require.NoError(t, err)
	again, err := m.Get(" user-a ")
	require.NoError(t, err)
	b, err := m.Get("user-b")
	require.NoError(t, err)

	assert.Same(t, a, again)
	assert.NotSame(t, a, b)

	_, err = m.Get("  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSession_InitialState(t *testing.T) {
	m, _ := newTestManager()
	s, _ := m.Get("u")

	st := s.State()
	assert.Equal(t, "u", st.UserID)
	assert.Equal(t, infusion.ModeTime, st.Mode)
	assert.Nil(t, st.LastResult)
	assert.Equal(t, notify.PermissionDefault, st.Permission)
	assert.Equal(t, reminder.StateIdle, st.Reminder.State)
}

func TestSession_UnsupportedWithoutNotifier(t *testing.T) {
	m := NewManager(ManagerOptions{Trigger: &stubTrigger{}})
	s, _ := m.Get("u")

	assert.Equal(t, notify.PermissionUnsupported, s.Permission())
	perm, err := s.RequestPermission(notify.PermissionGranted)
	require.NoError(t, err)
	assert.Equal(t, notify.PermissionUnsupported, perm)

	s.ApplyResult(timeRes(600))
	_, err = s.ScheduleReminder(1)
	assert.ErrorIs(t, err, reminder.ErrNotificationsUnsupported)
}

func TestSession_ScheduleNeedsPermissionThenTimeResult(t *testing.T) {
	m, tr := newTestManager()
	s, _ := m.Get("u")

	_, err := s.ScheduleReminder(5)
	assert.ErrorIs(t, err, reminder.ErrPermissionRequired)

	_, err = s.RequestPermission(notify.PermissionGranted)
	require.NoError(t, err)

	_, err = s.ScheduleReminder(5)
	assert.ErrorIs(t, err, reminder.ErrNoTimeResult)

	// Un resultado de goteo tampoco sirve para el recordatorio.
	s.ApplyResult(infusion.NewFlowResult(infusion.FlowResult{DropsPerMinute: 20.83}))
	_, err = s.ScheduleReminder(5)
	assert.ErrorIs(t, err, reminder.ErrNoTimeResult)

	s.ApplyResult(timeRes(3600))
	got, err := s.ScheduleReminder(5)
	require.NoError(t, err)
	assert.Equal(t, 55*time.Minute, got.Delay)
	assert.Len(t, tr.fns, 1)
}

func TestSession_NewResultSupersedesReminder(t *testing.T) {
	m, tr := newTestManager()
	s, _ := m.Get("u")
	_, _ = s.RequestPermission(notify.PermissionGranted)

	s.ApplyResult(timeRes(3600))
	_, err := s.ScheduleReminder(5)
	require.NoError(t, err)

	s.ApplyResult(timeRes(7200))
	assert.True(t, *tr.disarmed[0])

	st := s.State()
	assert.Equal(t, reminder.StateIdle, st.Reminder.State)
	assert.Equal(t, reminder.TransitionSuperseded, st.Reminder.Last)
	require.NotNil(t, st.LastResult)
	assert.Equal(t, 7200.0, st.LastResult.Time.TotalSeconds)
}

func TestSession_ResetAndSetMode(t *testing.T) {
	m, tr := newTestManager()
	s, _ := m.Get("u")
	_, _ = s.RequestPermission(notify.PermissionGranted)

	s.ApplyResult(timeRes(3600))
	_, err := s.ScheduleReminder(5)
	require.NoError(t, err)

	s.Reset()
	assert.True(t, *tr.disarmed[0])
	assert.Nil(t, s.State().LastResult)

	s.ApplyResult(timeRes(3600))
	require.NoError(t, s.SetMode(infusion.ModeTime))
	assert.NotNil(t, s.State().LastResult, "same mode keeps the result")

	require.NoError(t, s.SetMode(infusion.ModeFlow))
	assert.Nil(t, s.State().LastResult)
	assert.Equal(t, infusion.ModeFlow, s.State().Mode)

	assert.ErrorIs(t, s.SetMode("dose"), ErrInvalidInput)
}

func TestSession_RequestPermissionRejectsUnknown(t *testing.T) {
	m, _ := newTestManager()
	s, _ := m.Get("u")

	perm, err := s.RequestPermission("maybe")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, notify.PermissionDefault, perm)

	perm, err = s.RequestPermission(notify.PermissionDenied)
	require.NoError(t, err)
	assert.Equal(t, notify.PermissionDenied, perm)

	s.ApplyResult(timeRes(3600))
	_, err = s.ScheduleReminder(5)
	assert.ErrorIs(t, err, reminder.ErrPermissionDenied)
}

func TestManager_CloseDisarmsEverything(t *testing.T) {
	m, tr := newTestManager()
	for _, uid := range []string{"a", "b"} {
		s, _ := m.Get(uid)
		_, _ = s.RequestPermission(notify.PermissionGranted)
		s.ApplyResult(timeRes(3600))
		_, err := s.ScheduleReminder(1)
		require.NoError(t, err)
	}

	m.Close()
	for _, d := range tr.disarmed {
		assert.True(t, *d)
	}

	_, err := m.Get("c")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.ApplyResult("a", timeRes(1)), ErrClosed)
}

func TestManager_SweepEvictsIdleSessions(t *testing.T) {
	var (
		mu  sync.Mutex
		now = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}

	tr := &stubTrigger{}
	m := NewManager(ManagerOptions{Trigger: tr, Notifier: &countingNotifier{}, Now: clock, IdleTTL: time.Hour})
	t.Cleanup(m.Close)

	idle, _ := m.Get("idle")
	busy, _ := m.Get("busy")
	_, err := busy.RequestPermission(notify.PermissionGranted)
	require.NoError(t, err)
	busy.ApplyResult(timeRes(10 * 3600))
	_, err = busy.ScheduleReminder(5)
	require.NoError(t, err)
	recent, _ := m.Get("recent")

	advance(50 * time.Minute)
	_, _ = m.Get("recent")
	assert.Equal(t, 0, m.Sweep())

	advance(20 * time.Minute)
	assert.Equal(t, 1, m.Sweep())

	// la sesión descartada se recrea limpia
	again, err := m.Get("idle")
	require.NoError(t, err)
	assert.NotSame(t, idle, again)

	stillBusy, _ := m.Get("busy")
	assert.Same(t, busy, stillBusy)
	assert.Equal(t, reminder.StateScheduled, stillBusy.State().Reminder.State)

	stillRecent, _ := m.Get("recent")
	assert.Same(t, recent, stillRecent)
}

func TestManager_SweepDisabledWithoutTTL(t *testing.T) {
	m, _ := newTestManager()
	t.Cleanup(m.Close)

	_, _ = m.Get("u")
	assert.Equal(t, 0, m.Sweep())
}
