package reminder

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/medication-reminder/internal/notify"
)

type countingRecorder struct {
	ticks atomic.Int32
	sent  atomic.Int32
	low   atomic.Int32
}

func (r *countingRecorder) TickObserved(time.Duration) { r.ticks.Add(1) }
func (r *countingRecorder) NotificationSent(notify.Kind) { r.sent.Add(1) }
func (r *countingRecorder) LowInventory(n int) { r.low.Store(int32(n)) }

type brokenSuppressor struct{}

func (brokenSuppressor) Suppressed(context.Context, string, time.Time) (bool, error) {
	return false, errors.New("redis down")
}

func (brokenSuppressor) Suppress(context.Context, string, time.Time, time.Duration) error {
	return errors.New("redis down")
}

func TestScheduler_AspirinMonday(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	sink := &recordingSink{}
	sched := NewScheduler(s, sink, SchedulerOptions{})

	m, err := s.AddMedicine(ctx, aspirin())
	require.NoError(t, err)
	assert.Equal(t, Inventory{Current: 30, Threshold: 5}, m.Inventory)
	assert.False(t, m.Taken)

	due := sched.Tick(ctx, monday0900)
	require.Len(t, due.Medicines, 1)
	assert.Equal(t, m.ID, due.Medicines[0].ID)

	require.Len(t, sink.got, 1)
	n := sink.got[0]
	assert.Equal(t, notify.KindMedicineReminder, n.Kind)
	assert.Equal(t, "Medicine Reminder", n.Title)
	assert.Equal(t, "Time to take 2 Tablets of Aspirin", n.Body)
	assert.Equal(t, int64(10000), n.DurationMs)
	require.NotNil(t, n.Action)
	assert.Equal(t, "Take now", n.Action.Label)

	taken, ok, err := s.MarkAsTaken(ctx, m.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 28, taken.Inventory.Current)

	later := Evaluate(s.Medicines(), nil, monday0900.Add(20*time.Second), nil, EvalOptions{})
	assert.Empty(t, later.Medicines)
}

func TestScheduler_TakeNowAction(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	sink := &recordingSink{}
	sched := NewScheduler(s, sink, SchedulerOptions{Clock: func() time.Time { return monday0900 }})

	m, err := s.AddMedicine(ctx, aspirin())
	require.NoError(t, err)

	sched.Tick(ctx, monday0900)
	require.Len(t, sink.got, 1)

	require.NoError(t, sink.got[0].Action.OnInvoke(ctx))

	got, _ := s.Medicine(m.ID)
	assert.True(t, got.Taken)
	assert.Equal(t, 28, got.Inventory.Current)

	require.Len(t, sink.got, 2)
	assert.Equal(t, notify.KindMedicineTaken, sink.got[1].Kind)
	assert.Equal(t, "You've taken your Aspirin for today", sink.got[1].Body)
	assert.Equal(t, int64(3000), sink.got[1].DurationMs)
}

func TestScheduler_SameMinuteDedup(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	sink := &recordingSink{}
	sched := NewScheduler(s, sink, SchedulerOptions{})

	_, err := s.AddMedicine(ctx, aspirin())
	require.NoError(t, err)

	first := sched.Tick(ctx, monday0900)
	second := sched.Tick(ctx, monday0900.Add(30*time.Second))

	assert.Len(t, first.Medicines, 1)
	assert.Empty(t, second.Medicines)
	assert.Len(t, sink.got, 1)

	next := sched.Tick(ctx, monday0900.Add(time.Minute))
	assert.Empty(t, next.Medicines, "09:01 no longer matches")
}

func TestScheduler_AppointmentOneShot(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	sink := &recordingSink{}
	sched := NewScheduler(s, sink, SchedulerOptions{})

	a, err := s.AddAppointment(ctx, AppointmentInput{
		DoctorName:     "Dr. Smith",
		Specialization: "Cardiology",
		Date:           "2024-01-01",
		Time:           "09:45",
	})
	require.NoError(t, err)

	due := sched.Tick(ctx, monday0900)
	require.Len(t, due.Appointments, 1)
	got, _ := s.Appointment(a.ID)
	assert.True(t, got.Notified)

	due = sched.Tick(ctx, monday0900.Add(time.Minute))
	assert.Empty(t, due.Appointments, "fires once")

	newTime := "09:50"
	_, _, err = s.UpdateAppointment(ctx, a.ID, AppointmentPatch{Time: &newTime})
	require.NoError(t, err)

	due = sched.Tick(ctx, monday0900.Add(2*time.Minute))
	assert.Len(t, due.Appointments, 1, "an edit re-arms the alert")

	assert.Equal(t, []notify.Kind{notify.KindAppointmentAlert, notify.KindAppointmentAlert}, sink.kinds())
	assert.Equal(t, "Appointment with Dr. Smith (Cardiology) at 09:45, in 45 min", sink.got[0].Body)
}

func TestScheduler_LowInventorySuppressedForTheDay(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	sink := &recordingSink{}
	rec := &countingRecorder{}
	sched := NewScheduler(s, sink, SchedulerOptions{Recorder: rec})

	_, _, err := s.UpdateInventory(ctx, "1", 4)
	require.NoError(t, err)

	due := sched.Tick(ctx, monday0900)
	require.Len(t, due.LowInventory, 1)
	assert.Equal(t, "1", due.LowInventory[0].ID)
	assert.Equal(t, int32(1), rec.low.Load())

	due = sched.Tick(ctx, monday0900.Add(3*time.Hour))
	assert.Empty(t, due.LowInventory)

	sink.reset()
	due = sched.Tick(ctx, monday0900.AddDate(0, 0, 1))
	assert.Len(t, due.LowInventory, 1, "a new day alerts again")
	assert.Equal(t, []notify.Kind{notify.KindLowInventory}, sink.kinds())
}

func TestScheduler_BrokenSuppressorStaysQuiet(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	sink := &recordingSink{}
	sched := NewScheduler(s, sink, SchedulerOptions{Suppressor: brokenSuppressor{}})

	_, _, err := s.UpdateInventory(ctx, "1", 1)
	require.NoError(t, err)

	due := sched.Tick(ctx, monday0900)
	assert.Empty(t, due.LowInventory)
}

func TestScheduler_ResetsTakenOnNewDay(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	sched := NewScheduler(s, &recordingSink{}, SchedulerOptions{})

	sched.Tick(ctx, monday0900)
	_, _, err := s.MarkAsTaken(ctx, "1")
	require.NoError(t, err)

	sched.Tick(ctx, monday0900.Add(time.Hour))
	m, _ := s.Medicine("1")
	assert.True(t, m.Taken)

	sched.Tick(ctx, monday0900.AddDate(0, 0, 1))
	m, _ = s.Medicine("1")
	assert.False(t, m.Taken)
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	s, _ := newTestStore(t)
	rec := &countingRecorder{}
	sched := NewScheduler(s, &recordingSink{}, SchedulerOptions{Interval: 5 * time.Millisecond, Recorder: rec})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return rec.ticks.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}

	stopped := rec.ticks.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, rec.ticks.Load(), "no ticks after cancellation")
}

func TestScheduler_SeesMedicinesAddedElsewhere(t *testing.T) {
	ctx := context.Background()
	api, worker, _ := newSharedStores(t)
	sink := &recordingSink{}
	sched := NewScheduler(worker, sink, SchedulerOptions{})

	added, err := api.AddMedicine(ctx, aspirin())
	require.NoError(t, err)

	due := sched.Tick(ctx, monday0900)
	require.Len(t, due.Medicines, 1)
	assert.Equal(t, added.ID, due.Medicines[0].ID)

	_, _, err = api.MarkAsTaken(ctx, added.ID)
	require.NoError(t, err)
	later, err := api.AddMedicine(ctx, aspirin())
	require.NoError(t, err)

	sched.Tick(ctx, monday0900.AddDate(0, 0, 1))

	require.NoError(t, api.Refresh(ctx))
	m, ok := api.Medicine(added.ID)
	require.True(t, ok)
	assert.False(t, m.Taken)
	_, ok = api.Medicine(later.ID)
	assert.True(t, ok, "the daily reset keeps medicines added after the last tick")
}
