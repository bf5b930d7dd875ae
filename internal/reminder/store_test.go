package reminder

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/medication-reminder/internal/kvstore"
	"github.com/hackgods/medication-reminder/internal/notify"
)

// monday0900 is Monday 1 January 2024, 09:00 local.
var monday0900 = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.Local)

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 100
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return strconv.Itoa(n)
	}
}

func newTestStore(t *testing.T, opts ...StoreOption) (*Store, *kvstore.Memory) {
	t.Helper()
	kv := kvstore.NewMemory()
	s := NewStore(kv, append([]StoreOption{WithIDGenerator(sequentialIDs())}, opts...)...)
	require.NoError(t, s.Load(context.Background()))
	return s, kv
}

func aspirin() MedicineInput {
	return MedicineInput{
		Name:         "Aspirin",
		Type:         TypeTablet,
		Dose:         "100mg",
		Amount:       2,
		ReminderTime: "09:00",
		ReminderDays: []string{"Monday"},
	}
}

// flakyKV fails every Set once failing is switched on, or only the Sets
// of failKey when that is non-empty.
type flakyKV struct {
	*kvstore.Memory
	failing bool
	failKey string
}

var errDiskFull = errors.New("disk full")

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	if f.failing || (f.failKey != "" && key == f.failKey) {
		return errDiskFull
	}
	return f.Memory.Set(ctx, key, value)
}

type recordingSink struct {
	mu  sync.Mutex
	got []notify.Notification
}

func (r *recordingSink) Notify(_ context.Context, n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

func (r *recordingSink) kinds() []notify.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Kind, len(r.got))
	for i, n := range r.got {
		out[i] = n.Kind
	}
	return out
}

func (r *recordingSink) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = nil
}

func TestLoad_SeedsDefaultsWhenEmpty(t *testing.T) {
	s, kv := newTestStore(t)

	meds := s.Medicines()
	require.Len(t, meds, 2)
	assert.Equal(t, "Vitamin D", meds[0].Name)
	assert.Equal(t, "B12 Drops", meds[1].Name)
	assert.Empty(t, s.Appointments())

	_, ok, err := kv.Get(context.Background(), KeyMedicines)
	require.NoError(t, err)
	assert.True(t, ok, "defaults must be persisted right away")
}

func TestLoad_CorruptCollectionReseeds(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	require.NoError(t, kv.Set(ctx, KeyMedicines, "{not json"))
	require.NoError(t, kv.Set(ctx, KeyAppointments, "null"))

	s := NewStore(kv)
	require.NoError(t, s.Load(ctx))

	assert.Equal(t, DefaultMedicines(), s.Medicines())
	assert.Empty(t, s.Appointments())
}

func TestLoad_EmptyListIsKept(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	require.NoError(t, kv.Set(ctx, KeyMedicines, "[]"))

	s := NewStore(kv)
	require.NoError(t, s.Load(ctx))

	assert.Empty(t, s.Medicines())
}

func TestLoad_ClampsNegativeStock(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	require.NoError(t, kv.Set(ctx, KeyMedicines, `[{"id":"9","name":"X","amount":1,"inventory":{"current":-4,"threshold":2}}]`))

	s := NewStore(kv)
	require.NoError(t, s.Load(ctx))

	m, ok := s.Medicine("9")
	require.True(t, ok)
	assert.Equal(t, 0, m.Inventory.Current)
	assert.NotNil(t, m.ReminderDays)
}

func TestRoundTripPersistence(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)

	_, err := s.AddMedicine(ctx, aspirin())
	require.NoError(t, err)
	_, err = s.AddAppointment(ctx, AppointmentInput{
		DoctorName:     "Dr. Smith",
		Specialization: "Cardiology",
		Date:           "2024-01-02",
		Time:           "10:30",
		Notes:          "bring results",
	})
	require.NoError(t, err)

	reloaded := NewStore(kv)
	require.NoError(t, reloaded.Load(ctx))

	assert.Equal(t, s.Medicines(), reloaded.Medicines())
	assert.Equal(t, s.Appointments(), reloaded.Appointments())
}

func TestAddMedicine_Defaults(t *testing.T) {
	s, _ := newTestStore(t)

	m, err := s.AddMedicine(context.Background(), aspirin())
	require.NoError(t, err)

	assert.NotEmpty(t, m.ID)
	assert.False(t, m.Taken)
	assert.Equal(t, Inventory{Current: 30, Threshold: 5}, m.Inventory)

	got, ok := s.Medicine(m.ID)
	require.True(t, ok)
	assert.Equal(t, m, got)
}

func TestAddMedicine_ExplicitInventoryClamped(t *testing.T) {
	s, _ := newTestStore(t)

	in := aspirin()
	in.Inventory = &Inventory{Current: -3, Threshold: 2}
	m, err := s.AddMedicine(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, Inventory{Current: 0, Threshold: 2}, m.Inventory)
}

func TestAddMedicine_SkipsTakenIDs(t *testing.T) {
	ids := []string{"1", "2", "fresh"}
	i := 0
	s, _ := newTestStore(t, WithIDGenerator(func() string {
		id := ids[i]
		i++
		return id
	}))

	m, err := s.AddMedicine(context.Background(), aspirin())
	require.NoError(t, err)
	assert.Equal(t, "fresh", m.ID)
}

func TestUpdateMedicine(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	name := "Vitamin D3"
	days := []string{"Sunday"}
	m, ok, err := s.UpdateMedicine(ctx, "1", MedicinePatch{Name: &name, ReminderDays: &days})
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "Vitamin D3", m.Name)
	assert.Equal(t, []string{"Sunday"}, m.ReminderDays)
	assert.Equal(t, "1000mg", m.Dose, "untouched fields survive")

	days[0] = "Monday"
	got, _ := s.Medicine("1")
	assert.Equal(t, []string{"Sunday"}, got.ReminderDays, "store must not alias caller slices")
}

func TestUpdateMedicine_UnknownID(t *testing.T) {
	s, _ := newTestStore(t)
	before := s.Medicines()

	name := "ghost"
	_, ok, err := s.UpdateMedicine(context.Background(), "nope", MedicinePatch{Name: &name})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, s.Medicines())
}

func TestDelete_Idempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.DeleteMedicine(ctx, "1"))
	require.NoError(t, s.DeleteMedicine(ctx, "1"))
	_, ok := s.Medicine("1")
	assert.False(t, ok)
	assert.Len(t, s.Medicines(), 1)

	require.NoError(t, s.DeleteAppointment(ctx, "missing"))
}

func TestMutation_WriteFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{Memory: kvstore.NewMemory()}
	s := NewStore(kv)
	require.NoError(t, s.Load(ctx))
	before := s.Medicines()

	kv.failing = true

	_, err := s.AddMedicine(ctx, aspirin())
	require.ErrorIs(t, err, errDiskFull)

	_, _, err = s.MarkAsTaken(ctx, "1")
	require.ErrorIs(t, err, errDiskFull)

	require.ErrorIs(t, s.DeleteMedicine(ctx, "2"), errDiskFull)

	assert.Equal(t, before, s.Medicines())
}

func TestAppointment_EditResetsNotified(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	a, err := s.AddAppointment(ctx, AppointmentInput{DoctorName: "Dr. Who", Date: "2024-01-01", Time: "10:00"})
	require.NoError(t, err)
	assert.False(t, a.Notified)

	changed, err := s.setAppointmentNotified(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.setAppointmentNotified(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, changed, "second transition is a no-op")

	notes := "moved"
	updated, ok, err := s.UpdateAppointment(ctx, a.ID, AppointmentPatch{Notes: &notes})
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, updated.Notified)
	assert.Equal(t, "moved", updated.Notes)
}

func TestResetCycle(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)

	changed, err := s.ResetCycle(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.True(t, changed)

	_, _, err = s.MarkAsTaken(ctx, "1")
	require.NoError(t, err)

	changed, err = s.ResetCycle(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.False(t, changed)
	m, _ := s.Medicine("1")
	assert.True(t, m.Taken, "same day keeps taken flags")

	changed, err = s.ResetCycle(ctx, "2024-01-02")
	require.NoError(t, err)
	assert.True(t, changed)
	m, _ = s.Medicine("1")
	assert.False(t, m.Taken)

	day, ok, err := kv.Get(ctx, KeyCycleDay)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2024-01-02", day)
}

func TestResetCycle_CycleDayWriteFailure(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{Memory: kvstore.NewMemory()}
	s := NewStore(kv)
	require.NoError(t, s.Load(ctx))

	_, err := s.ResetCycle(ctx, "2024-01-01")
	require.NoError(t, err)
	_, _, err = s.MarkAsTaken(ctx, "1")
	require.NoError(t, err)

	kv.failKey = KeyCycleDay
	changed, err := s.ResetCycle(ctx, "2024-01-02")
	require.ErrorIs(t, err, errDiskFull)
	assert.True(t, changed)
	assert.Equal(t, "2024-01-02", s.CycleDay())
	m, _ := s.Medicine("1")
	assert.False(t, m.Taken)

	_, _, err = s.MarkAsTaken(ctx, "1")
	require.NoError(t, err)

	changed, err = s.ResetCycle(ctx, "2024-01-02")
	require.ErrorIs(t, err, errDiskFull, "the missing record is retried")
	assert.False(t, changed)
	m, _ = s.Medicine("1")
	assert.True(t, m.Taken, "an intake marked after the reset survives")

	kv.failKey = ""
	changed, err = s.ResetCycle(ctx, "2024-01-02")
	require.NoError(t, err)
	assert.False(t, changed)
	m, _ = s.Medicine("1")
	assert.True(t, m.Taken)

	day, _, err := kv.Get(ctx, KeyCycleDay)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", day)
}

// Two stores over one durable store stand in for api-server and
// reminder-worker running side by side.
func newSharedStores(t *testing.T) (api, worker *Store, kv *kvstore.Memory) {
	t.Helper()
	ctx := context.Background()
	kv = kvstore.NewMemory()

	api = NewStore(kv, WithIDGenerator(sequentialIDs()))
	require.NoError(t, api.Load(ctx))
	worker = NewStore(kv)
	require.NoError(t, worker.Load(ctx))

	return api, worker, kv
}

func TestSharedStore_MutationsKeepOtherWriters(t *testing.T) {
	ctx := context.Background()
	api, worker, _ := newSharedStores(t)

	added, err := api.AddMedicine(ctx, aspirin())
	require.NoError(t, err)
	appt, err := api.AddAppointment(ctx, AppointmentInput{DoctorName: "Dr. House", Date: "2024-01-01", Time: "10:00"})
	require.NoError(t, err)

	_, ok, err := worker.MarkAsTaken(ctx, "1")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = worker.AddAppointment(ctx, AppointmentInput{DoctorName: "Dr. Grey", Date: "2024-01-02", Time: "11:00"})
	require.NoError(t, err)

	reloaded := NewStore(worker.kv)
	require.NoError(t, reloaded.Load(ctx))

	_, ok = reloaded.Medicine(added.ID)
	assert.True(t, ok, "medicine added through the other store is persisted")
	m, _ := reloaded.Medicine("1")
	assert.True(t, m.Taken)
	assert.Len(t, reloaded.Medicines(), 3)

	_, ok = reloaded.Appointment(appt.ID)
	assert.True(t, ok)
	assert.Len(t, reloaded.Appointments(), 2)

	_, ok, err = api.UpdateMedicine(ctx, added.ID, MedicinePatch{})
	require.NoError(t, err)
	require.True(t, ok)
	m, _ = api.Medicine("1")
	assert.True(t, m.Taken, "a later write through the first store keeps the intake")
}

func TestSharedStore_ResetCycleRunsOncePerDay(t *testing.T) {
	ctx := context.Background()
	api, worker, _ := newSharedStores(t)

	_, err := api.ResetCycle(ctx, "2024-01-01")
	require.NoError(t, err)
	_, err = worker.ResetCycle(ctx, "2024-01-01")
	require.NoError(t, err)

	changed, err := worker.ResetCycle(ctx, "2024-01-02")
	require.NoError(t, err)
	assert.True(t, changed)

	_, _, err = api.MarkAsTaken(ctx, "1")
	require.NoError(t, err)

	changed, err = api.ResetCycle(ctx, "2024-01-02")
	require.NoError(t, err)
	assert.False(t, changed, "the day was already started by the other store")

	require.NoError(t, worker.Refresh(ctx))
	m, _ := worker.Medicine("1")
	assert.True(t, m.Taken)
}
