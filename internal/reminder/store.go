package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/medication-reminder/internal/logger"
)

const (
	KeyMedicines    = "medicines"
	KeyAppointments = "appointments"
	KeyCycleDay     = "cycle_day"
)

// KV is the durable key-value store the Store writes through to.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Store is the single owner of the medicine and appointment collections.
// Every mutation persists the whole affected collection before it becomes
// visible; when the write fails the in-memory state is left unchanged.
type Store struct {
	kv           KV
	newID        func() string
	restockUnits int

	mu           sync.RWMutex
	medicines    []Medicine
	appointments []Appointment
	cycleDay     string
	selectedDate time.Time
}

type StoreOption func(*Store)

// WithIDGenerator replaces uuid based ids, mostly for tests.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) { s.newID = fn }
}

// WithRestockUnits sets the amount Restock adds when called without one.
func WithRestockUnits(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.restockUnits = n
		}
	}
}

func NewStore(kv KV, opts ...StoreOption) *Store {
	s := &Store{
		kv:           kv,
		newID:        uuid.NewString,
		restockUnits: DefaultRestockUnits,
		medicines:    []Medicine{},
		appointments: []Appointment{},
		selectedDate: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads both collections from the durable store. A collection that is
// missing or cannot be decoded is replaced by the default dataset, which is
// written back immediately.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meds, err := loadCollection(ctx, s.kv, KeyMedicines, DefaultMedicines)
	if err != nil {
		return err
	}
	for i := range meds {
		meds[i] = normalizeMedicine(meds[i])
	}

	appts, err := loadCollection(ctx, s.kv, KeyAppointments, DefaultAppointments)
	if err != nil {
		return err
	}

	day, _, err := s.kv.Get(ctx, KeyCycleDay)
	if err != nil {
		return fmt.Errorf("read %s: %w", KeyCycleDay, err)
	}

	s.medicines = meds
	s.appointments = appts
	s.cycleDay = day

	logger.Logger.Info().
		Int("medicines", len(meds)).
		Int("appointments", len(appts)).
		Str("cycle_day", day).
		Msg("store loaded")

	return nil
}

func loadCollection[T any](ctx context.Context, kv KV, key string, seed func() []T) ([]T, error) {
	items, ok, err := readCollection[T](ctx, kv, key)
	if err != nil {
		return nil, err
	}
	if ok {
		return items, nil
	}

	items = seed()
	if err := writeCollection(ctx, kv, key, items); err != nil {
		return nil, err
	}
	return items, nil
}

// readCollection reports ok=false when the key is missing or holds
// something that does not decode into a list.
func readCollection[T any](ctx context.Context, kv KV, key string) ([]T, bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		logger.Logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable collection")
		return nil, false, nil
	}
	return items, true, nil
}

func writeCollection[T any](ctx context.Context, kv KV, key string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func normalizeMedicine(m Medicine) Medicine {
	m = m.clone()
	m.Inventory.Current = clampStock(m.Inventory.Current)
	return m
}

// Refresh re-reads both collections and the cycle day so that writes made
// by another process sharing the durable store become visible.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshMedicines(ctx); err != nil {
		return err
	}
	if err := s.refreshAppointments(ctx); err != nil {
		return err
	}
	_, err := s.refreshCycleDay(ctx)
	return err
}

// The refresh helpers must be called with s.mu held. Every mutation starts
// from the persisted collection, never from a copy that may have drifted.
// A missing or unreadable collection keeps the in-memory one.

func (s *Store) refreshMedicines(ctx context.Context) error {
	meds, ok, err := readCollection[Medicine](ctx, s.kv, KeyMedicines)
	if err != nil || !ok {
		return err
	}
	for i := range meds {
		meds[i] = normalizeMedicine(meds[i])
	}
	s.medicines = meds
	return nil
}

func (s *Store) refreshAppointments(ctx context.Context) error {
	appts, ok, err := readCollection[Appointment](ctx, s.kv, KeyAppointments)
	if err != nil || !ok {
		return err
	}
	s.appointments = appts
	return nil
}

// refreshCycleDay adopts the persisted cycle day when it is later than the
// in-memory one and returns the persisted value.
func (s *Store) refreshCycleDay(ctx context.Context) (string, error) {
	day, _, err := s.kv.Get(ctx, KeyCycleDay)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", KeyCycleDay, err)
	}
	if day > s.cycleDay {
		s.cycleDay = day
	}
	return day, nil
}

// freshID must be called with s.mu held.
func (s *Store) freshID() string {
	for {
		id := s.newID()
		if s.medicineIndex(id) < 0 && s.appointmentIndex(id) < 0 {
			return id
		}
	}
}

func (s *Store) medicineIndex(id string) int {
	return slices.IndexFunc(s.medicines, func(m Medicine) bool { return m.ID == id })
}

func (s *Store) appointmentIndex(id string) int {
	return slices.IndexFunc(s.appointments, func(a Appointment) bool { return a.ID == id })
}

// Medicines

func (s *Store) AddMedicine(ctx context.Context, in MedicineInput) (Medicine, error) {
	inv := DefaultInventory()
	if in.Inventory != nil {
		inv = Inventory{Current: clampStock(in.Inventory.Current), Threshold: in.Inventory.Threshold}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshMedicines(ctx); err != nil {
		return Medicine{}, err
	}

	m := Medicine{
		ID:           s.freshID(),
		Name:         in.Name,
		Type:         in.Type,
		Dose:         in.Dose,
		Amount:       in.Amount,
		ReminderTime: in.ReminderTime,
		ReminderDays: in.ReminderDays,
		Taken:        false,
		Inventory:    inv,
	}.clone()

	next := append(slices.Clone(s.medicines), m)
	if err := writeCollection(ctx, s.kv, KeyMedicines, next); err != nil {
		return Medicine{}, err
	}
	s.medicines = next

	return m.clone(), nil
}

// UpdateMedicine merges patch into the medicine. ok is false when id is unknown.
func (s *Store) UpdateMedicine(ctx context.Context, id string, patch MedicinePatch) (Medicine, bool, error) {
	return s.modifyMedicine(ctx, id, patch.apply)
}

// DeleteMedicine removes the medicine; deleting an unknown id is a no-op.
func (s *Store) DeleteMedicine(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshMedicines(ctx); err != nil {
		return err
	}

	i := s.medicineIndex(id)
	if i < 0 {
		return nil
	}

	next := slices.Delete(slices.Clone(s.medicines), i, i+1)
	if err := writeCollection(ctx, s.kv, KeyMedicines, next); err != nil {
		return err
	}
	s.medicines = next
	return nil
}

func (s *Store) Medicine(id string) (Medicine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.medicineIndex(id)
	if i < 0 {
		return Medicine{}, false
	}
	return s.medicines[i].clone(), true
}

func (s *Store) Medicines() []Medicine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Medicine, len(s.medicines))
	for i, m := range s.medicines {
		out[i] = m.clone()
	}
	return out
}

func (s *Store) modifyMedicine(ctx context.Context, id string, fn func(*Medicine)) (Medicine, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshMedicines(ctx); err != nil {
		return Medicine{}, false, err
	}

	i := s.medicineIndex(id)
	if i < 0 {
		return Medicine{}, false, nil
	}

	next := slices.Clone(s.medicines)
	m := next[i].clone()
	fn(&m)
	next[i] = m

	if err := writeCollection(ctx, s.kv, KeyMedicines, next); err != nil {
		return Medicine{}, true, err
	}
	s.medicines = next

	return m.clone(), true, nil
}

// Appointments

func (s *Store) AddAppointment(ctx context.Context, in AppointmentInput) (Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshAppointments(ctx); err != nil {
		return Appointment{}, err
	}

	a := Appointment{
		ID:             s.freshID(),
		DoctorName:     in.DoctorName,
		Specialization: in.Specialization,
		Date:           in.Date,
		Time:           in.Time,
		Notes:          in.Notes,
		Notified:       false,
	}

	next := append(slices.Clone(s.appointments), a)
	if err := writeCollection(ctx, s.kv, KeyAppointments, next); err != nil {
		return Appointment{}, err
	}
	s.appointments = next

	return a, nil
}

// UpdateAppointment merges patch and re-arms the pre-appointment alert.
func (s *Store) UpdateAppointment(ctx context.Context, id string, patch AppointmentPatch) (Appointment, bool, error) {
	return s.modifyAppointment(ctx, id, func(a *Appointment) bool {
		patch.apply(a)
		return true
	})
}

func (s *Store) DeleteAppointment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshAppointments(ctx); err != nil {
		return err
	}

	i := s.appointmentIndex(id)
	if i < 0 {
		return nil
	}

	next := slices.Delete(slices.Clone(s.appointments), i, i+1)
	if err := writeCollection(ctx, s.kv, KeyAppointments, next); err != nil {
		return err
	}
	s.appointments = next
	return nil
}

func (s *Store) Appointment(id string) (Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.appointmentIndex(id)
	if i < 0 {
		return Appointment{}, false
	}
	return s.appointments[i], true
}

func (s *Store) Appointments() []Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.appointments)
}

// setAppointmentNotified performs the one-shot false->true transition. It reports
// false when the appointment is gone or was already notified.
func (s *Store) setAppointmentNotified(ctx context.Context, id string) (bool, error) {
	changed := false
	_, _, err := s.modifyAppointment(ctx, id, func(a *Appointment) bool {
		if a.Notified {
			return false
		}
		a.Notified = true
		changed = true
		return true
	})
	return changed, err
}

// modifyAppointment persists only when fn reports a change.
func (s *Store) modifyAppointment(ctx context.Context, id string, fn func(*Appointment) bool) (Appointment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshAppointments(ctx); err != nil {
		return Appointment{}, false, err
	}

	i := s.appointmentIndex(id)
	if i < 0 {
		return Appointment{}, false, nil
	}

	a := s.appointments[i]
	if !fn(&a) {
		return a, true, nil
	}

	next := slices.Clone(s.appointments)
	next[i] = a
	if err := writeCollection(ctx, s.kv, KeyAppointments, next); err != nil {
		return Appointment{}, true, err
	}
	s.appointments = next

	return a, true, nil
}

// Daily cycle

// ResetCycle starts a new intake day: when day differs from the recorded
// cycle day every Taken flag is cleared and day becomes the cycle day.
// It reports whether a reset happened. Once the flags are cleared the day
// counts as started even if recording it fails; the record is retried on the
// next call.
func (s *Store) ResetCycle(ctx context.Context, day string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.refreshCycleDay(ctx)
	if err != nil {
		return false, err
	}

	if s.cycleDay == day {
		if stored != day {
			if err := s.kv.Set(ctx, KeyCycleDay, day); err != nil {
				return false, fmt.Errorf("write %s: %w", KeyCycleDay, err)
			}
		}
		return false, nil
	}

	if err := s.refreshMedicines(ctx); err != nil {
		return false, err
	}

	next := make([]Medicine, len(s.medicines))
	dirty := false
	for i, m := range s.medicines {
		m = m.clone()
		if m.Taken {
			m.Taken = false
			dirty = true
		}
		next[i] = m
	}

	if dirty {
		if err := writeCollection(ctx, s.kv, KeyMedicines, next); err != nil {
			return false, err
		}
		s.medicines = next
	}
	s.cycleDay = day

	if err := s.kv.Set(ctx, KeyCycleDay, day); err != nil {
		return true, fmt.Errorf("write %s: %w", KeyCycleDay, err)
	}

	return true, nil
}

func (s *Store) CycleDay() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cycleDay
}
