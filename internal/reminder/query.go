package reminder

import (
	"cmp"
	"slices"
	"time"
)

const DefaultUpcomingDays = 30

// TodayMedicines lists the medicines scheduled on ref's weekday.
func (s *Store) TodayMedicines(ref time.Time) []Medicine {
	out := []Medicine{}
	for _, m := range s.Medicines() {
		if m.ScheduledOn(ref.Weekday()) {
			out = append(out, m)
		}
	}
	return out
}

// SelectedDate is the day currently being browsed.
func (s *Store) SelectedDate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedDate
}

func (s *Store) SetSelectedDate(d time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedDate = d
}

// UpcomingAppointments returns appointments dated between today and
// today+days inclusive, ordered by date then time. days < 0 means the default.
func (s *Store) UpcomingAppointments(now time.Time, days int) []Appointment {
	if days < 0 {
		days = DefaultUpcomingDays
	}

	from := now.Format(DateLayout)
	to := now.AddDate(0, 0, days).Format(DateLayout)

	out := []Appointment{}
	for _, a := range s.Appointments() {
		if a.Date >= from && a.Date <= to {
			out = append(out, a)
		}
	}

	slices.SortStableFunc(out, func(a, b Appointment) int {
		return cmp.Or(cmp.Compare(a.Date, b.Date), cmp.Compare(a.Time, b.Time))
	})
	return out
}

// LowInventoryMedicines returns every medicine at or below its threshold,
// empty stock included.
func (s *Store) LowInventoryMedicines() []Medicine {
	out := []Medicine{}
	for _, m := range s.Medicines() {
		if IsLow(m) {
			out = append(out, m)
		}
	}
	return out
}

type Progress struct {
	Taken int `json:"taken"`
	Total int `json:"total"`
}

// Percent is 0 when nothing is scheduled.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return p.Taken * 100 / p.Total
}

// DailyProgress counts taken medicines among those scheduled on ref's weekday.
func (s *Store) DailyProgress(ref time.Time) Progress {
	today := s.TodayMedicines(ref)
	p := Progress{Total: len(today)}
	for _, m := range today {
		if m.Taken {
			p.Taken++
		}
	}
	return p
}
