package reminder

import "time"

const DefaultLeadWindow = time.Hour

type EvalOptions struct {
	// LeadWindow is how far ahead of an appointment its alert may fire.
	LeadWindow time.Duration
}

// Due is the outcome of one evaluation.
type Due struct {
	Medicines    []Medicine
	Appointments []Appointment
	LowInventory []Medicine
}

func (d Due) Empty() bool {
	return len(d.Medicines) == 0 && len(d.Appointments) == 0 && len(d.LowInventory) == 0
}

// Evaluate computes what is due at now. It has no side effects; suppressed
// may be nil, in which case no low inventory alert is silenced.
func Evaluate(meds []Medicine, appts []Appointment, now time.Time, suppressed func(medicineID string, now time.Time) bool, opts EvalOptions) Due {
	if opts.LeadWindow <= 0 {
		opts.LeadWindow = DefaultLeadWindow
	}

	var due Due
	for _, m := range meds {
		if MedicineDue(m, now) {
			due.Medicines = append(due.Medicines, m)
		}
		if LowStockAlert(m) && (suppressed == nil || !suppressed(m.ID, now)) {
			due.LowInventory = append(due.LowInventory, m)
		}
	}

	for _, a := range appts {
		if AppointmentDue(a, now, opts.LeadWindow) {
			due.Appointments = append(due.Appointments, a)
		}
	}

	return due
}

// MedicineDue matches on the exact wall clock minute of now.
func MedicineDue(m Medicine, now time.Time) bool {
	return !m.Taken &&
		m.ScheduledOn(now.Weekday()) &&
		m.ReminderTime == now.Format(ClockLayout)
}

// AppointmentDue reports an un-notified appointment later today that starts
// within lead of now.
func AppointmentDue(a Appointment, now time.Time, lead time.Duration) bool {
	if a.Notified || a.Date != now.Format(DateLayout) {
		return false
	}

	at, err := a.At(now.Location())
	if err != nil {
		return false
	}

	until := at.Sub(now)
	return until > 0 && until <= lead
}

// LowStockAlert is stricter than IsLow: an empty stock raises no alert.
func LowStockAlert(m Medicine) bool {
	return IsLow(m) && m.Inventory.Current > 0
}
