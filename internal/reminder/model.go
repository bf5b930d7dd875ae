package reminder

import (
	"slices"
	"time"
)

const (
	ClockLayout  = "15:04"
	DateLayout   = "2006-01-02"
	minuteLayout = "2006-01-02 15:04"
)

type MedicineType string

const (
	TypeCapsule   MedicineType = "Capsule"
	TypeTablet    MedicineType = "Tablet"
	TypeDrop      MedicineType = "Drop"
	TypeLiquid    MedicineType = "Liquid"
	TypeInjection MedicineType = "Injection"
)

var MedicineTypes = []MedicineType{TypeCapsule, TypeTablet, TypeDrop, TypeLiquid, TypeInjection}

const (
	DefaultInventoryCurrent   = 30
	DefaultInventoryThreshold = 5
)

type Inventory struct {
	Current   int `json:"current"`
	Threshold int `json:"threshold"`
}

func DefaultInventory() Inventory {
	return Inventory{Current: DefaultInventoryCurrent, Threshold: DefaultInventoryThreshold}
}

type Medicine struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Type         MedicineType `json:"type"`
	Dose         string       `json:"dose"`
	Amount       int          `json:"amount"`
	ReminderTime string       `json:"reminderTime"` // HH:MM, 24h
	ReminderDays []string     `json:"reminderDays"` // English weekday names
	Taken        bool         `json:"taken"`
	Inventory    Inventory    `json:"inventory"`
}

// ScheduledOn reports whether the reminder fires on the given weekday.
func (m Medicine) ScheduledOn(day time.Weekday) bool {
	return slices.Contains(m.ReminderDays, day.String())
}

func (m Medicine) clone() Medicine {
	m.ReminderDays = slices.Clone(m.ReminderDays)
	if m.ReminderDays == nil {
		m.ReminderDays = []string{}
	}
	return m
}

type Appointment struct {
	ID             string `json:"id"`
	DoctorName     string `json:"doctorName"`
	Specialization string `json:"specialization"`
	Date           string `json:"date"` // YYYY-MM-DD
	Time           string `json:"time"` // HH:MM
	Notes          string `json:"notes"`
	Notified       bool   `json:"notified"`
}

// At returns the appointment instant in loc.
func (a Appointment) At(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(minuteLayout, a.Date+" "+a.Time, loc)
}

// MedicineInput is the payload of AddMedicine. A nil Inventory means the default stock.
type MedicineInput struct {
	Name         string
	Type         MedicineType
	Dose         string
	Amount       int
	ReminderTime string
	ReminderDays []string
	Inventory    *Inventory
}

// MedicinePatch carries the fields to merge; nil fields are left untouched.
type MedicinePatch struct {
	Name         *string
	Type         *MedicineType
	Dose         *string
	Amount       *int
	ReminderTime *string
	ReminderDays *[]string
	Taken        *bool
	Inventory    *Inventory
}

func (p MedicinePatch) apply(m *Medicine) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Type != nil {
		m.Type = *p.Type
	}
	if p.Dose != nil {
		m.Dose = *p.Dose
	}
	if p.Amount != nil {
		m.Amount = *p.Amount
	}
	if p.ReminderTime != nil {
		m.ReminderTime = *p.ReminderTime
	}
	if p.ReminderDays != nil {
		m.ReminderDays = slices.Clone(*p.ReminderDays)
	}
	if p.Taken != nil {
		m.Taken = *p.Taken
	}
	if p.Inventory != nil {
		m.Inventory = Inventory{Current: clampStock(p.Inventory.Current), Threshold: p.Inventory.Threshold}
	}
}

type AppointmentInput struct {
	DoctorName     string
	Specialization string
	Date           string
	Time           string
	Notes          string
}

type AppointmentPatch struct {
	DoctorName     *string
	Specialization *string
	Date           *string
	Time           *string
	Notes          *string
}

func (p AppointmentPatch) apply(a *Appointment) {
	if p.DoctorName != nil {
		a.DoctorName = *p.DoctorName
	}
	if p.Specialization != nil {
		a.Specialization = *p.Specialization
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.Time != nil {
		a.Time = *p.Time
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
	// any edit re-arms the one-shot alert
	a.Notified = false
}

// DefaultMedicines is the dataset a brand new store starts with.
func DefaultMedicines() []Medicine {
	return []Medicine{
		{
			ID:           "1",
			Name:         "Vitamin D",
			Type:         TypeCapsule,
			Dose:         "1000mg",
			Amount:       1,
			ReminderTime: "07:00",
			ReminderDays: []string{"Monday", "Wednesday", "Friday"},
			Inventory:    DefaultInventory(),
		},
		{
			ID:           "2",
			Name:         "B12 Drops",
			Type:         TypeDrop,
			Dose:         "500mg",
			Amount:       5,
			ReminderTime: "06:13",
			ReminderDays: []string{"Tuesday", "Thursday"},
			Inventory:    DefaultInventory(),
		},
	}
}

// DefaultAppointments seeds no appointments.
func DefaultAppointments() []Appointment {
	return []Appointment{}
}
