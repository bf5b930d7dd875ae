package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vitaminD() Medicine {
	return Medicine{
		ID:           "1",
		Name:         "Vitamin D",
		Type:         TypeCapsule,
		Amount:       1,
		ReminderTime: "07:00",
		ReminderDays: []string{"Monday", "Wednesday", "Friday"},
		Inventory:    DefaultInventory(),
	}
}

func TestEvaluate_ExactMinute(t *testing.T) {
	monday0700 := time.Date(2024, time.January, 1, 7, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"on the minute", monday0700, true},
		{"late in the minute", monday0700.Add(59 * time.Second), true},
		{"one minute early", monday0700.Add(-time.Minute), false},
		{"one minute late", monday0700.Add(time.Minute), false},
		{"wrong weekday", monday0700.AddDate(0, 0, 1), false},
		{"scheduled weekday", monday0700.AddDate(0, 0, 2), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due := Evaluate([]Medicine{vitaminD()}, nil, tt.now, nil, EvalOptions{})
			assert.Equal(t, tt.want, len(due.Medicines) == 1)
		})
	}
}

func TestEvaluate_TakenExcluded(t *testing.T) {
	m := vitaminD()
	m.Taken = true

	due := Evaluate([]Medicine{m}, nil, time.Date(2024, time.January, 1, 7, 0, 0, 0, time.Local), nil, EvalOptions{})
	assert.Empty(t, due.Medicines)
}

func TestEvaluate_AppointmentWindow(t *testing.T) {
	appt := Appointment{ID: "a", DoctorName: "Dr. Smith", Date: "2024-01-01", Time: "10:00"}
	at := time.Date(2024, time.January, 1, 10, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		now  time.Time
		appt Appointment
		want bool
	}{
		{"exactly sixty minutes ahead", at.Add(-time.Hour), appt, true},
		{"sixty one minutes ahead", at.Add(-61 * time.Minute), appt, false},
		{"one minute ahead", at.Add(-time.Minute), appt, true},
		{"at the appointment", at, appt, false},
		{"already started", at.Add(time.Minute), appt, false},
		{"already notified", at.Add(-30 * time.Minute), Appointment{ID: "a", Date: "2024-01-01", Time: "10:00", Notified: true}, false},
		{"other day", at.Add(-30 * time.Minute), Appointment{ID: "a", Date: "2024-01-02", Time: "10:00"}, false},
		{"unparseable time", at.Add(-30 * time.Minute), Appointment{ID: "a", Date: "2024-01-01", Time: "ten"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due := Evaluate(nil, []Appointment{tt.appt}, tt.now, nil, EvalOptions{LeadWindow: time.Hour})
			assert.Equal(t, tt.want, len(due.Appointments) == 1)
		})
	}
}

func TestEvaluate_LowInventory(t *testing.T) {
	now := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.Local)

	atThreshold := vitaminD()
	atThreshold.ID = "low"
	atThreshold.Inventory = Inventory{Current: 5, Threshold: 5}

	above := vitaminD()
	above.ID = "ok"
	above.Inventory = Inventory{Current: 6, Threshold: 5}

	empty := vitaminD()
	empty.ID = "empty"
	empty.Inventory = Inventory{Current: 0, Threshold: 5}

	due := Evaluate([]Medicine{atThreshold, above, empty}, nil, now, nil, EvalOptions{})
	require.Len(t, due.LowInventory, 1)
	assert.Equal(t, "low", due.LowInventory[0].ID)

	var asked []string
	suppressed := func(id string, _ time.Time) bool {
		asked = append(asked, id)
		return true
	}
	due = Evaluate([]Medicine{atThreshold}, nil, now, suppressed, EvalOptions{})
	assert.Empty(t, due.LowInventory)
	assert.Equal(t, []string{"low"}, asked)
}

func TestEvaluate_IsPure(t *testing.T) {
	meds := []Medicine{vitaminD()}
	now := time.Date(2024, time.January, 1, 7, 0, 0, 0, time.Local)

	first := Evaluate(meds, nil, now, nil, EvalOptions{})
	second := Evaluate(meds, nil, now, nil, EvalOptions{})

	assert.Equal(t, first, second)
	assert.False(t, meds[0].Taken)
}
