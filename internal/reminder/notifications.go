package reminder

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/medication-reminder/internal/notify"
)

const (
	reminderDuration    = 10 * time.Second
	takenDuration       = 3 * time.Second
	appointmentDuration = 10 * time.Second
	lowStockDuration    = 8 * time.Second
)

// MedicineReminderNotification builds the "time to take" alert. take, when
// set, becomes the in-process handler of the "Take now" action.
func MedicineReminderNotification(m Medicine, now time.Time, take func(ctx context.Context) error) notify.Notification {
	unit := string(m.Type)
	if m.Amount > 1 {
		unit += "s"
	}

	return notify.Notification{
		ID:         uuid.NewString(),
		Kind:       notify.KindMedicineReminder,
		SubjectID:  m.ID,
		Title:      "Medicine Reminder",
		Body:       fmt.Sprintf("Time to take %d %s of %s", m.Amount, unit, m.Name),
		DurationMs: reminderDuration.Milliseconds(),
		Action: &notify.Action{
			Label:    "Take now",
			Href:     "/medicines/" + m.ID + "/take",
			OnInvoke: take,
		},
		CreatedAt: now,
	}
}

func TakenNotification(m Medicine, now time.Time) notify.Notification {
	return notify.Notification{
		ID:         uuid.NewString(),
		Kind:       notify.KindMedicineTaken,
		SubjectID:  m.ID,
		Title:      "Medicine Taken",
		Body:       fmt.Sprintf("You've taken your %s for today", m.Name),
		DurationMs: takenDuration.Milliseconds(),
		CreatedAt:  now,
	}
}

func AppointmentNotification(a Appointment, now time.Time) notify.Notification {
	body := fmt.Sprintf("Appointment with %s at %s", a.DoctorName, a.Time)
	if a.Specialization != "" {
		body = fmt.Sprintf("Appointment with %s (%s) at %s", a.DoctorName, a.Specialization, a.Time)
	}
	if at, err := a.At(now.Location()); err == nil {
		body += fmt.Sprintf(", in %d min", int(math.Ceil(at.Sub(now).Minutes())))
	}

	return notify.Notification{
		ID:         uuid.NewString(),
		Kind:       notify.KindAppointmentAlert,
		SubjectID:  a.ID,
		Title:      "Upcoming Appointment",
		Body:       body,
		DurationMs: appointmentDuration.Milliseconds(),
		Action: &notify.Action{
			Label: "View",
			Href:  "/appointments/" + a.ID,
		},
		CreatedAt: now,
	}
}

func LowInventoryNotification(m Medicine, now time.Time) notify.Notification {
	return notify.Notification{
		ID:         uuid.NewString(),
		Kind:       notify.KindLowInventory,
		SubjectID:  m.ID,
		Title:      "Low Inventory",
		Body:       fmt.Sprintf("Only %d left of %s, time to restock", m.Inventory.Current, m.Name),
		DurationMs: lowStockDuration.Milliseconds(),
		Action: &notify.Action{
			Label: "Restock",
			Href:  "/medicines/" + m.ID + "/restock",
		},
		CreatedAt: now,
	}
}

// TakeAndConfirm marks the medicine taken and, when it exists, sends the
// confirmation to sink.
func TakeAndConfirm(ctx context.Context, store *Store, sink notify.Sink, id string, now time.Time) (Medicine, bool, error) {
	m, ok, err := store.MarkAsTaken(ctx, id)
	if err != nil || !ok {
		return m, ok, err
	}
	if sink != nil {
		sink.Notify(ctx, TakenNotification(m, now))
	}
	return m, true, nil
}
