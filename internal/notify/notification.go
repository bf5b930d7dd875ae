// Package notify defines the notification payload produced by the scheduler
// and the sinks that deliver it.
package notify

import (
	"context"
	"time"
)

type Kind string

const (
	KindMedicineReminder Kind = "medicine_reminder"
	KindMedicineTaken    Kind = "medicine_taken"
	KindAppointmentAlert Kind = "appointment_alert"
	KindLowInventory     Kind = "low_inventory"
)

// Action is the optional button attached to a notification.
type Action struct {
	Label string `json:"label"`
	Href  string `json:"href,omitempty"`

	// OnInvoke runs the action in process; sinks that cannot call back expose Href instead.
	OnInvoke func(ctx context.Context) error `json:"-"`
}

type Notification struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	SubjectID  string    `json:"subjectId,omitempty"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	DurationMs int64     `json:"durationMs"`
	Action     *Action   `json:"action,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Sink accepts notifications fire-and-forget.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

type SinkFunc func(ctx context.Context, n Notification)

func (f SinkFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Fanout delivers every notification to each of its sinks in order.
type Fanout []Sink

func (f Fanout) Notify(ctx context.Context, n Notification) {
	for _, s := range f {
		if s != nil {
			s.Notify(ctx, n)
		}
	}
}
