package api

import (
	"time"

	"github.com/hackgods/medication-reminder/internal/auth"
	"github.com/hackgods/medication-reminder/internal/reminder"
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      auth.User `json:"user"`
}

type ThemeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark blue purple"`
}

type ThemeResponse struct {
	Theme string `json:"theme"`
}

type InventoryRequest struct {
	Current   int `json:"current" validate:"min=0"`
	Threshold int `json:"threshold" validate:"min=0"`
}

type CreateMedicineRequest struct {
	Name         string            `json:"name" validate:"required,max=100"`
	Type         string            `json:"type" validate:"required,oneof=Capsule Tablet Drop Liquid Injection"`
	Dose         string            `json:"dose" validate:"max=50"`
	Amount       int               `json:"amount" validate:"required,min=1"`
	ReminderTime string            `json:"reminderTime" validate:"required,len=5,datetime=15:04"`
	ReminderDays []string          `json:"reminderDays" validate:"required,min=1,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	Inventory    *InventoryRequest `json:"inventory"`
}

func (req CreateMedicineRequest) input() reminder.MedicineInput {
	in := reminder.MedicineInput{
		Name:         req.Name,
		Type:         reminder.MedicineType(req.Type),
		Dose:         req.Dose,
		Amount:       req.Amount,
		ReminderTime: req.ReminderTime,
		ReminderDays: req.ReminderDays,
	}
	if req.Inventory != nil {
		in.Inventory = &reminder.Inventory{Current: req.Inventory.Current, Threshold: req.Inventory.Threshold}
	}
	return in
}

type UpdateMedicineRequest struct {
	Name         *string           `json:"name" validate:"omitempty,min=1,max=100"`
	Type         *string           `json:"type" validate:"omitempty,oneof=Capsule Tablet Drop Liquid Injection"`
	Dose         *string           `json:"dose" validate:"omitempty,max=50"`
	Amount       *int              `json:"amount" validate:"omitempty,min=1"`
	ReminderTime *string           `json:"reminderTime" validate:"omitempty,len=5,datetime=15:04"`
	ReminderDays *[]string         `json:"reminderDays" validate:"omitempty,min=1,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	Taken        *bool             `json:"taken"`
	Inventory    *InventoryRequest `json:"inventory"`
}

func (req UpdateMedicineRequest) patch() reminder.MedicinePatch {
	p := reminder.MedicinePatch{
		Name:         req.Name,
		Dose:         req.Dose,
		Amount:       req.Amount,
		ReminderTime: req.ReminderTime,
		ReminderDays: req.ReminderDays,
		Taken:        req.Taken,
	}
	if req.Type != nil {
		t := reminder.MedicineType(*req.Type)
		p.Type = &t
	}
	if req.Inventory != nil {
		p.Inventory = &reminder.Inventory{Current: req.Inventory.Current, Threshold: req.Inventory.Threshold}
	}
	return p
}

// UpdateInventoryRequest accepts any integer; negative values clamp to zero.
type UpdateInventoryRequest struct {
	Current *int `json:"current" validate:"required"`
}

type RestockRequest struct {
	Units int `json:"units" validate:"min=0"`
}

type CreateAppointmentRequest struct {
	DoctorName     string `json:"doctorName" validate:"required,max=100"`
	Specialization string `json:"specialization" validate:"max=100"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	Time           string `json:"time" validate:"required,len=5,datetime=15:04"`
	Notes          string `json:"notes" validate:"max=1000"`
}

func (req CreateAppointmentRequest) input() reminder.AppointmentInput {
	return reminder.AppointmentInput{
		DoctorName:     req.DoctorName,
		Specialization: req.Specialization,
		Date:           req.Date,
		Time:           req.Time,
		Notes:          req.Notes,
	}
}

type UpdateAppointmentRequest struct {
	DoctorName     *string `json:"doctorName" validate:"omitempty,min=1,max=100"`
	Specialization *string `json:"specialization" validate:"omitempty,max=100"`
	Date           *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time           *string `json:"time" validate:"omitempty,len=5,datetime=15:04"`
	Notes          *string `json:"notes" validate:"omitempty,max=1000"`
}

func (req UpdateAppointmentRequest) patch() reminder.AppointmentPatch {
	return reminder.AppointmentPatch{
		DoctorName:     req.DoctorName,
		Specialization: req.Specialization,
		Date:           req.Date,
		Time:           req.Time,
		Notes:          req.Notes,
	}
}

type MedicineListResponse struct {
	Day       string              `json:"day,omitempty"`
	Medicines []reminder.Medicine `json:"medicines"`
}

type AppointmentListResponse struct {
	Appointments []reminder.Appointment `json:"appointments"`
}

type ProgressResponse struct {
	Day     string `json:"day"`
	Taken   int    `json:"taken"`
	Total   int    `json:"total"`
	Percent int    `json:"percent"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
