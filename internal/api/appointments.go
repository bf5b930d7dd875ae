package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/medication-reminder/internal/reminder"
)

func listAppointmentsHandler(store *reminder.Store, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := reminder.DefaultUpcomingDays
		if raw := r.URL.Query().Get("days"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "invalid_days", "days must be a non-negative integer")
				return
			}
			days = n
		}

		writeJSON(w, http.StatusOK, AppointmentListResponse{
			Appointments: store.UpcomingAppointments(now(), days),
		})
	}
}

func createAppointmentHandler(store *reminder.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if !decodeBody(w, r, &req) {
			return
		}

		a, err := store.AddAppointment(r.Context(), req.input())
		if err != nil {
			handleStoreError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, a)
	}
}

func getAppointmentHandler(store *reminder.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := store.Appointment(chi.URLParam(r, "id"))
		if !ok {
			appointmentNotFound(w)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func updateAppointmentHandler(store *reminder.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateAppointmentRequest
		if !decodeBody(w, r, &req) {
			return
		}

		a, ok, err := store.UpdateAppointment(r.Context(), chi.URLParam(r, "id"), req.patch())
		switch {
		case !ok:
			appointmentNotFound(w)
		case err != nil:
			handleStoreError(w, err)
		default:
			writeJSON(w, http.StatusOK, a)
		}
	}
}

func deleteAppointmentHandler(store *reminder.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteAppointment(r.Context(), chi.URLParam(r, "id")); err != nil {
			handleStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func appointmentNotFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "appointment_not_found", "no appointment with that id")
}
