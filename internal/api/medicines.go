package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/medication-reminder/internal/notify"
	"github.com/hackgods/medication-reminder/internal/reminder"
)

func listMedicinesHandler(store *reminder.Store, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("day")
		if raw == "" {
			writeJSON(w, http.StatusOK, MedicineListResponse{Medicines: store.Medicines()})
			return
		}

		day, ok := parseDay(w, raw, now)
		if !ok {
			return
		}
		store.SetSelectedDate(day)

		writeJSON(w, http.StatusOK, MedicineListResponse{
			Day:       day.Format(reminder.DateLayout),
			Medicines: store.TodayMedicines(day),
		})
	}
}

func createMedicineHandler(store *reminder.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateMedicineRequest
		if !decodeBody(w, r, &req) {
			return
		}

		m, err := store.AddMedicine(r.Context(), req.input())
		if err != nil {
			handleStoreError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, m)
	}
}

func getMedicineHandler(store *reminder.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := store.Medicine(chi.URLParam(r, "id"))
		if !ok {
			medicineNotFound(w)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func updateMedicineHandler(store *reminder.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateMedicineRequest
		if !decodeBody(w, r, &req) {
			return
		}

		m, ok, err := store.UpdateMedicine(r.Context(), chi.URLParam(r, "id"), req.patch())
		respondMedicine(w, m, ok, err)
	}
}

func deleteMedicineHandler(store *reminder.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteMedicine(r.Context(), chi.URLParam(r, "id")); err != nil {
			handleStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func takeMedicineHandler(store *reminder.Store, sink notify.Sink, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok, err := reminder.TakeAndConfirm(r.Context(), store, sink, chi.URLParam(r, "id"), now())
		respondMedicine(w, m, ok, err)
	}
}

func updateInventoryHandler(store *reminder.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateInventoryRequest
		if !decodeBody(w, r, &req) {
			return
		}

		m, ok, err := store.UpdateInventory(r.Context(), chi.URLParam(r, "id"), *req.Current)
		respondMedicine(w, m, ok, err)
	}
}

func restockMedicineHandler(store *reminder.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RestockRequest
		if !decodeBody(w, r, &req) {
			return
		}

		m, ok, err := store.Restock(r.Context(), chi.URLParam(r, "id"), req.Units)
		respondMedicine(w, m, ok, err)
	}
}

func lowInventoryHandler(store *reminder.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, MedicineListResponse{Medicines: store.LowInventoryMedicines()})
	}
}

func progressHandler(store *reminder.Store, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day := store.SelectedDate()
		if raw := r.URL.Query().Get("day"); raw != "" {
			var ok bool
			if day, ok = parseDay(w, raw, now); !ok {
				return
			}
		}

		p := store.DailyProgress(day)
		writeJSON(w, http.StatusOK, ProgressResponse{
			Day:     day.Format(reminder.DateLayout),
			Taken:   p.Taken,
			Total:   p.Total,
			Percent: p.Percent(),
		})
	}
}

func respondMedicine(w http.ResponseWriter, m reminder.Medicine, ok bool, err error) {
	switch {
	case !ok:
		medicineNotFound(w)
	case err != nil:
		handleStoreError(w, err)
	default:
		writeJSON(w, http.StatusOK, m)
	}
}

func medicineNotFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "medicine_not_found", "no medicine with that id")
}

// parseDay reads a YYYY-MM-DD query value in the clock's location.
func parseDay(w http.ResponseWriter, raw string, now func() time.Time) (time.Time, bool) {
	day, err := time.ParseInLocation(reminder.DateLayout, raw, now().Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_day", "day must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return day, true
}
