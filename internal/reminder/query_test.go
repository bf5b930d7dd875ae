package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodayMedicines(t *testing.T) {
	s, _ := newTestStore(t)

	monday := s.TodayMedicines(monday0900)
	require.Len(t, monday, 1)
	assert.Equal(t, "Vitamin D", monday[0].Name)

	tuesday := s.TodayMedicines(monday0900.AddDate(0, 0, 1))
	require.Len(t, tuesday, 1)
	assert.Equal(t, "B12 Drops", tuesday[0].Name)

	assert.Empty(t, s.TodayMedicines(monday0900.AddDate(0, 0, -1)), "nothing on Sunday")
}

func TestUpcomingAppointments_Ordering(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	for _, in := range []AppointmentInput{
		{DoctorName: "c", Date: "2024-01-05", Time: "08:00"},
		{DoctorName: "b", Date: "2024-01-01", Time: "15:00"},
		{DoctorName: "past", Date: "2023-12-31", Time: "09:00"},
		{DoctorName: "a", Date: "2024-01-01", Time: "09:30"},
		{DoctorName: "far", Date: "2024-03-01", Time: "09:00"},
	} {
		_, err := s.AddAppointment(ctx, in)
		require.NoError(t, err)
	}

	var names []string
	for _, a := range s.UpcomingAppointments(monday0900, -1) {
		names = append(names, a.DoctorName)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)

	names = nil
	for _, a := range s.UpcomingAppointments(monday0900, 0) {
		names = append(names, a.DoctorName)
	}
	assert.Equal(t, []string{"a", "b"}, names, "days=0 means today only")
}

func TestLowInventoryMedicines_IncludesEmpty(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, _, err := s.UpdateInventory(ctx, "1", 0)
	require.NoError(t, err)
	_, _, err = s.UpdateInventory(ctx, "2", 5)
	require.NoError(t, err)

	low := s.LowInventoryMedicines()
	require.Len(t, low, 2)

	due := Evaluate(s.Medicines(), nil, monday0900, nil, EvalOptions{})
	require.Len(t, due.LowInventory, 1)
	assert.Equal(t, "2", due.LowInventory[0].ID)
}

func TestDailyProgress(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.AddMedicine(ctx, aspirin())
	require.NoError(t, err)

	p := s.DailyProgress(monday0900)
	assert.Equal(t, Progress{Taken: 0, Total: 2}, p)

	_, _, err = s.MarkAsTaken(ctx, "1")
	require.NoError(t, err)

	p = s.DailyProgress(monday0900)
	assert.Equal(t, Progress{Taken: 1, Total: 2}, p)
	assert.Equal(t, 50, p.Percent())

	assert.Equal(t, 0, Progress{}.Percent())
}

func TestSelectedDate(t *testing.T) {
	s, _ := newTestStore(t)

	s.SetSelectedDate(monday0900)
	assert.True(t, s.SelectedDate().Equal(monday0900))
}

func TestExpiringSet(t *testing.T) {
	ctx := context.Background()
	set := NewExpiringSet()
	key := LowStockKey("1", monday0900)
	assert.Equal(t, "lowstock:1:2024-01-01", key)

	ok, err := set.Suppressed(ctx, key, monday0900)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, set.Suppress(ctx, key, monday0900, 24*time.Hour))

	ok, _ = set.Suppressed(ctx, key, monday0900.Add(23*time.Hour))
	assert.True(t, ok)

	ok, _ = set.Suppressed(ctx, key, monday0900.Add(24*time.Hour))
	assert.False(t, ok, "expires after the ttl")
	assert.Equal(t, 0, set.Len(monday0900.Add(24*time.Hour)))
}
