package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/hackgods/medication-reminder/internal/bootstrap"
	"github.com/hackgods/medication-reminder/internal/config"
	"github.com/hackgods/medication-reminder/internal/logger"
	"github.com/hackgods/medication-reminder/internal/reminder"
)

var (
	medicineNames = []string{
		"Aspirin", "Ibuprofen", "Metformin", "Lisinopril", "Omega 3",
		"Vitamin C", "Magnesium", "Levothyroxine", "Atorvastatin", "Insulin",
	}
	doses = []string{"5mg", "10mg", "50mg", "100mg", "250mg", "500mg", "1000mg"}

	specialties = []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Ophthalmology",
		"ENT",
	}
	notes = []string{"", "Bring previous results", "Fasting required", "Follow-up visit", "Annual checkup"}

	weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("config load error")
	}
	logger.Init(cfg.Env, cfg.LogLevel)

	medicines := getInt("SEED_MEDICINES", 8)
	appointments := getInt("SEED_APPOINTMENTS", 5)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	kv, store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("storage error")
	}
	defer kv.Close()

	faker := gofakeit.New(0)

	if err := seedMedicines(ctx, store, faker, medicines); err != nil {
		logger.Logger.Fatal().Err(err).Msg("seed medicines")
	}
	if err := seedAppointments(ctx, store, faker, appointments, time.Now()); err != nil {
		logger.Logger.Fatal().Err(err).Msg("seed appointments")
	}

	logger.Logger.Info().
		Int("medicines", len(store.Medicines())).
		Int("appointments", len(store.Appointments())).
		Msg("seed complete")
}

func seedMedicines(ctx context.Context, store *reminder.Store, faker *gofakeit.Faker, count int) error {
	logger.Logger.Info().Int("count", count).Msg("seeding medicines")

	for i := 0; i < count; i++ {
		typ := reminder.MedicineTypes[faker.Number(0, len(reminder.MedicineTypes)-1)]
		amount := 1
		if typ == reminder.TypeDrop {
			amount = faker.Number(2, 10)
		}

		days := pickDays(faker)
		threshold := faker.Number(3, 10)

		in := reminder.MedicineInput{
			Name:         faker.RandomString(medicineNames),
			Type:         typ,
			Dose:         faker.RandomString(doses),
			Amount:       amount,
			ReminderTime: fmt.Sprintf("%02d:%02d", faker.Number(6, 22), faker.Number(0, 11)*5),
			ReminderDays: days,
			Inventory:    &reminder.Inventory{Current: faker.Number(0, 60), Threshold: threshold},
		}

		if _, err := store.AddMedicine(ctx, in); err != nil {
			return err
		}
	}

	return nil
}

func seedAppointments(ctx context.Context, store *reminder.Store, faker *gofakeit.Faker, count int, now time.Time) error {
	logger.Logger.Info().Int("count", count).Msg("seeding appointments")

	for i := 0; i < count; i++ {
		day := now.AddDate(0, 0, faker.Number(0, 45))

		in := reminder.AppointmentInput{
			DoctorName:     "Dr. " + faker.LastName(),
			Specialization: faker.RandomString(specialties),
			Date:           day.Format(reminder.DateLayout),
			Time:           fmt.Sprintf("%02d:%02d", faker.Number(8, 17), faker.Number(0, 3)*15),
			Notes:          faker.RandomString(notes),
		}

		if _, err := store.AddAppointment(ctx, in); err != nil {
			return err
		}
	}

	return nil
}

// pickDays returns between one and seven distinct weekdays in calendar order.
func pickDays(faker *gofakeit.Faker) []string {
	var days []string
	for _, d := range weekdays {
		if faker.Bool() {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		days = append(days, faker.RandomString(weekdays))
	}
	return days
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
