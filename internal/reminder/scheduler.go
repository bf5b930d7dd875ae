package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/hackgods/medication-reminder/internal/logger"
	"github.com/hackgods/medication-reminder/internal/notify"
)

const (
	DefaultTickInterval = 30 * time.Second
	DefaultSuppressTTL  = 24 * time.Hour
)

// Recorder receives scheduler measurements.
type Recorder interface {
	TickObserved(d time.Duration)
	NotificationSent(kind notify.Kind)
	LowInventory(n int)
}

type noopRecorder struct{}

func (noopRecorder) TickObserved(time.Duration) {}
func (noopRecorder) NotificationSent(notify.Kind) {}
func (noopRecorder) LowInventory(int) {}

type SchedulerOptions struct {
	Interval    time.Duration
	LeadWindow  time.Duration
	SuppressTTL time.Duration
	Suppressor  Suppressor
	Recorder    Recorder
	Clock       func() time.Time
}

// Scheduler periodically evaluates the store and pushes due notifications to a sink.
type Scheduler struct {
	store *Store
	sink  notify.Sink
	opts  SchedulerOptions

	mu         sync.Mutex
	lastMinute string
}

func NewScheduler(store *Store, sink notify.Sink, opts SchedulerOptions) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultTickInterval
	}
	if opts.LeadWindow <= 0 {
		opts.LeadWindow = DefaultLeadWindow
	}
	if opts.SuppressTTL <= 0 {
		opts.SuppressTTL = DefaultSuppressTTL
	}
	if opts.Suppressor == nil {
		opts.Suppressor = NewExpiringSet()
	}
	if opts.Recorder == nil {
		opts.Recorder = noopRecorder{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Scheduler{store: store, sink: sink, opts: opts}
}

// Run ticks once right away and then every Interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	logger.Logger.Info().Dur("interval", s.opts.Interval).Msg("scheduler started")

	s.runOnce(ctx)

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Logger.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				logger.Logger.Info().Msg("scheduler stopped")
				return
			}
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.opts.Interval)
	defer cancel()

	start := time.Now()
	due := s.Tick(runCtx, s.opts.Clock())
	s.opts.Recorder.TickObserved(time.Since(start))

	if !due.Empty() {
		logger.Logger.Debug().
			Int("medicines", len(due.Medicines)).
			Int("appointments", len(due.Appointments)).
			Int("low_inventory", len(due.LowInventory)).
			Dur("took", time.Since(start)).
			Msg("tick complete")
	}
}

// Tick runs one evaluation at now and returns what was actually emitted.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) Due {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Refresh(ctx); err != nil {
		logger.Logger.Warn().Err(err).Msg("refresh failed, evaluating cached state")
	}

	if _, err := s.store.ResetCycle(ctx, now.Format(DateLayout)); err != nil {
		logger.Logger.Error().Err(err).Msg("daily reset failed")
	}

	meds := s.store.Medicines()
	due := Evaluate(meds, s.store.Appointments(), now, s.suppressedFunc(ctx), EvalOptions{LeadWindow: s.opts.LeadWindow})

	lowTotal := 0
	for _, m := range meds {
		if IsLow(m) {
			lowTotal++
		}
	}
	s.opts.Recorder.LowInventory(lowTotal)

	var emitted Due

	minute := now.Format(minuteLayout)
	if minute != s.lastMinute {
		s.lastMinute = minute
		for _, m := range due.Medicines {
			s.emit(ctx, MedicineReminderNotification(m, now, s.takeAction(m.ID)))
			emitted.Medicines = append(emitted.Medicines, m)
		}
	}

	for _, a := range due.Appointments {
		changed, err := s.store.setAppointmentNotified(ctx, a.ID)
		if err != nil {
			logger.Logger.Error().Err(err).Str("appointment_id", a.ID).Msg("mark appointment notified failed")
			continue
		}
		if !changed {
			continue
		}
		a.Notified = true
		s.emit(ctx, AppointmentNotification(a, now))
		emitted.Appointments = append(emitted.Appointments, a)
	}

	for _, m := range due.LowInventory {
		s.emit(ctx, LowInventoryNotification(m, now))
		if err := s.opts.Suppressor.Suppress(ctx, LowStockKey(m.ID, now), now, s.opts.SuppressTTL); err != nil {
			logger.Logger.Error().Err(err).Str("medicine_id", m.ID).Msg("suppress low inventory failed")
		}
		emitted.LowInventory = append(emitted.LowInventory, m)
	}

	return emitted
}

// suppressedFunc counts a failing lookup as suppressed.
func (s *Scheduler) suppressedFunc(ctx context.Context) func(string, time.Time) bool {
	return func(id string, now time.Time) bool {
		ok, err := s.opts.Suppressor.Suppressed(ctx, LowStockKey(id, now), now)
		if err != nil {
			logger.Logger.Warn().Err(err).Str("medicine_id", id).Msg("suppression lookup failed")
			return true
		}
		return ok
	}
}

func (s *Scheduler) takeAction(id string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, _, err := TakeAndConfirm(ctx, s.store, s.sink, id, s.opts.Clock())
		return err
	}
}

func (s *Scheduler) emit(ctx context.Context, n notify.Notification) {
	if s.sink != nil {
		s.sink.Notify(ctx, n)
	}
	s.opts.Recorder.NotificationSent(n.Kind)
}
