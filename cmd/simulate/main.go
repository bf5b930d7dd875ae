package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/hackgods/medication-reminder/internal/config"
	"github.com/hackgods/medication-reminder/internal/logger"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	TakeRatio    float64
	RestockRatio float64
	ReadRatio    float64
	Email        string
	Password     string
}

type DataPool struct {
	mu        sync.RWMutex
	medicines []string
}

func (dp *DataPool) SetMedicines(ids []string) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.medicines = ids
}

func (dp *DataPool) RandomMedicine(rng *rand.Rand) (string, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.medicines) == 0 {
		return "", false
	}
	return dp.medicines[rng.Intn(len(dp.medicines))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Rejected  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

// Record classifies a response: 2xx is a success, other 4xx are rejections,
// anything else (including transport failures, status 0) is an error.
func (om *OperationMetrics) Record(latency time.Duration, status int) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case status >= 200 && status < 300:
		atomic.AddInt64(&om.Success, 1)
	case status >= 400 && status < 500:
		atomic.AddInt64(&om.Rejected, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	latencies := slices.Clone(om.Latencies)
	om.mu.Unlock()

	if len(latencies) == 0 {
		return 0, 0, 0, 0, 0
	}
	slices.Sort(latencies)

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]

	return avg, min, max, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	Take             OperationMetrics
	Restock          OperationMetrics
	ListMedicines    OperationMetrics
	ListAppointments OperationMetrics
	Progress         OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	token   string
	metrics Metrics
}

func main() {
	baseCfg, err := config.Load()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to load base config")
	}
	logger.Init(baseCfg.Env, baseCfg.LogLevel)

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		logger.Logger.Fatal().Err(err).Msg("invalid config")
	}

	logger.Logger.Info().
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Float64("take", cfg.TakeRatio).
		Float64("restock", cfg.RestockRatio).
		Float64("read", cfg.ReadRatio).
		Msg("simulator starting")

	sim := &Simulator{
		config: cfg,
		pool:   &DataPool{},
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sim.login(ctx); err != nil {
		logger.Logger.Fatal().Err(err).Msg("login")
	}
	if err := sim.refreshMedicines(ctx); err != nil {
		logger.Logger.Fatal().Err(err).Msg("load medicines")
	}

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:   strings.TrimRight(getEnv("SIM_API_BASE_URL", "http://localhost:8080"), "/"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		TakeRatio:    getFloat("SIM_TAKE_RATIO", 0.3),
		RestockRatio: getFloat("SIM_RESTOCK_RATIO", 0.2),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.5),
		Email:        getEnv("SIM_EMAIL", ""),
		Password:     getEnv("SIM_PASSWORD", "simulate"),
	}

	if cfg.Email == "" {
		cfg.Email = gofakeit.New(0).Email()
	}

	total := cfg.TakeRatio + cfg.RestockRatio + cfg.ReadRatio
	if total > 0 {
		cfg.TakeRatio /= total
		cfg.RestockRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	return nil
}

func (s *Simulator) login(ctx context.Context) error {
	body, _ := json.Marshal(map[string]string{
		"email":    s.config.Email,
		"password": s.config.Password,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIBaseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login returned %d", resp.StatusCode)
	}

	var auth struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	s.token = auth.Token

	logger.Logger.Info().Str("email", s.config.Email).Msg("signed in")
	return nil
}

func (s *Simulator) refreshMedicines(ctx context.Context) error {
	var list struct {
		Medicines []struct {
			ID string `json:"id"`
		} `json:"medicines"`
	}

	status, err := s.do(ctx, http.MethodGet, "/medicines", nil, &list)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("list medicines returned %d", status)
	}

	ids := make([]string, 0, len(list.Medicines))
	for _, m := range list.Medicines {
		ids = append(ids, m.ID)
	}
	s.pool.SetMedicines(ids)

	logger.Logger.Info().Int("medicines", len(ids)).Msg("loaded data pool")
	return nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	logger.Logger.Info().Dur("duration", s.config.Duration).Int("workers", s.config.Workers).Msg("starting simulation")

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	logger.Logger.Info().Msg("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := rng.Float64()
			switch {
			case r < s.config.TakeRatio:
				s.doTake(ctx, rng)
			case r < s.config.TakeRatio+s.config.RestockRatio:
				s.doRestock(ctx, rng)
			default:
				switch rng.Intn(3) {
				case 0:
					s.timed(ctx, &s.metrics.ListMedicines, http.MethodGet, "/medicines", nil)
				case 1:
					s.timed(ctx, &s.metrics.ListAppointments, http.MethodGet, "/appointments?days=30", nil)
				case 2:
					s.timed(ctx, &s.metrics.Progress, http.MethodGet, "/progress", nil)
				}
			}
		}
	}
}

func (s *Simulator) doTake(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.RandomMedicine(rng)
	if !ok {
		return
	}
	s.timed(ctx, &s.metrics.Take, http.MethodPost, "/medicines/"+id+"/take", nil)
}

func (s *Simulator) doRestock(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.RandomMedicine(rng)
	if !ok {
		return
	}
	s.timed(ctx, &s.metrics.Restock, http.MethodPost, "/medicines/"+id+"/restock",
		map[string]int{"units": rng.Intn(30) + 1})
}

func (s *Simulator) timed(ctx context.Context, om *OperationMetrics, method, path string, payload any) {
	start := time.Now()
	status, err := s.do(ctx, method, path, payload, nil)
	latency := time.Since(start)

	// Requests cut off by the end of the run are not counted.
	if err != nil && ctx.Err() != nil {
		return
	}
	om.Record(latency, status)
}

// do sends an authenticated request and decodes a 2xx body into out when
// out is non-nil. A transport failure reports status 0.
func (s *Simulator) do(ctx context.Context, method, path string, payload, out any) (int, error) {
	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Mark taken", &s.metrics.Take)
	printOperationReport("Restock", &s.metrics.Restock)
	printOperationReport("List medicines", &s.metrics.ListMedicines)
	printOperationReport("List appointments", &s.metrics.ListAppointments)
	printOperationReport("Daily progress", &s.metrics.Progress)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	rejected := atomic.LoadInt64(&om.Rejected)
	failed := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if rejected > 0 {
		fmt.Printf("  Rejected: %d (%.1f%%)\n", rejected, float64(rejected)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
