package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/joho/godotenv"

	"github.com/hackgods/vitalpoint-assistant/internal/directory"
	"github.com/hackgods/vitalpoint-assistant/pkg/logging"
)

type SimConfig struct {
	APIBaseURL     string
	Duration       time.Duration
	Workers        int
	DuplicateRatio float64 // share of booking turns sent twice concurrently
	QuestionRatio  float64 // share of conversations that ask a free-form question
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

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

func percentileIndex(n, pct int) int {
	idx := n * pct / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	Onboarding   OperationMetrics
	BookingTurn  OperationMetrics
	Duplicate    OperationMetrics
	Question     OperationMetrics
	ViewBookings OperationMetrics
	Completed    int64
}

type Simulator struct {
	config  SimConfig
	doctors []directory.Doctor
	logger  *logging.Logger
	metrics Metrics
}

func main() {
	_ = godotenv.Load()
	logger := logging.New(getEnv("LOG_LEVEL", "info"))

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger.Info("simulator starting",
		"base_url", cfg.APIBaseURL,
		"duration", cfg.Duration.String(),
		"workers", cfg.Workers,
		"duplicate_ratio", cfg.DuplicateRatio,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	doctors, err := fetchDoctors(ctx, &http.Client{Timeout: 5 * time.Second}, cfg.APIBaseURL)
	cancel()
	if err != nil {
		logger.Error("load doctors", "error", err)
		os.Exit(1)
	}
	logger.Info("loaded directory", "doctors", len(doctors))

	sim := &Simulator{config: cfg, doctors: doctors, logger: logger}
	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	return SimConfig{
		APIBaseURL:     strings.TrimRight(getEnv("SIM_API_BASE_URL", "http://localhost:8080"), "/"),
		Duration:       getDuration("SIM_DURATION", 30*time.Second),
		Workers:        getInt("SIM_WORKERS", 10),
		DuplicateRatio: getFloat("SIM_DUPLICATE_RATIO", 0.2),
		QuestionRatio:  getFloat("SIM_QUESTION_RATIO", 0.1),
	}
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

func fetchDoctors(ctx context.Context, client *http.Client, baseURL string) ([]directory.Doctor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/doctors", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET /doctors: status %d", resp.StatusCode)
	}

	var body struct {
		Doctors []directory.Doctor `json:"doctors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode doctors: %w", err)
	}
	if len(body.Doctors) == 0 {
		return nil, fmt.Errorf("directory is empty")
	}
	return body.Doctors, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.logger.Info("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))
	faker := gofakeit.New(0)

	for ctx.Err() == nil {
		if err := s.conversation(ctx, rng, faker); err != nil && ctx.Err() == nil {
			s.logger.Debug("conversation aborted", "worker", workerID, "error", err)
		}
	}
}

// conversation walks one patient from greeting to a confirmed booking on a fresh cookie jar.
func (s *Simulator) conversation(ctx context.Context, rng *rand.Rand, faker *gofakeit.Faker) error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 30 * time.Second, Jar: jar}

	name := faker.FirstName() + " " + faker.LastName()
	for _, text := range []string{"Hello", name, faker.Email()} {
		if _, err := s.send(ctx, client, text, &s.metrics.Onboarding); err != nil {
			return err
		}
	}

	if rng.Float64() < s.config.QuestionRatio {
		if _, err := s.send(ctx, client, "What should I bring to my first visit?", &s.metrics.Question); err != nil {
			return err
		}
	}

	doctor := s.doctors[rng.Intn(len(s.doctors))]
	if len(doctor.Availability) == 0 {
		return nil
	}
	day := doctor.Availability[rng.Intn(len(doctor.Availability))]
	if len(day.Slots) == 0 {
		return nil
	}
	slot := day.Slots[rng.Intn(len(day.Slots))]

	for _, text := range []string{"I'd like to book an appointment", doctor.Name, day.Day, slot} {
		if rng.Float64() < s.config.DuplicateRatio {
			if err := s.sendTwice(ctx, client, text); err != nil {
				return err
			}
			continue
		}
		if _, err := s.send(ctx, client, text, &s.metrics.BookingTurn); err != nil {
			return err
		}
	}

	reply, err := s.send(ctx, client, "show my appointments", &s.metrics.ViewBookings)
	if err != nil {
		return err
	}
	if strings.Contains(reply, doctor.Name) {
		atomic.AddInt64(&s.metrics.Completed, 1)
	}
	return nil
}

// sendTwice fires the same turn concurrently, as a double-clicked submit would.
func (s *Simulator) sendTwice(ctx context.Context, client *http.Client, text string) error {
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.send(ctx, client, text, &s.metrics.Duplicate)
		}(i)
	}
	wg.Wait()

	if errs[0] != nil && errs[1] != nil {
		return errs[0]
	}
	return nil
}

type turnError struct {
	status int
}

func (e turnError) Error() string {
	return "chat status " + strconv.Itoa(e.status)
}

func (s *Simulator) send(ctx context.Context, client *http.Client, text string, om *OperationMetrics) (string, error) {
	body, err := json.Marshal(map[string]string{"userInput": text})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIBaseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)
	if err != nil {
		om.Record(latency, false, false)
		return "", err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	switch resp.StatusCode {
	case http.StatusOK:
		om.Record(latency, true, false)
	case http.StatusConflict:
		om.Record(latency, false, true)
		return "", turnError{status: resp.StatusCode}
	default:
		om.Record(latency, false, false)
		return "", turnError{status: resp.StatusCode}
	}

	var out struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	return out.Response, nil
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Printf("Completed bookings: %d\n", atomic.LoadInt64(&s.metrics.Completed))
	fmt.Println()

	printOperationReport("Onboarding turns", &s.metrics.Onboarding)
	printOperationReport("Booking turns", &s.metrics.BookingTurn)
	printOperationReport("Duplicate submits", &s.metrics.Duplicate)
	printOperationReport("Free-form questions", &s.metrics.Question)
	printOperationReport("View appointments", &s.metrics.ViewBookings)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

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
