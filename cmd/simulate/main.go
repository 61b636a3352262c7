package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"
)

// The simulator hammers one slot key with concurrent booking attempts and
// verifies the conflict-exclusivity guarantee from the outside: exactly one
// attempt may come back confirmed, every other one must be rejected with
// slot_taken or slot_being_booked.

type SimConfig struct {
	APIBaseURL string
	Workers    int
	Attempts   int
	ProviderID string
	Date       string
	Time       string
	Modality   string
}

type OperationMetrics struct {
	Total     int64
	Confirmed int64
	Conflict  int64
	Error     int64

	mu        sync.Mutex
	latencies []time.Duration
}

func (om *OperationMetrics) Record(latency time.Duration, confirmed, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case confirmed:
		atomic.AddInt64(&om.Confirmed, 1)
	case conflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.latencies = append(om.latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, p50, p95, max time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.latencies) == 0 {
		return 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.latencies))
	copy(latencies, om.latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	avg = sum / time.Duration(len(latencies))

	idx := func(pct int) time.Duration {
		i := len(latencies) * pct / 100
		if i >= len(latencies) {
			i = len(latencies) - 1
		}
		return latencies[i]
	}
	return avg, idx(50), idx(95), latencies[len(latencies)-1]
}

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

func main() {
	cfg := loadSimConfig()
	gofakeit.Seed(time.Now().UnixNano())

	log.Info().
		Str("target", cfg.APIBaseURL).
		Int("workers", cfg.Workers).
		Int("attempts", cfg.Attempts).
		Str("slot", fmt.Sprintf("%s %s %s %s", cfg.ProviderID, cfg.Date, cfg.Time, cfg.Modality)).
		Msg("simulate starting")

	client := &http.Client{Timeout: 10 * time.Second}
	metrics := &OperationMetrics{}

	attempts := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range attempts {
				attemptBooking(client, cfg, metrics)
			}
		}()
	}
	for i := 0; i < cfg.Attempts; i++ {
		attempts <- i
	}
	close(attempts)
	wg.Wait()

	avg, p50, p95, max := metrics.Stats()
	log.Info().
		Int64("total", metrics.Total).
		Int64("confirmed", metrics.Confirmed).
		Int64("conflict", metrics.Conflict).
		Int64("error", metrics.Error).
		Dur("avg", avg).Dur("p50", p50).Dur("p95", p95).Dur("max", max).
		Msg("simulate finished")

	if metrics.Confirmed > 1 {
		log.Fatal().Int64("confirmed", metrics.Confirmed).Msg("EXCLUSIVITY VIOLATED: more than one confirmed booking for the same slot key")
	}
	log.Info().Msg("conflict exclusivity holds")
}

func attemptBooking(client *http.Client, cfg SimConfig, metrics *OperationMetrics) {
	body, _ := json.Marshal(map[string]string{
		"provider_id":   cfg.ProviderID,
		"patient_name":  gofakeit.Name(),
		"patient_email": gofakeit.Email(),
		"specialty":     "Anxiety",
		"modality":      cfg.Modality,
		"date":          cfg.Date,
		"time":          cfg.Time,
	})

	start := time.Now()
	resp, err := client.Post(cfg.APIBaseURL+"/bookings", "application/json", bytes.NewReader(body))
	latency := time.Since(start)
	if err != nil {
		log.Error().Err(err).Msg("request failed")
		metrics.Record(latency, false, false)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	confirmed := resp.StatusCode == http.StatusCreated
	conflict := resp.StatusCode == http.StatusConflict
	metrics.Record(latency, confirmed, conflict)
}

func loadSimConfig() SimConfig {
	nextMonday := time.Now()
	for nextMonday.Weekday() != time.Monday {
		nextMonday = nextMonday.AddDate(0, 0, 1)
	}

	return SimConfig{
		APIBaseURL: getEnv("SIM_API_URL", "http://localhost:8080"),
		Workers:    getInt("SIM_WORKERS", 16),
		Attempts:   getInt("SIM_ATTEMPTS", 200),
		ProviderID: getEnv("SIM_PROVIDER_ID", "prov-1"),
		Date:       getEnv("SIM_DATE", nextMonday.Format("2006-01-02")),
		Time:       getEnv("SIM_TIME", "09:00"),
		Modality:   getEnv("SIM_MODALITY", "remote"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
