package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/helioshq/helios-webhooks/internal/adapter"
)

const (
	defaultTargetURL = "http://localhost:8080/webhooks/clerk"
	defaultEventMix  = "user.created=4,user.updated=3,user.deleted=1," +
		"organization.created=1,organizationMembership.created=1," +
		"session.created=2,email.created=1"

	// recentWindow bounds how far back duplicate deliveries are drawn from
	recentWindow = 100
)

type Config struct {
	TargetURL        string
	Secret           string
	Count            int
	Concurrency      int
	Delay            time.Duration
	EventMix         string
	InvalidPercent   int
	DuplicatePercent int
	RequestTimeout   time.Duration
	Seed             int64
	Debug            bool
}

// Results aggregates per-delivery outcomes across workers
type Results struct {
	mu         sync.Mutex
	sent       int
	outcomes   map[string]int
	httpErrors map[int]int
	transport  int
	durations  []time.Duration
}

func newResults() *Results {
	return &Results{
		outcomes:   make(map[string]int),
		httpErrors: make(map[int]int),
	}
}

func (r *Results) recordOutcome(status string, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent++
	r.outcomes[status]++
	r.durations = append(r.durations, elapsed)
}

func (r *Results) recordHTTPError(statusCode int, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent++
	r.httpErrors[statusCode]++
	r.durations = append(r.durations, elapsed)
}

func (r *Results) recordTransportError(elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent++
	r.transport++
	r.durations = append(r.durations, elapsed)
}

func (r *Results) sentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent
}

func main() {
	cfg := parseFlags()

	if cfg.Secret == "" {
		fmt.Println("Error: secret is required")
		flag.Usage()
		os.Exit(1)
	}

	mix, err := parseEventMix(cfg.EventMix)
	if err != nil {
		fmt.Printf("Error: invalid event mix: %v\n", err)
		os.Exit(1)
	}

	// Fail fast on an unusable secret before spinning up workers
	if _, err := buildDelivery(cfg.Secret, mix[0].eventType, time.Now()); err != nil {
		fmt.Printf("Error: cannot sign deliveries: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	httpClient := adapter.NewHTTPClient(cfg.RequestTimeout)
	results := newResults()

	fmt.Printf("Target:      %s\n", cfg.TargetURL)
	fmt.Printf("Deliveries:  %d (concurrency: %d)\n", cfg.Count, cfg.Concurrency)
	fmt.Printf("Event mix:   %s\n", cfg.EventMix)
	if cfg.InvalidPercent > 0 || cfg.DuplicatePercent > 0 {
		fmt.Printf("Corpus:      %d%% invalid signatures, %d%% duplicates\n",
			cfg.InvalidPercent, cfg.DuplicatePercent)
	}
	fmt.Println()

	started := time.Now()

	// Producer builds signed deliveries on a single goroutine so one rng can
	// drive the mix, the duplicate draws, and the signature corruption
	deliveries := make(chan *Delivery, cfg.Concurrency*2)
	go func() {
		defer close(deliveries)

		rng := rand.New(rand.NewSource(cfg.Seed))
		recent := make([]*Delivery, 0, recentWindow)

		for i := 0; i < cfg.Count; i++ {
			var delivery *Delivery
			if len(recent) > 0 && rng.Intn(100) < cfg.DuplicatePercent {
				delivery = recent[rng.Intn(len(recent))]
			} else {
				d, err := buildDelivery(cfg.Secret, pickEventType(rng, mix), time.Now())
				if err != nil {
					if cfg.Debug {
						fmt.Printf("[DEBUG] failed to build delivery: %v\n", err)
					}
					continue
				}
				if rng.Intn(100) < cfg.InvalidPercent {
					corruptSignature(d)
				} else {
					recent = append(recent, d)
					if len(recent) > recentWindow {
						recent = recent[1:]
					}
				}
				delivery = d
			}

			select {
			case deliveries <- delivery:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Workers drain the channel and post deliveries
	var wg sync.WaitGroup
	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for delivery := range deliveries {
				if ctx.Err() != nil {
					return
				}

				sendStart := time.Now()
				respBody, err := httpClient.Post(ctx, cfg.TargetURL, "application/json",
					delivery.Headers, bytes.NewReader(delivery.Body))
				elapsed := time.Since(sendStart)

				classifyResponse(results, delivery, respBody, err, elapsed, cfg.Debug)

				if cfg.Delay > 0 {
					time.Sleep(cfg.Delay)
				}
			}
		}()
	}

	// Progress indicator
	progressDone := make(chan struct{})
	go func() {
		if cfg.Debug {
			close(progressDone)
			return
		}
		defer close(progressDone)
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sent := results.sentCount()
				fmt.Printf("\r⏳ Sending... %d/%d (%s)    ",
					sent, cfg.Count, formatRate(sent, time.Since(started)))
				if sent >= cfg.Count {
					return
				}
			}
		}
	}()

	wg.Wait()
	cancel()
	<-progressDone

	printResults(cfg, results, time.Since(started))
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.TargetURL, "url", defaultTargetURL, "Webhook ingestion endpoint URL")
	flag.StringVar(&cfg.Secret, "secret", "", "Signing secret in whsec_ form (required)")
	flag.IntVar(&cfg.Count, "count", 100, "Number of deliveries to send")
	flag.IntVar(&cfg.Concurrency, "concurrency", 5, "Number of concurrent senders (default: 5)")
	flag.DurationVar(&cfg.Delay, "delay", 0, "Delay between sends per worker (e.g. 50ms)")
	flag.StringVar(&cfg.EventMix, "events", defaultEventMix, "Weighted event type mix, e.g. user.created=4,session.created=1")
	flag.IntVar(&cfg.InvalidPercent, "invalid-pct", 0, "Percent of deliveries sent with a corrupted signature")
	flag.IntVar(&cfg.DuplicatePercent, "duplicate-pct", 0, "Percent of deliveries replaying an earlier webhook ID")
	flag.Int64Var(&cfg.Seed, "seed", time.Now().UnixNano(), "Random seed for the event mix")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")

	var requestTimeoutSeconds int
	flag.IntVar(&requestTimeoutSeconds, "request-timeout", 10, "Timeout per request in seconds (default: 10)")

	flag.Parse()

	cfg.RequestTimeout = time.Duration(requestTimeoutSeconds) * time.Second

	if cfg.Count <= 0 {
		cfg.Count = 100
	}

	// Validate concurrency
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.Concurrency > 50 {
		cfg.Concurrency = 50 // Cap at 50 to keep the target's rate limiter meaningful
	}

	if cfg.InvalidPercent < 0 || cfg.InvalidPercent > 100 {
		cfg.InvalidPercent = 0
	}
	if cfg.DuplicatePercent < 0 || cfg.DuplicatePercent > 100 {
		cfg.DuplicatePercent = 0
	}

	return cfg
}

// classifyResponse buckets one delivery's result. The ingestion endpoint
// answers 200 for most outcomes and reports the real disposition in the
// response body, so the body's status field is the interesting dimension.
func classifyResponse(results *Results, delivery *Delivery, respBody []byte, err error, elapsed time.Duration, debug bool) {
	if err != nil {
		var statusErr *adapter.StatusError
		if errors.As(err, &statusErr) {
			if debug {
				fmt.Printf("[DEBUG] %s %s: HTTP %d: %s\n",
					delivery.EventType, delivery.WebhookID, statusErr.StatusCode, string(statusErr.Body))
			}
			results.recordHTTPError(statusErr.StatusCode, elapsed)
			return
		}
		if debug {
			fmt.Printf("[DEBUG] %s %s: %v\n", delivery.EventType, delivery.WebhookID, err)
		}
		results.recordTransportError(elapsed)
		return
	}

	var outcome struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(respBody, &outcome); err != nil || outcome.Status == "" {
		results.recordOutcome("unparsed", elapsed)
		return
	}

	if debug {
		fmt.Printf("[DEBUG] %s %s: %s %s\n",
			delivery.EventType, delivery.WebhookID, outcome.Status, outcome.Error)
	}
	results.recordOutcome(outcome.Status, elapsed)
}

func printResults(cfg *Config, results *Results, elapsed time.Duration) {
	results.mu.Lock()
	defer results.mu.Unlock()

	fmt.Println("\n\n" + strings.Repeat("=", 80))
	fmt.Println("LOAD GENERATION RESULTS")
	fmt.Println(strings.Repeat("=", 80))

	fmt.Printf("\nTarget:      %s\n", cfg.TargetURL)
	fmt.Printf("Deliveries:  %d in %s (%s)\n", results.sent, formatDuration(elapsed), formatRate(results.sent, elapsed))

	fmt.Println("\nOutcomes:")
	for _, status := range sortedKeys(results.outcomes) {
		count := results.outcomes[status]
		fmt.Printf("  %s %-20s %6d  (%s)\n",
			outcomeEmoji(status), status, count, percentageString(count, results.sent))
	}
	for _, code := range sortedIntKeys(results.httpErrors) {
		count := results.httpErrors[code]
		fmt.Printf("  ❌ %-20s %6d  (%s)\n",
			fmt.Sprintf("http %d", code), count, percentageString(count, results.sent))
	}
	if results.transport > 0 {
		fmt.Printf("  ❌ %-20s %6d  (%s)\n",
			"transport error", results.transport, percentageString(results.transport, results.sent))
	}

	if len(results.durations) > 0 {
		sorted := make([]time.Duration, len(results.durations))
		copy(sorted, results.durations)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		fmt.Println("\nLatency:")
		fmt.Printf("  min: %s  p50: %s  p95: %s  p99: %s  max: %s\n",
			formatDuration(sorted[0]),
			formatDuration(percentile(sorted, 0.50)),
			formatDuration(percentile(sorted, 0.95)),
			formatDuration(percentile(sorted, 0.99)),
			formatDuration(sorted[len(sorted)-1]),
		)
	}

	fmt.Println()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedIntKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
