package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
)

const (
	baseURL      = "http://127.0.0.1:8087"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numPages     = 500
)

var hosts = []string{"example.com", "example.org", "example.net"}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type endpointSummary struct {
	requests  int
	failures  int
	latencies []time.Duration
}

func (e *endpointSummary) record(r result) {
	e.requests++
	if r.err {
		e.failures++
	}
	e.latencies = append(e.latencies, r.latency)
}

func (e *endpointSummary) quantile(q float64) time.Duration {
	if len(e.latencies) == 0 {
		return 0
	}
	idx := min(int(float64(len(e.latencies))*q), len(e.latencies)-1)
	return e.latencies[idx]
}

func (e *endpointSummary) mean() time.Duration {
	if len(e.latencies) == 0 {
		return 0
	}
	var sum time.Duration
	for _, l := range e.latencies {
		sum += l
	}
	return sum / time.Duration(len(e.latencies))
}

func main() {
	fmt.Println("=== UpdateScanner API Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Pages: %d\n\n", numWorkers, testDuration, numPages)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Seeding pages (POST /pages/add) ---")
	runPhase(testDuration/2, doAddPage)

	fmt.Println("\n--- Phase 2: Mixed load (20% add, 20% view, 60% reads) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.20:
			return doAddPage(rng)
		case r < 0.40:
			return doView(rng)
		case r < 0.70:
			return doGet("/pages", "GET /pages")
		case r < 0.90:
			return doGet("/pages/changed", "GET /pages/changed")
		default:
			return doGet("/health", "GET /health")
		}
	})

	fmt.Println("\n--- Phase 3: Read-heavy load (cached listings) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.05:
			return doView(rng)
		case r < 0.55:
			return doGet("/pages", "GET /pages")
		case r < 0.95:
			return doGet("/pages/changed", "GET /pages/changed")
		default:
			return doGet("/health", "GET /health")
		}
	})
}

// runPhase drives numWorkers workers against the API until the phase
// deadline and prints a per-endpoint latency table.
func runPhase(duration time.Duration, work func(rng *rand.Rand) result) {
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	results := make(chan result, 4*numWorkers)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < numWorkers; i++ {
		seed := time.Now().UnixNano() + int64(i)
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed))
			for ctx.Err() == nil {
				results <- work(rng)
			}
			return nil
		})
	}

	summaries := make(map[string]*endpointSummary)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for r := range results {
			sum, ok := summaries[r.endpoint]
			if !ok {
				sum = &endpointSummary{}
				summaries[r.endpoint] = sum
			}
			sum.record(r)
		}
	}()

	_ = g.Wait()
	close(results)
	<-collected

	report(summaries, duration)
}

func report(summaries map[string]*endpointSummary, duration time.Duration) {
	names := make([]string, 0, len(summaries))
	for name := range summaries {
		names = append(names, name)
	}
	sort.Strings(names)

	rule := "  " + strings.Repeat("=", 92)
	fmt.Printf("\n  %-24s %8s %6s %10s %10s %10s %10s\n", "Endpoint", "Reqs", "Fail", "Mean", "P50", "P95", "P99")
	fmt.Println(rule)

	var requests, failures int
	for _, name := range names {
		sum := summaries[name]
		requests += sum.requests
		failures += sum.failures
		sort.Slice(sum.latencies, func(i, j int) bool { return sum.latencies[i] < sum.latencies[j] })
		fmt.Printf("  %-24s %8d %6d %10s %10s %10s %10s\n", name, sum.requests, sum.failures,
			fmtDur(sum.mean()), fmtDur(sum.quantile(0.50)), fmtDur(sum.quantile(0.95)), fmtDur(sum.quantile(0.99)))
	}

	fmt.Println(rule)
	if requests == 0 {
		fmt.Println("  No requests completed")
		return
	}
	fmt.Printf("  %d requests, %d failed (%.1f%%), %.0f req/s\n",
		requests, failures, float64(failures)/float64(requests)*100, float64(requests)/duration.Seconds())
}

type seededPages struct {
	mu  sync.RWMutex
	ids []string
}

func (s *seededPages) add(id string) {
	s.mu.Lock()
	s.ids = append(s.ids, id)
	s.mu.Unlock()
}

func (s *seededPages) pick(rng *rand.Rand) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.ids) == 0 {
		return "", false
	}
	return s.ids[rng.Intn(len(s.ids))], true
}

var pages = &seededPages{}

// scanRateMinutes stays 0 so the autoscan loop never fetches the fake hosts.
func doAddPage(rng *rand.Rand) result {
	body := map[string]interface{}{
		"title":           fmt.Sprintf("Page %d", rng.Intn(numPages)),
		"url":             fmt.Sprintf("http://%s/page/%d", hosts[rng.Intn(len(hosts))], rng.Intn(numPages)),
		"scanRateMinutes": 0,
	}
	if rng.Float64() < 0.5 {
		body["contentMode"] = "article"
	}

	data, _ := json.Marshal(body)
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/pages/add", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /pages/add", 0, lat, true}
	}
	defer resp.Body.Close()
	var page struct {
		ID string `json:"id"`
	}
	if resp.StatusCode == http.StatusCreated && json.NewDecoder(resp.Body).Decode(&page) == nil {
		pages.add(page.ID)
	}
	io.Copy(io.Discard, resp.Body)
	return result{"POST /pages/add", resp.StatusCode, lat, resp.StatusCode != http.StatusCreated}
}

func doView(rng *rand.Rand) result {
	id, ok := pages.pick(rng)
	if !ok {
		return doGet("/pages", "GET /pages")
	}
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/pages/view?id="+id, "application/json", nil)
	lat := time.Since(start)
	if err != nil {
		return result{"POST /pages/view", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /pages/view", resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func doGet(path, endpoint string) result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + path)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
