package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/VanDung-dev/HieraChain-Columnar/api"
	"github.com/VanDung-dev/HieraChain-Columnar/integration"
	"github.com/VanDung-dev/HieraChain-Columnar/interop"
)

// StressTestConfig holds configuration for the stress test.
type StressTestConfig struct {
	Address     string        `json:"address"`
	Concurrency int           `json:"concurrency"`
	Duration    time.Duration `json:"duration"`
	AuthToken   string        `json:"-"`
	Fixture     string        `json:"fixture"`
	ReportFile  string        `json:"-"`
}

// StressTestResult holds the results of a stress test.
type StressTestResult struct {
	TotalRequests  int64         `json:"total_requests"`
	SuccessfulReqs int64         `json:"successful"`
	FailedReqs     int64         `json:"failed"`
	TotalDuration  time.Duration `json:"duration"`
	AvgLatency     time.Duration `json:"avg_latency"`
	MinLatency     time.Duration `json:"min_latency"`
	MaxLatency     time.Duration `json:"max_latency"`
	RequestsPerSec float64       `json:"requests_per_sec"`
}

type counters struct {
	total, success, failed atomic.Int64
	latency                atomic.Int64
	min, max               atomic.Int64
}

func main() {
	config := parseFlags()

	payload, err := loadPayload(config.Fixture)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("=== Arrow Server Stress Test ===")
	fmt.Printf("Target: %s\n", config.Address)
	fmt.Printf("Concurrency: %d workers\n", config.Concurrency)
	fmt.Printf("Duration: %v\n", config.Duration)
	fmt.Printf("Payload: %d bytes from %s\n", len(payload), config.Fixture)
	fmt.Println()

	result := runStressTest(config, payload)
	printResults(result)

	if config.ReportFile != "" {
		saveReport(config, result)
	}
}

func parseFlags() StressTestConfig {
	var config StressTestConfig
	app := kingpin.New("stress_test", "Load test for arrow-server.")
	app.Flag("addr", "Arrow server address.").Default("127.0.0.1:50051").StringVar(&config.Address)
	app.Flag("concurrency", "Number of concurrent workers.").Short('c').Default("10").IntVar(&config.Concurrency)
	app.Flag("duration", "Duration of test.").Short('d').Default("30s").DurationVar(&config.Duration)
	app.Flag("token", "Authentication token; empty skips the handshake.").Envar("HIE_AUTH_TOKEN").StringVar(&config.AuthToken)
	app.Flag("fixture", "Integration JSON file sent as the request batches.").Required().ExistingFileVar(&config.Fixture)
	app.Flag("output", "Output report file (JSON).").Short('o').StringVar(&config.ReportFile)
	kingpin.MustParse(app.Parse(os.Args[1:]))
	return config
}

// loadPayload encodes the first batch of an integration file as an IPC
// stream.
func loadPayload(path string) ([]byte, error) {
	f, err := integration.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cols, err := f.Batch(0, memory.DefaultAllocator)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()
	return interop.NewIPCWriter(nil).WriteArrays(cols)
}

func runStressTest(config StressTestConfig, payload []byte) StressTestResult {
	var c counters
	c.min.Store(1<<63 - 1)

	ctx, cancel := context.WithTimeout(context.Background(), config.Duration)
	defer cancel()

	startTime := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < config.Concurrency; i++ {
		g.Go(func() error {
			runWorker(ctx, config, payload, &c)
			return nil
		})
	}
	_ = g.Wait()

	duration := time.Since(startTime)
	total, success := c.total.Load(), c.success.Load()

	var avgLatency, minLatency time.Duration
	if success > 0 {
		avgLatency = time.Duration(c.latency.Load() / success)
		minLatency = time.Duration(c.min.Load())
	}
	return StressTestResult{
		TotalRequests:  total,
		SuccessfulReqs: success,
		FailedReqs:     c.failed.Load(),
		TotalDuration:  duration,
		AvgLatency:     avgLatency,
		MinLatency:     minLatency,
		MaxLatency:     time.Duration(c.max.Load()),
		RequestsPerSec: float64(total) / duration.Seconds(),
	}
}

func runWorker(ctx context.Context, config StressTestConfig, payload []byte, c *counters) {
	for ctx.Err() == nil {
		latency, err := sendRequest(config, payload)
		c.total.Add(1)
		if err != nil {
			c.failed.Add(1)
			// Small sleep on error to avoid hammering
			time.Sleep(10 * time.Millisecond)
			continue
		}

		c.success.Add(1)
		lat := int64(latency)
		c.latency.Add(lat)
		for {
			old := c.min.Load()
			if lat >= old || c.min.CompareAndSwap(old, lat) {
				break
			}
		}
		for {
			old := c.max.Load()
			if lat <= old || c.max.CompareAndSwap(old, lat) {
				break
			}
		}
	}
}

func sendRequest(config StressTestConfig, payload []byte) (time.Duration, error) {
	conn, err := net.DialTimeout("tcp", config.Address, 5*time.Second)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	if config.AuthToken != "" {
		if err := api.ClientHandshake(conn, config.AuthToken, api.MaxMessageSize); err != nil {
			return 0, err
		}
	}

	start := time.Now()
	if err := api.WriteMessage(conn, payload, api.MaxMessageSize); err != nil {
		return 0, err
	}
	b, err := api.ReadMessage(conn, api.MaxMessageSize)
	latency := time.Since(start)
	if err != nil {
		return 0, err
	}

	var resp api.Response
	if err := json.Unmarshal(b, &resp); err != nil {
		return 0, err
	}
	if !resp.OK {
		return 0, fmt.Errorf("server rejected batch: %s", resp.Error)
	}
	return latency, nil
}

func printResults(result StressTestResult) {
	fmt.Println("=== Results ===")
	fmt.Printf("Duration:        %v\n", result.TotalDuration.Round(time.Millisecond))
	fmt.Printf("Total Requests:  %d\n", result.TotalRequests)
	if result.TotalRequests > 0 {
		fmt.Printf("Successful:      %d (%.2f%%)\n", result.SuccessfulReqs, float64(result.SuccessfulReqs)/float64(result.TotalRequests)*100)
		fmt.Printf("Failed:          %d (%.2f%%)\n", result.FailedReqs, float64(result.FailedReqs)/float64(result.TotalRequests)*100)
	}
	fmt.Printf("Requests/sec:    %.2f\n", result.RequestsPerSec)
	fmt.Printf("Avg Latency:     %v\n", result.AvgLatency.Round(time.Microsecond))
	fmt.Printf("Min Latency:     %v\n", result.MinLatency.Round(time.Microsecond))
	fmt.Printf("Max Latency:     %v\n", result.MaxLatency.Round(time.Microsecond))
}

func saveReport(config StressTestConfig, result StressTestResult) {
	report := struct {
		Config    StressTestConfig `json:"config"`
		Results   StressTestResult `json:"results"`
		Timestamp string           `json:"timestamp"`
	}{config, result, time.Now().Format(time.RFC3339)}

	data, err := json.MarshalIndent(report, "", "  ")
	if err == nil {
		err = os.WriteFile(config.ReportFile, data, 0o644)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write report: %v\n", err)
		return
	}
	fmt.Printf("Report saved to: %s\n", config.ReportFile)
}
