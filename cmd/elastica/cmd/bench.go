package cmd

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark a call path of the add function",
		Long: `Calls the add function with random operands from concurrent workers for a fixed
duration and reports throughput and latency for the selected call path.`,
		Args: cobra.NoArgs,
		RunE: runBench,
	}

	addViaFlag(cmd.Flags())
	cmd.Flags().DurationP("duration", "t", 10*time.Second, "Duration to run the benchmark")
	cmd.Flags().IntP("workers", "w", runtime.NumCPU(), "Number of concurrent workers")
	cmd.Flags().Duration("progress", 5*time.Second, "Interval between progress reports")
	return cmd
}

type BenchmarkResults struct {
	Via          string        `json:"via"`
	TotalOps     int64         `json:"totalOps"`
	Errors       int64         `json:"errors"`
	ElapsedTime  time.Duration `json:"elapsedTime"`
	OpsPerSecond float64       `json:"opsPerSecond"`
	LatencyNs    float64       `json:"latencyNs"`
}

type benchConfig struct {
	via      string
	duration time.Duration
	workers  int
	progress time.Duration
}

func runBench(cmd *cobra.Command, args []string) error {
	var cfg benchConfig
	var err error
	if cfg.via, err = cmd.Flags().GetString("via"); err != nil {
		return fmt.Errorf("failed to get via: %w", err)
	}
	if cfg.duration, err = cmd.Flags().GetDuration("duration"); err != nil {
		return fmt.Errorf("failed to get duration: %w", err)
	}
	if cfg.workers, err = cmd.Flags().GetInt("workers"); err != nil {
		return fmt.Errorf("failed to get workers: %w", err)
	}
	if cfg.progress, err = cmd.Flags().GetDuration("progress"); err != nil {
		return fmt.Errorf("failed to get progress: %w", err)
	}
	if cfg.workers < 1 {
		return fmt.Errorf("--workers must be at least 1, got %d", cfg.workers)
	}
	if cfg.duration <= 0 {
		return fmt.Errorf("--duration must be positive, got %v", cfg.duration)
	}

	add, closeAdder, err := newAdder(cmd.Context(), cfg.via)
	if err != nil {
		return err
	}
	defer closeAdder()

	logger.Info("starting benchmark", "via", cfg.via, "duration", cfg.duration, "workers", cfg.workers)

	results, err := executeBenchmark(cmd.Context(), add, cfg)
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	printResults(cmd.OutOrStdout(), results)
	return nil
}

func executeBenchmark(ctx context.Context, add adder, cfg benchConfig) (*BenchmarkResults, error) {
	startTime := time.Now()
	endTime := startTime.Add(cfg.duration)

	// Shared counters for all workers
	var totalOps, totalErrors, totalLatency atomic.Int64

	benchCtx, cancel := context.WithTimeout(ctx, cfg.duration)
	defer cancel()

	p := pool.New().WithMaxGoroutines(cfg.workers)
	for i := 0; i < cfg.workers; i++ {
		workerID := i
		p.Go(func() {
			benchWorker(benchCtx, add, workerID, &totalOps, &totalErrors, &totalLatency)
		})
	}

	if cfg.progress > 0 {
		progressTicker := time.NewTicker(cfg.progress)
		defer progressTicker.Stop()

		go func() {
			for {
				select {
				case <-progressTicker.C:
					currentOps := totalOps.Load()
					elapsed := time.Since(startTime)
					remaining := time.Until(endTime)
					if remaining > 0 {
						logger.Info("progress",
							"ops", currentOps,
							"opsPerSec", fmt.Sprintf("%.1f", float64(currentOps)/elapsed.Seconds()),
							"remaining", remaining.Round(time.Second))
					}
				case <-benchCtx.Done():
					return
				}
			}
		}()
	}

	p.Wait()

	results := summarize(cfg.via, totalOps.Load(), totalErrors.Load(), totalLatency.Load(), time.Since(startTime))
	if results.TotalOps == 0 {
		return nil, fmt.Errorf("no operations completed (%d errors)", results.Errors)
	}
	return results, nil
}

// summarize turns the worker counters into results. Latency covers every
// call made, failed ones included, so it is averaged over all of them.
func summarize(via string, ops, errs, latencyNs int64, elapsed time.Duration) *BenchmarkResults {
	results := &BenchmarkResults{
		Via:         via,
		TotalOps:    ops,
		Errors:      errs,
		ElapsedTime: elapsed,
	}
	if elapsed > 0 {
		results.OpsPerSecond = float64(ops) / elapsed.Seconds()
	}
	if calls := ops + errs; calls > 0 {
		results.LatencyNs = float64(latencyNs) / float64(calls)
	}
	return results
}

// checkEvery is how many calls a worker makes between deadline checks, so
// the check does not dominate the cheap call paths.
const checkEvery = 256

func benchWorker(ctx context.Context, add adder, workerID int, totalOps, totalErrors, totalLatency *atomic.Int64) {
	// Create a local random source for this worker to avoid contention
	localRand := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		if ctx.Err() != nil {
			return
		}

		var ops, errs int64
		opStart := time.Now()
		for i := 0; i < checkEvery; i++ {
			a, b := int32(localRand.Uint32()), int32(localRand.Uint32())
			if _, err := add(ctx, a, b); err != nil {
				// Log error but don't stop the benchmark for individual failures
				logger.Debug("call failed", "worker", workerID, "err", err)
				errs++
				continue
			}
			ops++
		}

		totalOps.Add(ops)
		totalErrors.Add(errs)
		totalLatency.Add(time.Since(opStart).Nanoseconds())
	}
}

func printResults(w io.Writer, results *BenchmarkResults) {
	fmt.Fprintf(w, "\n=== Benchmark Results ===\n")
	fmt.Fprintf(w, "Call path: %s\n", results.Via)
	fmt.Fprintf(w, "Total ops: %d\n", results.TotalOps)
	fmt.Fprintf(w, "Errors: %d\n", results.Errors)
	fmt.Fprintf(w, "Total elapsed time: %v\n", results.ElapsedTime.Round(time.Millisecond))
	fmt.Fprintf(w, "Ops/sec: %.2f\n", results.OpsPerSecond)
	fmt.Fprintf(w, "Latency (mean): %.2f ns\n", results.LatencyNs)
	fmt.Fprintf(w, "========================\n")

	// Print markdown table for README
	fmt.Fprintf(w, "\n=== Markdown Table (Add Benchmark) ===\n")
	fmt.Fprintf(w, "| Call Path | Total Ops | Duration (ms) | Ops/sec | Latency (ns) |\n")
	fmt.Fprintf(w, "|-----------|-----------|---------------|---------|--------------|\n")
	fmt.Fprintf(w, "| %s | %d | %d | %.2f | %.2f |\n",
		results.Via,
		results.TotalOps,
		results.ElapsedTime.Milliseconds(),
		results.OpsPerSecond,
		results.LatencyNs)
	fmt.Fprintf(w, "======================================\n")
}
