package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-pool/pkg/logging"
	"github.com/dd0wney/cluso-pool/pkg/metrics"
	"github.com/dd0wney/cluso-pool/pkg/pools"
	"github.com/dd0wney/cluso-pool/pkg/validation"
)

// maxWorkers bounds -workers. Each worker owns a goroutine and a pool.
const maxWorkers = 4096

type settings struct {
	workload    workload
	metricsAddr string
	logLevel    logging.Level
}

func main() {
	s, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "poolbench: %v\n", err)
		os.Exit(2)
	}

	logger := logging.NewJSONLogger(os.Stderr, s.logLevel).With(logging.Component("poolbench"))
	logging.SetDefaultLogger(logger)

	registry := metrics.NewRegistry()
	if err := run(s.workload, os.Stdout, logger, registry); err != nil {
		logger.Error("benchmark failed", logging.Error(err))
		os.Exit(1)
	}

	if s.metricsAddr != "" {
		if err := serveMetrics(s.metricsAddr, registry, logger); err != nil {
			logger.Error("metrics server error", logging.Error(err))
			os.Exit(1)
		}
	}
}

// parseFlags builds the run settings. A -config file supplies the pool
// sizing; -init and -growth override it when given explicitly.
func parseFlags(args []string) (settings, error) {
	fs := flag.NewFlagSet("poolbench", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML pool config (name, init_count, growth_count)")
	initCount := fs.Int("init", pools.DefaultInitCount, "Items created when the pool is built")
	growthCount := fs.Int("growth", pools.DefaultGrowthCount, "Items created per growth batch")
	ops := fs.Int("ops", 1_000_000, "Acquire/release pairs to run")
	burst := fs.Int("burst", 256, "Items held at once per round")
	reduceEvery := fs.Int("reduce-every", 64, "Reduce after every N rounds (0 disables)")
	workers := fs.Int("workers", 4, "Workers for the parallel run, each with its own pool")
	metricsAddr := fs.String("metrics-addr", "", "Serve /metrics on this address after the run")
	logLevel := fs.String("log-level", "info", "Log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return settings{}, err
	}

	cfg := pools.DefaultConfig()
	cfg.Name = "frames"
	if *configPath != "" {
		loaded, err := pools.LoadConfig(*configPath)
		if err != nil {
			return settings{}, err
		}
		cfg = loaded
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "init":
			cfg.InitCount = *initCount
		case "growth":
			cfg.GrowthCount = *growthCount
		}
	})
	if err := cfg.Validate(); err != nil {
		return settings{}, err
	}

	err := validation.NewConfigValidator("poolbench").
		Positive("ops", *ops).
		Positive("burst", *burst).
		NonNegative("reduce-every", *reduceEvery).
		MaxInt("workers", *workers, maxWorkers).
		When(*metricsAddr != "", func(cv *validation.ConfigValidator) {
			cv.Custom("metrics-addr", func() error {
				_, _, err := net.SplitHostPort(*metricsAddr)
				return err
			})
		}).
		Validate()
	if err != nil {
		return settings{}, err
	}

	return settings{
		workload: workload{
			Pool:        cfg,
			Ops:         *ops,
			Burst:       *burst,
			ReduceEvery: *reduceEvery,
			Workers:     *workers,
		},
		metricsAddr: *metricsAddr,
		logLevel:    logging.ParseLevel(*logLevel),
	}, nil
}

func run(w workload, out io.Writer, logger logging.Logger, registry *metrics.Registry) error {
	fmt.Fprintf(out, "Object Pool Benchmark\n")
	fmt.Fprintf(out, "=====================\n\n")
	fmt.Fprintf(out, "Configuration:\n")
	fmt.Fprintf(out, "  Pool: %s\n", w.Pool.Name)
	fmt.Fprintf(out, "  Init Count: %d\n", w.Pool.InitCount)
	fmt.Fprintf(out, "  Growth Count: %d\n", w.Pool.GrowthCount)
	fmt.Fprintf(out, "  Ops: %d\n", w.Ops)
	fmt.Fprintf(out, "  Burst: %d\n", w.Burst)
	fmt.Fprintf(out, "  Reduce Every: %d rounds\n", w.ReduceEvery)
	fmt.Fprintf(out, "  Workers: %d\n", w.Workers)

	start := time.Now()

	fmt.Fprintf(out, "\nBenchmark 1: Single Pool Churn\n")
	single, err := runSingle(w, logger, registry)
	if err != nil {
		return fmt.Errorf("single pool run: %w", err)
	}
	printResult(out, single)

	fmt.Fprintf(out, "\nBenchmark 2: Per-Worker Pools\n")
	par, err := runParallel(w, logger, registry)
	if err != nil {
		return fmt.Errorf("parallel run: %w", err)
	}
	printResult(out, par)

	registry.UpdateSystemMetrics(start)
	fmt.Fprintf(out, "\nDone in %v\n", time.Since(start))
	return nil
}

func printResult(out io.Writer, r result) {
	fmt.Fprintf(out, "  %s: %d ops in %v\n", r.Name, r.Ops, r.Duration)
	if r.Ops > 0 {
		fmt.Fprintf(out, "  Average: %.3fμs per op\n", float64(r.Duration.Nanoseconds())/1e3/float64(r.Ops))
	}
	fmt.Fprintf(out, "  Throughput: %.0f ops/sec\n", r.opsPerSec())
	fmt.Fprintf(out, "  Stats: %s\n", r.Stats)
	if r.Stats.Acquired > 0 {
		created := float64(r.Stats.Created) / float64(r.Stats.Acquired) * 100
		fmt.Fprintf(out, "  Creates per acquire: %.2f%%\n", created)
	}
}

// serveMetrics exposes the registry until SIGINT or SIGTERM.
func serveMetrics(addr string, registry *metrics.Registry, logger logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry.GetPrometheusRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", logging.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down metrics server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
