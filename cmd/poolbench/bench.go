package main

import (
	"fmt"
	"time"

	"github.com/dd0wney/cluso-pool/pkg/logging"
	"github.com/dd0wney/cluso-pool/pkg/metrics"
	"github.com/dd0wney/cluso-pool/pkg/parallel"
	"github.com/dd0wney/cluso-pool/pkg/pools"
)

const frameSize = 4096

// frame is the pooled object: a fixed-size scratch buffer that is
// expensive enough to be worth reusing.
type frame struct {
	buf []byte
	seq uint64
}

func newFrame() *frame {
	return &frame{buf: make([]byte, frameSize)}
}

func (f *frame) touch(seq uint64) {
	f.seq = seq
	f.buf[0] = byte(seq)
	f.buf[len(f.buf)-1] = byte(seq >> 8)
}

type workload struct {
	Pool        pools.Config
	Ops         int
	Burst       int
	ReduceEvery int
	Workers     int
}

func (w workload) rounds() int {
	if w.Burst <= 0 {
		return 0
	}
	return (w.Ops + w.Burst - 1) / w.Burst
}

type result struct {
	Name     string
	Ops      int
	Duration time.Duration
	Stats    pools.Stats
}

func (r result) opsPerSec() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Ops) / r.Duration.Seconds()
}

// churn runs one round on a reservoir: acquire burst frames, touch them,
// release them all. Every reduceEvery-th round reduces afterwards.
func churn(reservoir *pools.Pool[*frame], held []*frame, burst int, round int, reduceEvery int) []*frame {
	held = held[:0]
	for i := 0; i < burst; i++ {
		f := reservoir.Acquire()
		f.touch(uint64(round*burst + i))
		held = append(held, f)
	}
	for _, f := range held {
		reservoir.Release(f)
	}
	if reduceEvery > 0 && (round+1)%reduceEvery == 0 {
		reservoir.Reduce()
	}
	return held
}

func runSingle(w workload, logger logging.Logger, registry *metrics.Registry) (result, error) {
	pool, err := pools.NewFromConfig(w.Pool, newFrame, nil,
		pools.WithLogger(logger),
		pools.WithMetrics(registry),
	)
	if err != nil {
		return result{}, err
	}

	timer := logging.StartTimer(logger, "single pool churn", logging.Pool(pool.Name()))
	held := make([]*frame, 0, w.Burst)
	rounds := w.rounds()
	for round := 0; round < rounds; round++ {
		held = churn(pool, held, w.Burst, round, w.ReduceEvery)
	}
	duration := timer.End(logging.Int("rounds", rounds))

	pool.Teardown()

	return result{
		Name:     "single",
		Ops:      rounds * w.Burst,
		Duration: duration,
		Stats:    pool.Stats(),
	}, nil
}

func runParallel(w workload, logger logging.Logger, registry *metrics.Registry) (result, error) {
	wp, err := parallel.NewWorkerPool(w.Workers, func(worker int) (*pools.Pool[*frame], error) {
		cfg := w.Pool
		cfg.Name = fmt.Sprintf("%s-w%d", w.Pool.Name, worker)
		return pools.NewFromConfig(cfg, newFrame, nil,
			pools.WithLogger(logger),
			pools.WithMetrics(registry),
		)
	})
	if err != nil {
		return result{}, err
	}

	// indexed by worker, so each slot is only touched by its owner
	held := make([][]*frame, wp.Workers())
	roundsByWorker := make([]int, wp.Workers())

	timer := logging.StartTimer(logger, "parallel churn", logging.Int("workers", wp.Workers()))
	rounds := w.rounds()
	for round := 0; round < rounds; round++ {
		wp.Submit(func(worker int, reservoir *pools.Pool[*frame]) {
			held[worker] = churn(reservoir, held[worker], w.Burst, roundsByWorker[worker], w.ReduceEvery)
			roundsByWorker[worker]++
		})
	}
	wp.Close()
	duration := timer.End(logging.Int("rounds", rounds))

	stats, err := wp.Stats()
	if err != nil {
		return result{}, err
	}

	return result{
		Name:     fmt.Sprintf("parallel x%d", wp.Workers()),
		Ops:      rounds * w.Burst,
		Duration: duration,
		Stats:    parallel.Totals(stats),
	}, nil
}
