package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with every metric initialized.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initPoolMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry,
// for promhttp.HandlerFor or Gather.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// RecordCreated counts n items produced by the factory of pool.
func (r *Registry) RecordCreated(pool string, n int) {
	if n > 0 {
		r.ItemsCreatedTotal.WithLabelValues(pool).Add(float64(n))
	}
}

// RecordDestroyed counts n items handed to the destructor of pool.
func (r *Registry) RecordDestroyed(pool string, n int) {
	if n > 0 {
		r.ItemsDestroyedTotal.WithLabelValues(pool).Add(float64(n))
	}
}

func (r *Registry) RecordAcquire(pool string) {
	r.AcquiresTotal.WithLabelValues(pool).Inc()
}

func (r *Registry) RecordRelease(pool string) {
	r.ReleasesTotal.WithLabelValues(pool).Inc()
}

// RecordGrowth records one growth batch of n items. The items themselves
// are counted by RecordCreated.
func (r *Registry) RecordGrowth(pool string, n int) {
	r.GrowthsTotal.WithLabelValues(pool).Inc()
	r.GrowthBatchSize.WithLabelValues(pool).Observe(float64(n))
}

// RecordReduction records a Reduce call that destroyed n items.
func (r *Registry) RecordReduction(pool string, n int) {
	r.ReductionsTotal.WithLabelValues(pool).Inc()
	r.RecordDestroyed(pool, n)
}

// RecordTeardown records a Teardown that destroyed n items and drops the
// shape gauges of pool to zero.
func (r *Registry) RecordTeardown(pool string, n int) {
	r.TeardownsTotal.WithLabelValues(pool).Inc()
	r.RecordDestroyed(pool, n)
	r.SetReservoir(pool, 0, 0)
}

// SetReservoir publishes the current shape of pool.
func (r *Registry) SetReservoir(pool string, available, reservoir int) {
	r.AvailableItems.WithLabelValues(pool).Set(float64(available))
	r.ReservoirItems.WithLabelValues(pool).Set(float64(reservoir))
}

// UpdateSystemMetrics refreshes the runtime gauges. start is the time the
// process began recording.
func (r *Registry) UpdateSystemMetrics(start time.Time) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	r.UptimeSeconds.Set(time.Since(start).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(mem.Alloc))
	r.MemorySysBytes.Set(float64(mem.Sys))
}
