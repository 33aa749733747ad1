package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the object pool metrics on a private Prometheus registry.
// All pool series carry a "pool" label with the pool name.
type Registry struct {
	// Reservoir traffic
	ItemsCreatedTotal   *prometheus.CounterVec
	ItemsDestroyedTotal *prometheus.CounterVec
	AcquiresTotal       *prometheus.CounterVec
	ReleasesTotal       *prometheus.CounterVec

	// Reservoir resizing
	GrowthsTotal    *prometheus.CounterVec
	GrowthBatchSize *prometheus.HistogramVec
	ReductionsTotal *prometheus.CounterVec
	TeardownsTotal  *prometheus.CounterVec

	// Reservoir shape
	AvailableItems *prometheus.GaugeVec
	ReservoirItems *prometheus.GaugeVec

	// System
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)
