package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var poolLabels = []string{"pool"}

func (r *Registry) initPoolMetrics() {
	factory := promauto.With(r.registry)

	r.ItemsCreatedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objectpool_items_created_total",
			Help: "Items produced by the pool factory",
		},
		poolLabels,
	)

	r.ItemsDestroyedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objectpool_items_destroyed_total",
			Help: "Items handed to the pool destructor",
		},
		poolLabels,
	)

	r.AcquiresTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objectpool_acquires_total",
			Help: "Items handed out by Acquire",
		},
		poolLabels,
	)

	r.ReleasesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objectpool_releases_total",
			Help: "Items returned through Release",
		},
		poolLabels,
	)

	r.GrowthsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objectpool_growths_total",
			Help: "Times an exhausted reservoir was grown by a batch",
		},
		poolLabels,
	)

	r.GrowthBatchSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "objectpool_growth_batch_items",
			Help:    "Items created per growth batch",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		poolLabels,
	)

	r.ReductionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objectpool_reductions_total",
			Help: "Reduce calls",
		},
		poolLabels,
	)

	r.TeardownsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objectpool_teardowns_total",
			Help: "Pools torn down",
		},
		poolLabels,
	)

	r.AvailableItems = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "objectpool_available_items",
			Help: "Items currently available for Acquire",
		},
		poolLabels,
	)

	r.ReservoirItems = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "objectpool_reservoir_items",
			Help: "Physical length of the reservoir, stale slots included",
		},
		poolLabels,
	)
}
