package metrics

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, vec *prometheus.CounterVec, pool string) float64 {
	t.Helper()

	counter, err := vec.GetMetricWithLabelValues(pool)
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func gaugeValue(t *testing.T, vec *prometheus.GaugeVec, pool string) float64 {
	t.Helper()

	gauge, err := vec.GetMetricWithLabelValues(pool)
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := gauge.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Gauge.GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if r.ItemsCreatedTotal == nil {
		t.Error("ItemsCreatedTotal not initialized")
	}
	if r.AcquiresTotal == nil {
		t.Error("AcquiresTotal not initialized")
	}
	if r.AvailableItems == nil {
		t.Error("AvailableItems not initialized")
	}
	if r.UptimeSeconds == nil {
		t.Error("UptimeSeconds not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordTraffic(t *testing.T) {
	r := NewRegistry()

	r.RecordCreated("frames", 100)
	r.RecordCreated("frames", 0)
	r.RecordAcquire("frames")
	r.RecordAcquire("frames")
	r.RecordRelease("frames")

	if got := counterValue(t, r.ItemsCreatedTotal, "frames"); got != 100 {
		t.Errorf("created = %v, want 100", got)
	}
	if got := counterValue(t, r.AcquiresTotal, "frames"); got != 2 {
		t.Errorf("acquires = %v, want 2", got)
	}
	if got := counterValue(t, r.ReleasesTotal, "frames"); got != 1 {
		t.Errorf("releases = %v, want 1", got)
	}
}

func TestRecordGrowth(t *testing.T) {
	r := NewRegistry()

	r.RecordGrowth("frames", 50)
	r.RecordGrowth("frames", 50)

	if got := counterValue(t, r.GrowthsTotal, "frames"); got != 2 {
		t.Errorf("growths = %v, want 2", got)
	}

	histogram, err := r.GrowthBatchSize.GetMetricWithLabelValues("frames")
	if err != nil {
		t.Fatalf("Failed to get histogram: %v", err)
	}

	var metric dto.Metric
	if err := histogram.(prometheus.Histogram).Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("Sample count = %v, want 2", metric.Histogram.GetSampleCount())
	}
	if metric.Histogram.GetSampleSum() != 100 {
		t.Errorf("Sample sum = %v, want 100", metric.Histogram.GetSampleSum())
	}
}

func TestRecordReductionAndTeardown(t *testing.T) {
	r := NewRegistry()

	r.SetReservoir("frames", 7, 10)
	if got := gaugeValue(t, r.AvailableItems, "frames"); got != 7 {
		t.Errorf("available = %v, want 7", got)
	}
	if got := gaugeValue(t, r.ReservoirItems, "frames"); got != 10 {
		t.Errorf("reservoir = %v, want 10", got)
	}

	r.RecordReduction("frames", 7)
	r.RecordTeardown("frames", 3)

	if got := counterValue(t, r.ReductionsTotal, "frames"); got != 1 {
		t.Errorf("reductions = %v, want 1", got)
	}
	if got := counterValue(t, r.TeardownsTotal, "frames"); got != 1 {
		t.Errorf("teardowns = %v, want 1", got)
	}
	if got := counterValue(t, r.ItemsDestroyedTotal, "frames"); got != 10 {
		t.Errorf("destroyed = %v, want 10", got)
	}
	if got := gaugeValue(t, r.ReservoirItems, "frames"); got != 0 {
		t.Errorf("reservoir after teardown = %v, want 0", got)
	}
}

func TestPoolLabelsAreSeparate(t *testing.T) {
	r := NewRegistry()

	r.RecordAcquire("a")
	r.RecordAcquire("b")
	r.RecordAcquire("b")

	if got := counterValue(t, r.AcquiresTotal, "a"); got != 1 {
		t.Errorf("a = %v, want 1", got)
	}
	if got := counterValue(t, r.AcquiresTotal, "b"); got != 2 {
		t.Errorf("b = %v, want 2", got)
	}
}

func TestUpdateSystemMetrics(t *testing.T) {
	r := NewRegistry()
	r.UpdateSystemMetrics(time.Now().Add(-2 * time.Second))

	var metric dto.Metric
	if err := r.UptimeSeconds.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Gauge.GetValue() < 2 {
		t.Errorf("uptime = %v, want >= 2", metric.Gauge.GetValue())
	}

	if err := r.GoRoutines.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Gauge.GetValue() < 1 {
		t.Errorf("goroutines = %v, want >= 1", metric.Gauge.GetValue())
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.RecordAcquire("shared")
			}
		}()
	}
	wg.Wait()

	if got := counterValue(t, r.AcquiresTotal, "shared"); got != 1000 {
		t.Errorf("acquires = %v, want 1000", got)
	}
}

func TestGatherAndNaming(t *testing.T) {
	r := NewRegistry()
	r.RecordAcquire("frames")
	r.SetReservoir("frames", 1, 1)

	families, err := r.GetPrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	names := make(map[string]bool)
	for _, mf := range families {
		name := mf.GetName()
		names[name] = true
		if !strings.HasPrefix(name, "objectpool_") {
			t.Errorf("Metric %s does not have objectpool_ prefix", name)
		}
	}

	for _, expected := range []string{
		"objectpool_acquires_total",
		"objectpool_available_items",
		"objectpool_uptime_seconds",
	} {
		if !names[expected] {
			t.Errorf("Expected metric %s not found", expected)
		}
	}
}

func BenchmarkRecordAcquire(b *testing.B) {
	r := NewRegistry()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.RecordAcquire("bench")
	}
}
