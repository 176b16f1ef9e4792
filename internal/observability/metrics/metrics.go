package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "pvhealth_"

	// ResultSuccess labels successful operations.
	ResultSuccess = "success"
	// ResultError labels failed operations.
	ResultError = "error"
	// ResultInsufficient labels generations rejected for missing inputs.
	ResultInsufficient = "insufficient_data"
)

var (
	registerOnce sync.Once

	ingestRequests *prometheus.CounterVec
	ingestDropped  prometheus.Counter
	ingestLatency  *prometheus.HistogramVec

	profileGenerateTotal   *prometheus.CounterVec
	profileGenerateLatency *prometheus.HistogramVec

	profileExportTotal *prometheus.CounterVec

	testsRecordedTotal prometheus.Counter
)

// Init registers service metrics with the default registry.
func Init() {
	registerOnce.Do(func() {
		ingestRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "field_report_ingest_total",
				Help: "Total field report ingest requests by result",
			},
			[]string{"result"},
		)
		ingestDropped = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "field_report_dropped_fields_total",
				Help: "Total non-numeric field values silently dropped at ingest",
			},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "field_report_ingest_latency_seconds",
				Help:    "Field report ingest latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		profileGenerateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "profile_generate_total",
				Help: "Total profile generation attempts by result",
			},
			[]string{"result"},
		)
		profileGenerateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "profile_generate_latency_seconds",
				Help:    "Profile generation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		profileExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "profile_export_total",
				Help: "Total profile report exports by format and result",
			},
			[]string{"format", "result"},
		)

		testsRecordedTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "tests_recorded_total",
				Help: "Total test records appended",
			},
		)

		prometheus.MustRegister(
			ingestRequests,
			ingestDropped,
			ingestLatency,
			profileGenerateTotal,
			profileGenerateLatency,
			profileExportTotal,
			testsRecordedTotal,
		)
	})
}

// ObserveIngest records one ingest request outcome.
func ObserveIngest(result string, elapsed time.Duration) {
	if ingestRequests == nil {
		return
	}
	ingestRequests.WithLabelValues(result).Inc()
	ingestLatency.WithLabelValues(result).Observe(elapsed.Seconds())
}

// AddDroppedFields counts silently dropped non-numeric ingest fields.
func AddDroppedFields(n int) {
	if ingestDropped == nil || n <= 0 {
		return
	}
	ingestDropped.Add(float64(n))
}

// ObserveProfileGeneration records one generation attempt outcome.
func ObserveProfileGeneration(result string, elapsed time.Duration) {
	if profileGenerateTotal == nil {
		return
	}
	profileGenerateTotal.WithLabelValues(result).Inc()
	profileGenerateLatency.WithLabelValues(result).Observe(elapsed.Seconds())
}

// IncProfileExport records one export by format.
func IncProfileExport(format, result string) {
	if profileExportTotal == nil {
		return
	}
	profileExportTotal.WithLabelValues(format, result).Inc()
}

// IncTestRecorded counts one appended test record.
func IncTestRecorded() {
	if testsRecordedTotal == nil {
		return
	}
	testsRecordedTotal.Inc()
}
