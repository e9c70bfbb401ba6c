package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kjstillabower/weather-forecast-service/internal/forecast"
	"github.com/kjstillabower/weather-forecast-service/internal/models"
	"github.com/kjstillabower/weather-forecast-service/internal/traffic"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases, SLO breaches.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation, capacity limits.
	HTTPRequestsInFlight prometheus.Gauge

	// Forecast records generated. rate() gives record throughput across both endpoints.
	ForecastRecordsGeneratedTotal prometheus.Counter

	// Distribution of generated Celsius temperatures. Watch for: drift from the
	// uniform [-20, 55) contract after generator changes.
	ForecastTemperatureCelsius prometheus.Histogram

	// Generated summaries by vocabulary entry. Each label is one of the fixed ten.
	ForecastSummariesTotal *prometheus.CounterVec

	// Statistics aggregations served. Watch for: /temperaturestats traffic volume.
	StatsAggregationsTotal prometheus.Counter

	// Rate limit denials. Watch for: overload, capacity exceeded.
	RateLimitDeniedTotal prometheus.Counter

	rateLimitGaugesOnce sync.Once
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	ForecastRecordsGeneratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "forecastRecordsGeneratedTotal",
			Help: "Total number of forecast records generated",
		},
	)
	ForecastTemperatureCelsius = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forecastTemperatureCelsius",
			Help:    "Distribution of generated Celsius temperatures",
			Buckets: prometheus.LinearBuckets(forecast.MinTemperatureC, 15, 6),
		},
	)
	ForecastSummariesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastSummariesTotal",
			Help: "Generated forecast summaries by vocabulary entry",
		},
		[]string{"summary"},
	)
	StatsAggregationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "statsAggregationsTotal",
			Help: "Total number of temperature statistics aggregations served",
		},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		ForecastRecordsGeneratedTotal, ForecastTemperatureCelsius, ForecastSummariesTotal,
		StatsAggregationsTotal,
		RateLimitDeniedTotal,
	)
}

// RegisterRateLimitGauges registers load and rejects gauges for the rate-limited path.
// Call from main after config load with cfg.OverloadWindow. Uses same window as lifecycle.
func RegisterRateLimitGauges(window time.Duration) {
	rateLimitGaugesOnce.Do(func() {
		registry.MustRegister(
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "rateLimitRequestsInWindow",
					Help: "Requests hitting rate-limited path in sliding window; load/capacity planning",
				},
				func() float64 { return float64(traffic.RequestCount(window)) },
			),
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "rateLimitRejectsInWindow",
					Help: "429 responses in sliding window; are we rejecting requests",
				},
				func() float64 { return float64(traffic.DenialCount(window)) },
			),
		)
	})
}

// RecordForecast records generation metrics for a batch of forecast records.
func RecordForecast(records []models.ForecastRecord) {
	ForecastRecordsGeneratedTotal.Add(float64(len(records)))
	for _, r := range records {
		ForecastTemperatureCelsius.Observe(float64(r.TemperatureC))
		ForecastSummariesTotal.WithLabelValues(r.Summary).Inc()
	}
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
