package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/weather-forecast-service/internal/forecast"
	"github.com/kjstillabower/weather-forecast-service/internal/idle"
	"github.com/kjstillabower/weather-forecast-service/internal/lifecycle"
	"github.com/kjstillabower/weather-forecast-service/internal/observability"
	"github.com/kjstillabower/weather-forecast-service/internal/stats"
	"github.com/kjstillabower/weather-forecast-service/internal/traffic"
)

// HealthConfig holds lifecycle thresholds for the health handler.
type HealthConfig struct {
	OverloadWindow         time.Duration
	OverloadThresholdPct   int
	RateLimitRPS           int
	RateLimitBurst         int // 0 when rate limiter disabled
	IdleWindow             time.Duration
	IdleThresholdReqPerMin int
	MinimumLifespan        time.Duration
	StartTime              time.Time
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	generator        *forecast.Generator
	forecastDays     int
	statsSampleSize  int
	healthConfig     *HealthConfig
	logger           *zap.Logger
	rateLimiter      *rate.Limiter
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler. forecastDays and statsSampleSize are the
// record counts for the two forecast endpoints.
func NewHandler(
	generator *forecast.Generator,
	forecastDays int,
	statsSampleSize int,
	healthConfig *HealthConfig,
	logger *zap.Logger,
	rateLimiter *rate.Limiter,
) *Handler {
	return &Handler{
		generator:       generator,
		forecastDays:    forecastDays,
		statsSampleSize: statsSampleSize,
		healthConfig:    healthConfig,
		logger:          logger,
		rateLimiter:     rateLimiter,
	}
}

// GetForecast handles GET /weatherforecast. Responds with a JSON array of
// freshly generated forecast records.
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	idle.RecordRequest()

	records, err := h.generator.Generate(h.forecastDays)
	if err != nil {
		writeGenerationError(w, r, err)
		return
	}
	observability.RecordForecast(records)
	traffic.RecordServed()

	if logger := loggerFromContext(r.Context()); logger != nil {
		logger.Debug("forecast served", zap.Int("records", len(records)))
	}
	writeJSON(w, http.StatusOK, records)
}

// GetTemperatureStats handles GET /temperaturestats. Generates a fresh sample
// and responds with its aggregated temperature statistics.
func (h *Handler) GetTemperatureStats(w http.ResponseWriter, r *http.Request) {
	idle.RecordRequest()

	records, err := h.generator.Generate(h.statsSampleSize)
	if err != nil {
		writeGenerationError(w, r, err)
		return
	}
	result, err := stats.Aggregate(records)
	if err != nil {
		// Only reachable when statsSampleSize is 0, which config validation rejects.
		writeGenerationError(w, r, err)
		return
	}
	observability.RecordForecast(records)
	observability.StatsAggregationsTotal.Inc()
	traffic.RecordServed()

	if logger := loggerFromContext(r.Context()); logger != nil {
		logger.Debug("temperature stats served",
			zap.Int("sample_size", len(records)),
			zap.Int("highest", result.Highest),
			zap.Int("lowest", result.Lowest),
			zap.Float64("average", result.Average))
	}
	writeJSON(w, http.StatusOK, result)
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus(r.Context())

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	resp := map[string]interface{}{
		"status":    result.status,
		"service":   "weather-forecast-service",
		"version":   "dev",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// computeHealthStatus determines the current health status by evaluating
// conditions in priority order: shutting-down > overloaded > idle > healthy.
func (h *Handler) computeHealthStatus(ctx context.Context) healthResult {
	if lifecycle.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	if h.healthConfig == nil {
		return healthResult{"healthy", http.StatusOK, ""}
	}
	// Overloaded when rate-limit denials exceed the configured share of window capacity.
	threshold := float64(h.healthConfig.RateLimitRPS) * h.healthConfig.OverloadWindow.Seconds() * float64(h.healthConfig.OverloadThresholdPct) / 100
	if h.healthConfig.RateLimitRPS > 0 && float64(traffic.RequestCount(h.healthConfig.OverloadWindow)) > threshold {
		return healthResult{"overloaded", http.StatusServiceUnavailable, "overload_threshold"}
	}
	// Idle only after the minimum lifespan has elapsed.
	if h.healthConfig.IdleWindow > 0 && h.healthConfig.MinimumLifespan > 0 && time.Since(h.healthConfig.StartTime) >= h.healthConfig.MinimumLifespan {
		if idle.RequestCount(h.healthConfig.IdleWindow) < h.healthConfig.IdleThresholdReqPerMin {
			return healthResult{"idle", http.StatusOK, "low_traffic"}
		}
	}
	return healthResult{"healthy", http.StatusOK, ""}
}

// loggerFromContext extracts a zap.Logger from request context if present.
func loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return nil
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code,
// message, and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := ""
	if v := r.Context().Value("correlation_id"); v != nil {
		corrID = v.(string)
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}

// writeGenerationError writes a 500 response for core generation failures.
// These indicate a caller precondition violation (negative count, empty
// sample), which only configuration errors can produce here.
func writeGenerationError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, http.StatusInternalServerError, "GENERATION_FAILED", "Unable to generate forecast data")
	if logger := loggerFromContext(r.Context()); logger != nil {
		logger.Error("forecast generation failed", zap.Error(err))
	}
}
