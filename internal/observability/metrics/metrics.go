package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

var (
	once                        sync.Once
	metricsRouter               *chi.Mux
	tokenClientLatency          *prometheus.HistogramVec
	govClientLatency            *prometheus.HistogramVec
	queueReceiveErrorCounter    prometheus.Counter
	pollerDurationHistogram     *prometheus.HistogramVec
	activeProposalsGauge        prometheus.Gauge
	poolEventProcessingDuration *prometheus.HistogramVec
	castVoteErrorCounter        prometheus.Counter
	timeIndexGauge              prometheus.Gauge
	dbLatency                   *prometheus.HistogramVec
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics initializes and register the Prometheus metrics.
func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	tokenClientLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "token_client_latency_seconds",
			Help:    "Histogram of token ledger client durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	govClientLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gov_client_latency_seconds",
			Help:    "Histogram of governor client durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	// add a counter for the number of errors when consuming messages from the queue
	queueReceiveErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_receive_error_count",
			Help: "The total number of errors when receiving messages from the queue",
		},
	)

	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of poller durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"type", "status"},
	)

	activeProposalsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_proposals_count",
			Help: "Number of proposals currently accepting votes",
		},
	)

	poolEventProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pool_event_processing_duration_seconds",
			Help:    "Pool event processing duration in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"event_type", "status", "retry"},
	)

	castVoteErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cast_vote_error_count",
			Help: "Number of failures when forwarding expressed votes to the governor",
		},
	)

	timeIndexGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_time_index",
			Help: "Last time index observed on the balance ledger",
		},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "db_latency_seconds",
			Help: "DB latency in seconds splitted by method and execution status",
		},
		[]string{"method", "status"},
	)

	prometheus.MustRegister(
		tokenClientLatency,
		govClientLatency,
		queueReceiveErrorCounter,
		pollerDurationHistogram,
		activeProposalsGauge,
		poolEventProcessingDuration,
		castVoteErrorCounter,
		timeIndexGauge,
		dbLatency,
	)
}

func RecordTokenClientLatency(d time.Duration, method string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	tokenClientLatency.WithLabelValues(method, status.String()).Observe(d.Seconds())
}

func RecordGovClientLatency(d time.Duration, method string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	govClientLatency.WithLabelValues(method, status.String()).Observe(d.Seconds())
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	dbLatency.WithLabelValues(method, status.String()).Observe(d.Seconds())
}

func RecordTimeIndex(height uint64) {
	timeIndexGauge.Set(float64(height))
}

func IncCastVoteFailures() {
	castVoteErrorCounter.Inc()
}

func RecordActiveProposalsCount(count int) {
	activeProposalsGauge.Set(float64(count))
}

func RecordPoolEventProcessingDuration(d time.Duration, eventType string, retry int, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	retryStr := strconv.Itoa(retry)

	poolEventProcessingDuration.WithLabelValues(eventType, status.String(), retryStr).Observe(d.Seconds())
}

func RecordQueueReceiveError() {
	queueReceiveErrorCounter.Inc()
}
