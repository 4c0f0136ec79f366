package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream API metrics
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletscan_api_requests_total",
			Help: "Total number of upstream API requests",
		},
		[]string{"api", "endpoint", "status"}, // data/gamma, /trades, success/error
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "walletscan_api_request_duration_seconds",
			Help:    "Duration of upstream API requests",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"api", "endpoint"},
	)

	Retries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletscan_retries_total",
			Help: "Total number of retried upstream operations",
		},
		[]string{"op"},
	)

	// Market cache
	MarketsCached = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "walletscan_markets_cached",
			Help: "Number of resolved markets in the current cache",
		},
	)

	MarketPagesFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "walletscan_market_pages_failed_total",
			Help: "Market pages skipped after exhausting retries",
		},
	)

	// Wallet analysis
	WalletsAnalyzed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletscan_wallets_analyzed_total",
			Help: "Total number of wallets analyzed",
		},
		[]string{"result"}, // accepted, rejected, failed
	)

	RedFlags = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletscan_red_flags_total",
			Help: "Red flags raised on accepted wallets",
		},
		[]string{"tag"},
	)

	// Scan iterations
	ScansCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "walletscan_scans_completed_total",
			Help: "Completed discovery iterations",
		},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "walletscan_scan_duration_seconds",
			Help:    "Duration of a discovery iteration",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1200},
		},
	)

	// Alerts
	AlertsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletscan_alerts_sent_total",
			Help: "Total number of alerts sent",
		},
		[]string{"status", "type"}, // success/error, discord/smtp/log
	)

	// System health
	HealthChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletscan_health_checks_total",
			Help: "Total number of health check requests",
		},
		[]string{"status"}, // healthy/unhealthy
	)
)

// RecordAPIRequest records API request metrics
func RecordAPIRequest(api, endpoint string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	APIRequests.WithLabelValues(api, endpoint, status).Inc()
	APIRequestDuration.WithLabelValues(api, endpoint).Observe(duration.Seconds())
}

// RecordRetry counts one retried attempt
func RecordRetry(op string) {
	Retries.WithLabelValues(op).Inc()
}

// RecordMarketCache records the outcome of a market cache build
func RecordMarketCache(markets, failedPages int) {
	MarketsCached.Set(float64(markets))
	MarketPagesFailed.Add(float64(failedPages))
}

// RecordWallet records one wallet analysis outcome and its red flag tags
func RecordWallet(result string, flagTags []string) {
	WalletsAnalyzed.WithLabelValues(result).Inc()
	for _, tag := range flagTags {
		RedFlags.WithLabelValues(tag).Inc()
	}
}

// RecordScan records a completed discovery iteration
func RecordScan(duration time.Duration) {
	ScansCompleted.Inc()
	ScanDuration.Observe(duration.Seconds())
}

// RecordAlert records alert delivery
func RecordAlert(sendStatus, alertType string) {
	AlertsSent.WithLabelValues(sendStatus, alertType).Inc()
}

// RecordHealthCheck records health check status
func RecordHealthCheck(healthy bool) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	HealthChecks.WithLabelValues(status).Inc()
}
