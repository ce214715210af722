package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/pkg/config"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Quotation metrics
	QuotationOperationsCounter prometheus.CounterVec
	QuotationStatusCounter     prometheus.CounterVec

	// Stock deduction metrics
	StockDeductionsCounter       prometheus.Counter
	StockDeductionErrorsCounter  prometheus.Counter
	StockDeductionSkippedCounter prometheus.Counter

	// Inventory metrics
	ProductInventoryGauge prometheus.GaugeVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(cfg *config.Config) {
	// Use metric prefix from configuration
	prefix := cfg.Metrics.Prefix

	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of admin login attempts",
		},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of failed admin logins",
		},
	)

	QuotationOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_quotation_operations_total",
			Help: "Total number of quotation operations",
		},
		[]string{"operation"},
	)

	QuotationStatusCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_quotation_status_transitions_total",
			Help: "Total number of quotation status transitions",
		},
		[]string{"status"},
	)

	StockDeductionsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_stock_deductions_total",
			Help: "Total number of stock deductions applied on quotation approval",
		},
	)

	StockDeductionErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_stock_deduction_errors_total",
			Help: "Total number of per-item stock deduction failures",
		},
	)

	StockDeductionSkippedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_stock_deduction_skipped_total",
			Help: "Total number of deduction items skipped because the product no longer exists",
		},
	)

	ProductInventoryGauge = *promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_product_inventory",
			Help: "Current inventory level for products",
		},
		[]string{"product_id", "product_name"},
	)
}

// RecordQuotationOperation increments the counter for quotation operations
func RecordQuotationOperation(operation string) {
	QuotationOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordStatusTransition increments the counter for quotation status transitions
func RecordStatusTransition(status string) {
	QuotationStatusCounter.WithLabelValues(status).Inc()
}

// UpdateProductInventory updates the gauge for product inventory
func UpdateProductInventory(productID string, productName string, count float64) {
	ProductInventoryGauge.WithLabelValues(productID, productName).Set(count)
}
