package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors the server records. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	OrdersCreated       prometheus.Counter
	POSTransactions     prometheus.Counter
	InventoryAdjustment *prometheus.CounterVec
	InsufficientStock   prometheus.Counter
	LoginAttempts       *prometheus.CounterVec
}

// New registers the collectors with reg. Passing nil creates unregistered
// collectors, which is what tests use.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roti_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roti_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		OrdersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "roti_orders_created_total",
			Help: "Total number of orders created",
		}),
		POSTransactions: factory.NewCounter(prometheus.CounterOpts{
			Name: "roti_pos_transactions_total",
			Help: "Total number of POS transactions recorded",
		}),
		InventoryAdjustment: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roti_inventory_adjustments_total",
				Help: "Counter inventory ledger adjustments by kind",
			},
			[]string{"kind"},
		),
		InsufficientStock: factory.NewCounter(prometheus.CounterOpts{
			Name: "roti_insufficient_stock_total",
			Help: "Sales rejected because remaining stock was too low",
		}),
		LoginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roti_login_attempts_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) OrderCreated() {
	if m != nil {
		m.OrdersCreated.Inc()
	}
}

func (m *Metrics) POSTransaction() {
	if m != nil {
		m.POSTransactions.Inc()
	}
}

// Adjustment counts one ledger row change; kind is "delivery" or "sale".
func (m *Metrics) Adjustment(kind string, n int) {
	if m != nil {
		m.InventoryAdjustment.WithLabelValues(kind).Add(float64(n))
	}
}

func (m *Metrics) StockRejected() {
	if m != nil {
		m.InsufficientStock.Inc()
	}
}

func (m *Metrics) Login(result string) {
	if m != nil {
		m.LoginAttempts.WithLabelValues(result).Inc()
	}
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
