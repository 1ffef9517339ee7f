package monitor

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics 定义业务监控指标
type BusinessMetrics struct {
	ConnectAttemptsTotal prometheus.Counter
	ConnectOutcomesTotal *prometheus.CounterVec // outcome: restored / new / cancelled / failed
	SignRequestsTotal    *prometheus.CounterVec // outcome: success / failed
	SessionValidations   *prometheus.CounterVec // result: valid / invalid
	NetworkErrorsTotal   *prometheus.CounterVec // kind: cors / connection / timeout / ...
	EventsConsumedTotal  *prometheus.CounterVec // type: wallet_connected / wallet_disconnected / transaction_signed
	RelaySubmitDuration  prometheus.Histogram
	ModalWaitDuration    prometheus.Histogram
}

// Global Metrics Instance
var Business *BusinessMetrics

var httpRequestsTotal *prometheus.CounterVec

// Init 初始化业务指标
func Init() {
	if Business != nil {
		return
	}
	Business = &BusinessMetrics{
		ConnectAttemptsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bridge_connect_attempts_total",
			Help: "The total number of wallet connect attempts",
		}),
		ConnectOutcomesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_connect_outcomes_total",
			Help: "Connect outcomes by kind",
		}, []string{"outcome"}),
		SignRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_sign_requests_total",
			Help: "Transaction sign requests by outcome",
		}, []string{"outcome"}),
		SessionValidations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_session_validations_total",
			Help: "Session validation results",
		}, []string{"result"}),
		NetworkErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_network_errors_total",
			Help: "Classified network errors by kind",
		}, []string{"kind"}),
		EventsConsumedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_events_consumed_total",
			Help: "Wallet events consumed from the message queue by type",
		}, []string{"type"}),
		RelaySubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bridge_relay_submit_duration_seconds",
			Help:    "Duration of submit-and-wait calls against the relay",
			Buckets: prometheus.DefBuckets,
		}),
		ModalWaitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bridge_modal_wait_duration_seconds",
			Help:    "Time users spend on the code input before submitting",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		}),
	}

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_http_requests_total",
		Help: "HTTP requests by path and status",
	}, []string{"path", "status"})
}

// PrometheusMiddleware 请求计数埋点
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		httpRequestsTotal.WithLabelValues(c.FullPath(), strconv.Itoa(c.Writer.Status())).Inc()
	}
}
