package metrics

import (
	"database/sql"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "loyalty"

// 兑换结果标签
const (
	ResultSuccess      = "success"
	ResultOutOfStock   = "out_of_stock"
	ResultInsufficient = "insufficient_points"
	ResultNotFound     = "not_found"
	ResultDuplicate    = "duplicate"
	ResultError        = "error"
)

// MetricsCollector 指标收集器
type MetricsCollector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	panicsTotal         prometheus.Counter

	// 业务指标
	redemptionsTotal   *prometheus.CounterVec
	redeemedItemsTotal prometheus.Counter
	pointsSpentTotal   prometheus.Counter
	ratingsTotal       *prometheus.CounterVec
	likesTotal         *prometheus.CounterVec
	eventsTotal        *prometheus.CounterVec

	registerer prometheus.Registerer
}

// NewMetricsCollector 创建指标收集器，指标注册到 reg
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	f := promauto.With(reg)
	return &MetricsCollector{
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		panicsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "http_panics_recovered_total",
			Help: "Total number of recovered handler panics",
		}),

		redemptionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gift_redemptions_total",
				Help:      "Redemption attempts by result",
			},
			[]string{"mode", "result"},
		),

		redeemedItemsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gift_items_redeemed_total",
			Help:      "Total quantity of gifts redeemed",
		}),

		pointsSpentTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_spent_total",
			Help:      "Total points deducted by redemptions",
		}),

		ratingsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gift_ratings_total",
				Help:      "Rating writes by action",
			},
			[]string{"action"},
		),

		likesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gift_likes_total",
				Help:      "Like toggles by action",
			},
			[]string{"action"},
		),

		eventsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Domain events handed to the broker by result",
			},
			[]string{"topic", "result"},
		),

		registerer: reg,
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, getStatusCategory(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordPanic 记录被恢复的 panic
func (m *MetricsCollector) RecordPanic() {
	m.panicsTotal.Inc()
}

// RecordRedemption 记录一次兑换，成功时累计数量和积分
func (m *MetricsCollector) RecordRedemption(mode, result string, qty int, points int64) {
	m.redemptionsTotal.WithLabelValues(mode, result).Inc()
	if result == ResultSuccess {
		m.redeemedItemsTotal.Add(float64(qty))
		m.pointsSpentTotal.Add(float64(points))
	}
}

// RecordRating 记录评分写入 (create/update/delete)
func (m *MetricsCollector) RecordRating(action string) {
	m.ratingsTotal.WithLabelValues(action).Inc()
}

// RecordLike 记录点赞切换 (like/unlike)
func (m *MetricsCollector) RecordLike(action string) {
	m.likesTotal.WithLabelValues(action).Inc()
}

// RecordEvent 记录事件发布结果
func (m *MetricsCollector) RecordEvent(topic string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.eventsTotal.WithLabelValues(topic, result).Inc()
}

// RegisterDB 注册数据库连接池指标
func (m *MetricsCollector) RegisterDB(db *sql.DB, name string) error {
	return m.registerer.Register(collectors.NewDBStatsCollector(db, name))
}

// getStatusCategory 获取状态分类
func getStatusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return strconv.Itoa(status)
	}
}

var (
	globalCollector *MetricsCollector
	once            sync.Once
)

// GetGlobalCollector 获取注册在默认 registry 上的全局指标收集器
func GetGlobalCollector() *MetricsCollector {
	once.Do(func() {
		globalCollector = NewMetricsCollector(prometheus.DefaultRegisterer)
	})
	return globalCollector
}
