// Package metrics 提供基于Prometheus的指标收集
//
// 指标分两类：
// 1. HTTP请求指标：总数、耗时、并发数
// 2. 业务指标：图书创建、评分提交、封面入库失败、资产清理失败、消息发布
//
// 指标通过/metrics端点暴露，由Prometheus Server定期抓取。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path（/api/v1/books）、status（200/404）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 业务指标

	// BooksCreatedTotal 图书创建总数（Counter）
	BooksCreatedTotal prometheus.Counter

	// RatingsSubmittedTotal 评分提交总数（Counter）
	// 标签：result（success/duplicate/invalid）
	RatingsSubmittedTotal *prometheus.CounterVec

	// ImageIngestFailedTotal 封面入库（转码+写入）失败总数（Counter）
	ImageIngestFailedTotal prometheus.Counter

	// AssetCleanupFailedTotal 资产清理失败总数（Counter）
	// 异步删除封面文件失败时递增，用于发现存储中的孤儿文件
	AssetCleanupFailedTotal prometheus.Counter

	// MessagesPublishedTotal 生命周期事件发布总数（Counter）
	// 标签：routing_key（book.created/book.deleted/book.rated）
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
// 必须在程序启动时调用一次，使用promauto注册到默认Registry。
func InitMetrics() {
	if initialized {
		return
	}
	initialized = true

	// HTTP请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// 图书业务指标
	BooksCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "books_created_total",
			Help: "图书创建总数",
		},
	)

	RatingsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratings_submitted_total",
			Help: "评分提交总数",
		},
		[]string{"result"},
	)

	ImageIngestFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_ingest_failed_total",
			Help: "封面入库失败总数",
		},
	)

	AssetCleanupFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_cleanup_failed_total",
			Help: "封面文件异步清理失败总数",
		},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "生命周期事件发布总数",
		},
		[]string{"routing_key"},
	)
}
