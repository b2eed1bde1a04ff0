// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集应用和系统指标，指标随主 HTTP 服务暴露.
package metrics

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lostyway/cloud-file-storage/pkg/configs"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// UploadBytes 上传字节直方图.
	UploadBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "upload_size_bytes",
			Help:    "Size distribution of accepted document uploads",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)

	// OutboxDispatched 出箱事件分发计数.
	OutboxDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_events_dispatched_total",
			Help: "Outbox events published to the bus",
		},
		[]string{"result"},
	)

	registry     = prometheus.NewRegistry()
	registerOnce sync.Once
)

// Registry 返回应用级Prometheus注册表，惰性注册标准收集器与自定义指标.
func Registry() *prometheus.Registry {
	registerOnce.Do(func() {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			RequestCounter,
			RequestDuration,
			UploadBytes,
			OutboxDispatched,
		)
	})

	return registry
}

// RegisterRoutes 在主引擎上挂载指标端点.
func RegisterRoutes(cfg configs.MetricsConfig, engine *gin.Engine) {
	if !cfg.Enabled {
		return
	}

	engine.GET(cfg.Path, gin.WrapH(promhttp.HandlerFor(Registry(), promhttp.HandlerOpts{})))
}
