package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "portfoliox"

// 未命中路由的请求统一记为该标签，避免扫描器把任意路径写进指标。
const unmatchedRoute = "unmatched"

var (
	httpRegisterOnce sync.Once

	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP 请求耗时分布（秒）。",
			// 同步导出接口会一直阻塞到 zip 生成完毕
			Buckets: []float64{.005, .025, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route", "code"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP 请求总数。",
		},
		[]string{"method", "route", "code"},
	)

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "当前正在处理的 HTTP 请求数量。",
		},
	)
)

// GinMiddleware records latency and counts per matched route. Paths listed
// in skip (typically /health and /metrics) are not instrumented.
func GinMiddleware(skip ...string) gin.HandlerFunc {
	httpRegisterOnce.Do(func() {
		prometheus.MustRegister(httpLatency, httpRequests, httpInFlight)
	})

	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		code := strconv.Itoa(c.Writer.Status())

		httpLatency.WithLabelValues(c.Request.Method, route, code).Observe(time.Since(start).Seconds())
		httpRequests.WithLabelValues(c.Request.Method, route, code).Inc()
	}
}
