package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "archives_total",
			Help:      "站点导出次数，按结果区分。",
		},
		[]string{"outcome"},
	)

	exportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "duration_seconds",
			Help:      "单次站点导出耗时（秒）。",
			Buckets:   prometheus.DefBuckets,
		},
	)

	archiveSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "archive_size_bytes",
			Help:      "生成的 zip 大小分布。",
			Buckets:   prometheus.ExponentialBuckets(16*1024, 4, 8),
		},
	)

	assetsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "assets_skipped_total",
			Help:      "因解码/扫描/写入失败被跳过的图片数量。",
		},
		[]string{"kind"},
	)

	guardFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "guard_minify_fallback_total",
			Help:      "署名脚本压缩失败、回退为原始脚本的次数。",
		},
	)
)

// Export outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// ObserveExport 记录一次导出的结果、耗时与大小。size 为 0 时不记录大小。
func ObserveExport(outcome string, elapsed time.Duration, size int) {
	exportsTotal.WithLabelValues(outcome).Inc()
	exportDuration.Observe(elapsed.Seconds())
	if size > 0 {
		archiveSizeBytes.Observe(float64(size))
	}
}

// AssetSkipped 记录一个被跳过的图片。
func AssetSkipped(kind string) {
	assetsSkippedTotal.WithLabelValues(kind).Inc()
}

// GuardMinifyFallback 记录一次压缩回退。
func GuardMinifyFallback() {
	guardFallbackTotal.Inc()
}
