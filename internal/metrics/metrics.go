// Package metrics 提供 Prometheus 指标采集
//
// 指标覆盖解析循环的关键路径：发现事件、DHT 查询、
// 地址缓存规模、连接尝试与解析耗时。注册表为实例私有，
// 通过 Server 暴露 /metrics 端点。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace 指标命名空间
const Namespace = "peersh"

// Metrics 持有全部 Prometheus 指标
type Metrics struct {
	registry *prometheus.Registry

	// DiscoveryEvents 按来源统计的发现事件数
	DiscoveryEvents *prometheus.CounterVec

	// DHTQueries 已发起的 DHT 查询数
	DHTQueries prometheus.Counter

	// CachedAddresses 目标节点的缓存地址数
	CachedAddresses prometheus.Gauge

	// SpawnAttempts 连接进程启动次数
	SpawnAttempts prometheus.Counter

	// SpawnFailures 连接进程失败次数
	SpawnFailures prometheus.Counter

	// ResolveDuration 从启动到连接成功的耗时
	ResolveDuration prometheus.Histogram
}

// NewMetrics 创建指标集合
//
// 每个实例持有独立的注册表，可重复创建（测试友好）。
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		DiscoveryEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "discovery_events_total",
			Help:      "Total discovery events by source",
		}, []string{"source"}),
		DHTQueries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "dht_queries_total",
			Help:      "Total DHT lookups issued",
		}),
		CachedAddresses: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "cached_addresses",
			Help:      "Cached addresses for the target peer",
		}),
		SpawnAttempts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "spawn_attempts_total",
			Help:      "Total shell spawn attempts",
		}),
		SpawnFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "spawn_failures_total",
			Help:      "Total failed shell spawns",
		}),
		ResolveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "resolve_duration_seconds",
			Help:      "Time from session start to established connection",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

// Registry 返回底层注册表
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ============================================================================
//                              记录辅助方法
// ============================================================================
//
// 辅助方法均允许 nil 接收者，便于指标作为可选依赖注入。

// RecordDiscovery 记录一次发现事件
func (m *Metrics) RecordDiscovery(source string) {
	if m == nil {
		return
	}
	m.DiscoveryEvents.WithLabelValues(source).Inc()
}

// RecordDHTQuery 记录一次 DHT 查询
func (m *Metrics) RecordDHTQuery() {
	if m == nil {
		return
	}
	m.DHTQueries.Inc()
}

// SetCachedAddresses 更新缓存地址数
func (m *Metrics) SetCachedAddresses(n int) {
	if m == nil {
		return
	}
	m.CachedAddresses.Set(float64(n))
}

// RecordSpawn 记录一次连接尝试
func (m *Metrics) RecordSpawn(failed bool) {
	if m == nil {
		return
	}
	m.SpawnAttempts.Inc()
	if failed {
		m.SpawnFailures.Inc()
	}
}

// RecordResolveDuration 记录解析耗时
func (m *Metrics) RecordResolveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.ResolveDuration.Observe(d.Seconds())
}
