package metrics

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-statebus/config"
	pkgif "github.com/dep2p/go-statebus/pkg/interfaces"
)

// 标签取值
const (
	deliveryLive   = "live"
	deliveryReplay = "replay"
	failureError   = "error"
	failurePanic   = "panic"
)

// Collector 事件总线 Prometheus 指标
//
// Collector 同时实现 pkgif.Observer 与 prometheus.Collector。
// 指标不带事件键标签，键空间是开放的。
type Collector struct {
	published      prometheus.Counter
	dropped        prometheus.Counter
	deliveries     *prometheus.CounterVec
	failures       *prometheus.CounterVec
	handlerSeconds prometheus.Histogram
	subscriptions  prometheus.Gauge
	cachedKeys     prometheus.Gauge
	publishRate    prometheus.GaugeFunc

	rate *RateMeter
}

// 确保 Collector 实现两个接口
var (
	_ pkgif.Observer       = (*Collector)(nil)
	_ prometheus.Collector = (*Collector)(nil)
)

// NewCollector 创建指标采集器
func NewCollector(cfg config.MetricsConfig) *Collector {
	return NewCollectorWithClock(cfg, nil)
}

// NewCollectorWithClock 创建指标采集器，发布速率按 clk 计时
func NewCollectorWithClock(cfg config.MetricsConfig, clk clock.Clock) *Collector {
	ns, sub := cfg.Namespace, cfg.Subsystem
	c := &Collector{
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "published_total",
			Help: "Number of values published and cached.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "dropped_total",
			Help: "Number of nil publishes ignored.",
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "deliveries_total",
			Help: "Number of successful handler invocations by kind (live or replay).",
		}, []string{"kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub,
			Name: "handler_failures_total",
			Help: "Number of handler failures by reason (error or panic).",
		}, []string{"reason"}),
		handlerSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: sub,
			Name:    "handler_duration_seconds",
			Help:    "Duration of successful handler invocations.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		subscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: sub,
			Name: "subscriptions",
			Help: "Number of active subscriptions.",
		}),
		cachedKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: sub,
			Name: "cached_keys",
			Help: "Number of keys holding a cached value.",
		}),
	}
	c.rate = NewRateMeter(clk)
	c.publishRate = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: ns, Subsystem: sub,
		Name: "publish_rate",
		Help: "Average publishes per second over the last minute.",
	}, c.PublishRate)
	return c
}

// PublishRate 返回最近 60 秒的平均发布速率（次/秒）
func (c *Collector) PublishRate() float64 {
	return c.rate.Rate()
}

// ============================================================================
// pkgif.Observer
// ============================================================================

// Published 记录有效发布
func (c *Collector) Published(any) {
	c.published.Inc()
	c.rate.Add(1)
}

// Dropped 记录被忽略的 nil 发布
func (c *Collector) Dropped(any) {
	c.dropped.Inc()
}

// Delivered 记录成功投递
func (c *Collector) Delivered(_ any, replay bool, elapsed time.Duration) {
	kind := deliveryLive
	if replay {
		kind = deliveryReplay
	}
	c.deliveries.WithLabelValues(kind).Inc()
	c.handlerSeconds.Observe(elapsed.Seconds())
}

// HandlerFailed 记录处理器失败
func (c *Collector) HandlerFailed(_ any, panicked bool) {
	reason := failureError
	if panicked {
		reason = failurePanic
	}
	c.failures.WithLabelValues(reason).Inc()
}

// SubscriptionsChanged 调整活跃订阅数
func (c *Collector) SubscriptionsChanged(delta int) {
	c.subscriptions.Add(float64(delta))
}

// CachedKeys 设置缓存键数量
func (c *Collector) CachedKeys(n int) {
	c.cachedKeys.Set(float64(n))
}

// ============================================================================
// prometheus.Collector
// ============================================================================

// Describe 实现 prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.published.Describe(ch)
	c.dropped.Describe(ch)
	c.deliveries.Describe(ch)
	c.failures.Describe(ch)
	c.handlerSeconds.Describe(ch)
	c.subscriptions.Describe(ch)
	c.cachedKeys.Describe(ch)
	c.publishRate.Describe(ch)
}

// Collect 实现 prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.published.Collect(ch)
	c.dropped.Collect(ch)
	c.deliveries.Collect(ch)
	c.failures.Collect(ch)
	c.handlerSeconds.Collect(ch)
	c.subscriptions.Collect(ch)
	c.cachedKeys.Collect(ch)
	c.publishRate.Collect(ch)
}
