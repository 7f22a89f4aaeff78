package statebus

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-statebus/config"
)

// countingObserver 统计发布次数
type countingObserver struct {
	published atomic.Int64
}

func (o *countingObserver) Published(any) { o.published.Add(1) }
func (o *countingObserver) Dropped(any) {}
func (o *countingObserver) Delivered(any, bool, time.Duration) {}
func (o *countingObserver) HandlerFailed(any, bool) {}
func (o *countingObserver) SubscriptionsChanged(int) {}
func (o *countingObserver) CachedKeys(int) {}

// ============================================================================
//                              New 测试
// ============================================================================

// TestNew_Defaults 测试默认构造
func TestNew_Defaults(t *testing.T) {
	bus, err := New()
	require.NoError(t, err)
	require.NotNil(t, bus)
	defer bus.Destroy()

	assert.Equal(t, FailureIsolate, bus.Policy())

	bus.Publish("k", 1)
	var got []any
	bus.SubscribeFunc("k", func(v any) { got = append(got, v) })
	assert.Equal(t, []any{1}, got)
}

// TestNew_FailurePolicy 测试失败策略选项
func TestNew_FailurePolicy(t *testing.T) {
	bus, err := New(WithFailurePolicy(FailurePropagate))
	require.NoError(t, err)
	assert.Equal(t, FailurePropagate, bus.Policy())

	_, err = New(WithFailurePolicy(FailurePolicy(42)))
	assert.Error(t, err)
}

// TestNew_Preset 测试预设与选项的覆盖顺序
func TestNew_Preset(t *testing.T) {
	bus, err := New(WithPreset("development"))
	require.NoError(t, err)
	assert.Equal(t, FailurePropagate, bus.Policy())

	bus, err = New(WithPreset("development"), WithFailurePolicy(FailureIsolate))
	require.NoError(t, err)
	assert.Equal(t, FailureIsolate, bus.Policy())

	_, err = New(WithPreset("turbo"))
	assert.Error(t, err)
}

// TestNew_WithConfig 测试传入配置且不受后续修改影响
func TestNew_WithConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.EventBus.FailurePolicy = config.FailurePolicyPropagate

	bus, err := New(WithConfig(cfg))
	require.NoError(t, err)
	assert.Equal(t, FailurePropagate, bus.Policy())

	cfg.EventBus.FailurePolicy = "bogus"
	_, err = New(WithConfig(cfg))
	assert.Error(t, err)

	_, err = New(WithConfig(nil))
	assert.Error(t, err)
}

// TestNew_WithConfigFile 测试从文件加载配置
func TestNew_WithConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statebus.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"event_bus": {"failure_policy": "propagate"}}`), 0o600))

	bus, err := New(WithConfigFile(path))
	require.NoError(t, err)
	assert.Equal(t, FailurePropagate, bus.Policy())

	_, err = New(WithConfigFile(filepath.Join(t.TempDir(), "missing.json")))
	assert.Error(t, err)

	_, err = New(WithConfigFile(""))
	assert.Error(t, err)
}

// TestNew_FailureHandler 测试失败回调
func TestNew_FailureHandler(t *testing.T) {
	var reported error
	bus, err := New(WithFailureHandler(func(err error) { reported = err }))
	require.NoError(t, err)

	boom := errors.New("boom")
	bus.Subscribe("k", HandlerFunc(func(any) error { return boom }))
	bus.Publish("k", 1)

	var herr *HandlerError
	require.ErrorAs(t, reported, &herr)
	assert.ErrorIs(t, reported, boom)
	assert.Equal(t, "k", herr.Key)
}

// TestNew_WithClock 测试注入时钟
func TestNew_WithClock(t *testing.T) {
	clk := clock.NewMock()
	bus, err := New(WithClock(clk))
	require.NoError(t, err)

	bus.SubscribeFunc("k", func(any) { clk.Add(time.Second) })
	bus.Publish("k", 1)

	assert.Equal(t, time.Second, bus.Stats().TotalHandlerTime)
}

// ============================================================================
//                              指标测试
// ============================================================================

// TestNew_WithMetrics 测试指标注册
func TestNew_WithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	bus, err := New(WithMetrics(reg))
	require.NoError(t, err)

	bus.Publish("k", 1)
	bus.Publish("k", nil)
	bus.SubscribeFunc("k", func(any) {})

	err = testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP statebus_eventbus_published_total Number of values published and cached.
# TYPE statebus_eventbus_published_total counter
statebus_eventbus_published_total 1
# HELP statebus_eventbus_dropped_total Number of nil publishes ignored.
# TYPE statebus_eventbus_dropped_total counter
statebus_eventbus_dropped_total 1
# HELP statebus_eventbus_subscriptions Number of active subscriptions.
# TYPE statebus_eventbus_subscriptions gauge
statebus_eventbus_subscriptions 1
`), "statebus_eventbus_published_total", "statebus_eventbus_dropped_total", "statebus_eventbus_subscriptions")
	assert.NoError(t, err)

	// 同一 Registerer 不能重复注册
	_, err = New(WithMetrics(reg))
	assert.Error(t, err)

	_, err = New(WithMetrics(nil))
	assert.Error(t, err)
}

// TestNew_ObserverTakesPrecedence 测试 WithObserver 优先于 WithMetrics
func TestNew_ObserverTakesPrecedence(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := &countingObserver{}

	bus, err := New(WithMetrics(reg), WithObserver(obs))
	require.NoError(t, err)

	bus.Publish("k", 1)
	assert.Equal(t, int64(1), obs.published.Load())

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Empty(t, families)
}

// TestMustNew 测试 MustNew
func TestMustNew(t *testing.T) {
	assert.NotPanics(t, func() { MustNew() })
	assert.Panics(t, func() { MustNew(WithPreset("turbo")) })
}
