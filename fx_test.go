package statebus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-statebus/config"
)

// ============================================================================
//                              Runtime 测试
// ============================================================================

// TestStart_Lifecycle 测试启动与停止
func TestStart_Lifecycle(t *testing.T) {
	ctx := context.Background()
	rt, err := Start(ctx)
	require.NoError(t, err)

	bus := rt.Bus()
	require.NotNil(t, bus)
	assert.NotNil(t, rt.Collector())

	bus.Publish("k", 1)
	sub := bus.SubscribeFunc("k", func(any) {})
	assert.True(t, sub.Active())

	require.NoError(t, rt.Stop(ctx))

	// 停止时销毁总线
	assert.False(t, sub.Active())
	_, ok := bus.CurrentValue("k")
	assert.False(t, ok)

	assert.ErrorIs(t, rt.Stop(ctx), ErrRuntimeStopped)
}

// TestStart_Options 测试选项传入 Fx 模块
func TestStart_Options(t *testing.T) {
	var reported []error
	rt, err := Start(context.Background(),
		WithFailurePolicy(FailurePropagate),
		WithFailureHandler(func(err error) { reported = append(reported, err) }),
	)
	require.NoError(t, err)
	defer rt.Close()

	bus := rt.Bus()
	assert.Equal(t, FailurePropagate, bus.Policy())
	assert.Equal(t, config.FailurePolicyPropagate, rt.Config().EventBus.FailurePolicy)

	bus.Subscribe("k", HandlerFunc(func(any) error { return assert.AnError }))
	bus.Publish("k", 1)
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], assert.AnError)
}

// TestStart_MetricsRegistration 启动时注册指标，停止时注销
func TestStart_MetricsRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	rt, err := Start(context.Background(), WithMetrics(reg))
	require.NoError(t, err)

	rt.Bus().Publish("k", 1)
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	require.NoError(t, rt.Close())

	families, err = reg.Gather()
	require.NoError(t, err)
	assert.Empty(t, families)
}

// TestStart_ObserverDisablesMetrics 自定义观察者替代指标模块
func TestStart_ObserverDisablesMetrics(t *testing.T) {
	obs := &countingObserver{}
	rt, err := Start(context.Background(), WithObserver(obs))
	require.NoError(t, err)
	defer rt.Close()

	rt.Bus().Publish("k", 1)

	assert.Equal(t, int64(1), obs.published.Load())
	assert.Nil(t, rt.Collector())
}

// TestStart_MetricsDisabled 关闭指标时没有采集器
func TestStart_MetricsDisabled(t *testing.T) {
	rt, err := Start(context.Background(), WithPreset("minimal"))
	require.NoError(t, err)
	defer rt.Close()

	assert.Nil(t, rt.Collector())
	rt.Bus().Publish("k", 1)
}

// TestStart_LogFile 测试日志写入文件
func TestStart_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statebus.log")

	rt, err := Start(context.Background(), WithLogFile(path))
	require.NoError(t, err)
	require.NoError(t, rt.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "statebus/fx")
}

// TestStart_InvalidConfig 无效配置直接返回错误
func TestStart_InvalidConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Log.Level = "loud"

	rt, err := Start(context.Background(), WithConfig(cfg))
	assert.Error(t, err)
	assert.Nil(t, rt)

	_, err = Start(context.Background(), WithLogFile(""))
	assert.Error(t, err)
}

// TestStart_DuplicateMetrics 重复注册指标导致启动失败
func TestStart_DuplicateMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rt, err := Start(context.Background(), WithMetrics(reg))
	require.NoError(t, err)
	defer rt.Close()

	_, err = Start(context.Background(), WithMetrics(reg))
	assert.Error(t, err)
}
