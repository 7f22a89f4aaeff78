package metrics

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-statebus/config"
	pkgif "github.com/dep2p/go-statebus/pkg/interfaces"
	"github.com/dep2p/go-statebus/pkg/lib/log"
)

var logger = log.Logger("core/metrics")

// Params Metrics 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config        `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
	Clock      clock.Clock           `optional:"true"`
}

// Result Metrics 输出
//
// 指标关闭时两个字段均为 nil，事件总线会退回空观察者。
type Result struct {
	fx.Out

	Observer  pkgif.Observer
	Collector *Collector
}

// Module 是 metrics 的 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(NewCollectorFromParams),
	fx.Invoke(registerLifecycle),
)

// NewCollectorFromParams 从参数创建 Collector
//
// 未提供 Registerer 时采集器不会自动注册，调用方可以自行注册 Result.Collector。
func NewCollectorFromParams(p Params) Result {
	cfg := config.DefaultMetricsConfig()
	if p.UnifiedCfg != nil {
		cfg = p.UnifiedCfg.Metrics
	}
	if !cfg.Enabled {
		return Result{}
	}
	c := NewCollectorWithClock(cfg, p.Clock)
	return Result{
		Observer:  c,
		Collector: c,
	}
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In

	LC         fx.Lifecycle
	Collector  *Collector            `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// registerLifecycle 启动时注册采集器，停止时注销
func registerLifecycle(in lifecycleInput) {
	if in.Collector == nil || in.Registerer == nil {
		return
	}
	in.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if err := in.Registerer.Register(in.Collector); err != nil {
				return fmt.Errorf("register eventbus metrics: %w", err)
			}
			logger.Debug("事件总线指标已注册")
			return nil
		},
		OnStop: func(_ context.Context) error {
			in.Registerer.Unregister(in.Collector)
			return nil
		},
	})
}
