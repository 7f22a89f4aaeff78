// Package eventbus 实现事件总线
package eventbus

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-statebus/config"
	pkgif "github.com/dep2p/go-statebus/pkg/interfaces"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Params Fx 模块输入参数
type Params struct {
	fx.In

	UnifiedCfg     *config.Config `optional:"true"`
	Observer       pkgif.Observer `optional:"true"`
	FailureHandler FailureHandler `optional:"true"`
	Clock          clock.Clock    `optional:"true"`
}

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	Bus      *Bus
	EventBus pkgif.EventBus
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("eventbus",
		fx.Provide(ProvideEventBus),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideEventBus 提供 EventBus 实例
func ProvideEventBus(p Params) (Result, error) {
	cfg := config.DefaultEventBusConfig()
	if p.UnifiedCfg != nil {
		cfg = p.UnifiedCfg.EventBus
	}

	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return Result{}, err
	}
	opts = append(opts,
		WithObserver(p.Observer),
		WithFailureHandler(p.FailureHandler),
	)
	if p.Clock != nil {
		opts = append(opts, WithClock(p.Clock))
	}

	bus := NewBus(opts...)
	return Result{
		Bus:      bus,
		EventBus: bus,
	}, nil
}

// OptionsFromConfig 将配置转换为总线选项
func OptionsFromConfig(cfg config.EventBusConfig) ([]Option, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, ok := ParseFailurePolicy(cfg.FailurePolicy)
	if !ok {
		return nil, fmt.Errorf("unknown failure policy %q", cfg.FailurePolicy)
	}
	return []Option{
		WithFailurePolicy(policy),
		WithCoarseUnsubscribeWarning(cfg.WarnCoarseUnsubscribe),
	}, nil
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC  fx.Lifecycle
	Bus *Bus
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Debug("事件总线已启动", "policy", input.Bus.Policy())
			return nil
		},
		OnStop: func(_ context.Context) error {
			// 停止时释放全部订阅与缓存
			input.Bus.Destroy()
			return nil
		},
	})
}

// ============================================================================
// 模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "eventbus"
	// Description 模块描述
	Description = "事件总线模块，提供带最新值缓存与订阅回放的发布/订阅机制"
)
