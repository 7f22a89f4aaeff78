package statebus

import (
	"fmt"

	"github.com/dep2p/go-statebus/internal/core/eventbus"
	"github.com/dep2p/go-statebus/internal/core/metrics"
)

// New 创建独立的事件总线
//
// 不启动 Fx 运行时，也不修改全局日志输出；需要生命周期管理时使用 Start。
//
// 示例:
//
//	bus, err := statebus.New(statebus.WithFailurePolicy(statebus.FailurePropagate))
//	if err != nil {
//	    return err
//	}
//	defer bus.Destroy()
func New(opts ...Option) (*Bus, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	cfg, err := o.resolveConfig()
	if err != nil {
		return nil, err
	}

	busOpts, err := eventbus.OptionsFromConfig(cfg.EventBus)
	if err != nil {
		return nil, err
	}

	observer := o.observer
	if observer == nil && o.registerer != nil {
		c := metrics.NewCollector(cfg.Metrics)
		if err := o.registerer.Register(c); err != nil {
			return nil, fmt.Errorf("register eventbus metrics: %w", err)
		}
		observer = c
	}

	busOpts = append(busOpts,
		eventbus.WithObserver(observer),
		eventbus.WithFailureHandler(o.failureHandler),
		eventbus.WithClock(o.clock),
	)
	return eventbus.NewBus(busOpts...), nil
}

// MustNew 与 New 相同，出错时 panic
func MustNew(opts ...Option) *Bus {
	bus, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return bus
}
