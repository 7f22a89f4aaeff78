package statebus

import (
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-statebus/config"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 配置来源，cfg 优先于 configFile
	cfg        *config.Config
	configFile string
	preset     string

	// 事件总线
	policy         *FailurePolicy
	failureHandler FailureHandler
	observer       Observer
	clock          clock.Clock

	// 指标
	registerer prometheus.Registerer

	// 日志配置
	logFile string
}

func applyOptions(opts []Option) (*options, error) {
	o := &options{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// resolveConfig 按 配置来源 → 预设 → 单项选项 的顺序合成最终配置
func (o *options) resolveConfig() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case o.cfg != nil:
		cfg = config.CloneConfig(o.cfg)
	case o.configFile != "":
		loaded, err := config.LoadFile(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		cfg = config.NewConfig()
	}

	if o.preset != "" {
		if err := config.ApplyPreset(cfg, o.preset); err != nil {
			return nil, err
		}
	}
	if o.policy != nil {
		cfg.EventBus.FailurePolicy = o.policy.String()
	}
	if o.registerer != nil {
		cfg.Metrics.Enabled = true
	}
	if o.logFile != "" {
		cfg.Log.File = o.logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// ============================================================================
//                              配置来源
// ============================================================================

// WithConfig 使用给定配置
//
// 配置会被复制，调用方之后的修改不影响总线。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		o.cfg = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return errors.New("配置文件路径不能为空")
		}
		o.configFile = path
		return nil
	}
}

// WithPreset 在配置之上应用预设（development/production/minimal）
func WithPreset(name string) Option {
	return func(o *options) error {
		o.preset = name
		return nil
	}
}

// ============================================================================
//                              事件总线选项
// ============================================================================

// WithFailurePolicy 设置处理器失败策略，覆盖配置中的值
func WithFailurePolicy(p FailurePolicy) Option {
	return func(o *options) error {
		if p != FailureIsolate && p != FailurePropagate {
			return fmt.Errorf("unknown failure policy %d", p)
		}
		o.policy = &p
		return nil
	}
}

// WithFailureHandler 设置处理器失败回调
func WithFailureHandler(h FailureHandler) Option {
	return func(o *options) error {
		o.failureHandler = h
		return nil
	}
}

// WithObserver 设置总线事件观察者
//
// 与 WithMetrics 同时使用时以 WithObserver 为准。
func WithObserver(obs Observer) Option {
	return func(o *options) error {
		o.observer = obs
		return nil
	}
}

// WithClock 设置处理器计时用的时钟
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		o.clock = clk
		return nil
	}
}

// ============================================================================
//                              指标选项
// ============================================================================

// WithMetrics 启用 Prometheus 指标并注册到 reg
//
// 示例:
//
//	reg := prometheus.NewRegistry()
//	bus, err := statebus.New(statebus.WithMetrics(reg))
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) error {
		if reg == nil {
			return errors.New("prometheus registerer is nil")
		}
		o.registerer = reg
		return nil
	}
}

// ============================================================================
//                              日志选项
// ============================================================================

// WithLogFile 将日志输出重定向到指定文件
//
// 只对 Start 创建的运行时生效，文件以追加模式打开。
func WithLogFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return errors.New("日志文件路径不能为空")
		}
		o.logFile = path
		return nil
	}
}
