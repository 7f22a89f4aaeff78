// Package eventbus 实现事件总线
package eventbus

import (
	"github.com/benbjohnson/clock"

	pkgif "github.com/dep2p/go-statebus/pkg/interfaces"
)

// ============================================================================
// 失败策略
// ============================================================================

// FailurePolicy 处理器失败时的投递策略
type FailurePolicy int

const (
	// FailureIsolate 捕获失败并继续投递给其余处理器（默认）
	FailureIsolate FailurePolicy = iota

	// FailurePropagate 首个失败中止本次剩余投递，panic 会重新抛给发布方
	FailurePropagate
)

// String 返回策略名称
func (p FailurePolicy) String() string {
	switch p {
	case FailureIsolate:
		return "isolate"
	case FailurePropagate:
		return "propagate"
	default:
		return "unknown"
	}
}

// ParseFailurePolicy 解析策略名称，空字符串视为 isolate
func ParseFailurePolicy(s string) (FailurePolicy, bool) {
	switch s {
	case "", "isolate":
		return FailureIsolate, true
	case "propagate":
		return FailurePropagate, true
	default:
		return FailureIsolate, false
	}
}

// FailureHandler 接收处理器失败（*HandlerError 或 *PanicError）
type FailureHandler func(err error)

// ============================================================================
// 选项
// ============================================================================

// Option 总线选项函数
type Option func(*busConfig)

// busConfig 总线内部配置
type busConfig struct {
	policy         FailurePolicy
	failureHandler FailureHandler
	observer       pkgif.Observer
	clock          clock.Clock
	warnCoarse     bool
}

// defaultBusConfig 返回默认配置
func defaultBusConfig() busConfig {
	return busConfig{
		policy:     FailureIsolate,
		observer:   nopObserver{},
		clock:      clock.New(),
		warnCoarse: true,
	}
}

// WithFailurePolicy 设置失败策略
func WithFailurePolicy(p FailurePolicy) Option {
	return func(c *busConfig) {
		c.policy = p
	}
}

// WithFailureHandler 设置失败回调
func WithFailureHandler(h FailureHandler) Option {
	return func(c *busConfig) {
		c.failureHandler = h
	}
}

// WithObserver 设置观察者，nil 被忽略
func WithObserver(o pkgif.Observer) Option {
	return func(c *busConfig) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithClock 设置计时用的时钟，测试中可传入 clock.NewMock()
func WithClock(clk clock.Clock) Option {
	return func(c *busConfig) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithCoarseUnsubscribeWarning 控制不带处理器的 Unsubscribe 是否输出警告
func WithCoarseUnsubscribeWarning(enabled bool) Option {
	return func(c *busConfig) {
		c.warnCoarse = enabled
	}
}
