package config

import "fmt"

// 失败策略名称
const (
	// FailurePolicyIsolate 捕获处理器失败并继续投递
	FailurePolicyIsolate = "isolate"

	// FailurePolicyPropagate 首个失败中止本次投递
	FailurePolicyPropagate = "propagate"
)

// EventBusConfig 事件总线配置
type EventBusConfig struct {
	// FailurePolicy 处理器失败策略：isolate 或 propagate
	FailurePolicy string `json:"failure_policy"`

	// WarnCoarseUnsubscribe 不带处理器的 Unsubscribe 是否输出警告
	WarnCoarseUnsubscribe bool `json:"warn_coarse_unsubscribe"`
}

// DefaultEventBusConfig 返回默认事件总线配置
func DefaultEventBusConfig() EventBusConfig {
	return EventBusConfig{
		FailurePolicy:         FailurePolicyIsolate,
		WarnCoarseUnsubscribe: true,
	}
}

// Validate 验证事件总线配置
func (c EventBusConfig) Validate() error {
	switch c.FailurePolicy {
	case FailurePolicyIsolate, FailurePolicyPropagate:
		return nil
	default:
		return fmt.Errorf("event_bus.failure_policy: unknown policy %q", c.FailurePolicy)
	}
}
