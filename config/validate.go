package config

import (
	"errors"
	"fmt"
)

// ValidateAll 验证整个配置的有效性
//
// 这是 Config.Validate() 的别名，额外处理 nil。
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并尝试自动修复常见问题
//
// 可修复的问题：
//   - 失败策略为空 -> isolate
//   - 日志级别或格式为空 -> 默认值
//   - 启用指标但命名空间为空 -> 默认命名空间
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	if c.EventBus.FailurePolicy == "" {
		c.EventBus.FailurePolicy = FailurePolicyIsolate
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogConfig().Level
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogConfig().Format
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsConfig().Namespace
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed after fixes: %w", err)
	}
	return c, nil
}

// MustValidate 验证配置，如果失败则 panic
//
// 仅用于初始化阶段或测试代码。
func MustValidate(c *Config) {
	if err := ValidateAll(c); err != nil {
		panic(fmt.Sprintf("invalid config: %v", err))
	}
}
