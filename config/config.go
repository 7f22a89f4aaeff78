// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载和保存配置
//   - 支持预设配置（development/production/minimal）
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.EventBus.FailurePolicy = config.FailurePolicyPropagate
//
//	// 应用预设
//	config.ApplyPreset(cfg, "production")
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
package config

import "go.uber.org/multierr"

// Config 是 statebus 的完整配置结构
//
// 配置按照功能模块组织：
//   - EventBus: 事件总线行为
//   - Metrics: Prometheus 指标
//   - Log: 日志输出
type Config struct {
	// EventBus 事件总线配置
	EventBus EventBusConfig `json:"event_bus"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`

	// Log 日志配置
	Log LogConfig `json:"log"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		EventBus: DefaultEventBusConfig(),
		Metrics:  DefaultMetricsConfig(),
		Log:      DefaultLogConfig(),
	}
}

// Validate 验证配置的有效性
//
// 所有子配置都会被检查，返回的错误合并了全部问题。
func (c *Config) Validate() error {
	return multierr.Combine(
		c.EventBus.Validate(),
		c.Metrics.Validate(),
		c.Log.Validate(),
	)
}
