package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保留默认值。
//
// 示例 JSON:
//
//	{
//	  "event_bus": {"failure_policy": "propagate"},
//	  "metrics": {"enabled": false},
//	  "log": {"level": "debug", "format": "json"}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadFile 从 JSON 文件加载配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return FromJSON(data)
}

// ToJSON 将配置序列化为带缩进的 JSON
func (c *Config) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// ApplyPreset 应用预设配置
//
// 支持的预设：
//   - "development": debug 日志，失败直接传播，输出 Fx 事件
//   - "production": JSON 日志，失败隔离
//   - "minimal": 关闭指标，只输出警告以上日志
func ApplyPreset(cfg *Config, presetName string) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	switch presetName {
	case "development":
		cfg.EventBus.FailurePolicy = FailurePolicyPropagate
		cfg.Log.Level = "debug"
		cfg.Log.Format = "text"
		cfg.Log.FxEvents = true
	case "production":
		cfg.EventBus.FailurePolicy = FailurePolicyIsolate
		cfg.Log.Level = "info"
		cfg.Log.Format = "json"
		cfg.Log.FxEvents = false
	case "minimal":
		cfg.Metrics.Enabled = false
		cfg.Log.Level = "warn"
	default:
		return fmt.Errorf("unknown preset: %s", presetName)
	}
	return nil
}

// CloneConfig 克隆配置
func CloneConfig(cfg *Config) *Config {
	if cfg == nil {
		return nil
	}
	cloned := *cfg
	return &cloned
}
