package config

import (
	"errors"
	"regexp"
)

// metricNameRe Prometheus 指标名片段
var metricNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 是否采集 Prometheus 指标
	Enabled bool `json:"enabled"`

	// Namespace 指标命名空间
	Namespace string `json:"namespace"`

	// Subsystem 指标子系统
	Subsystem string `json:"subsystem"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   true,
		Namespace: "statebus",
		Subsystem: "eventbus",
	}
}

// Validate 验证指标配置
func (c MetricsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Namespace != "" && !metricNameRe.MatchString(c.Namespace) {
		return errors.New("metrics.namespace: invalid metric name segment")
	}
	if c.Subsystem != "" && !metricNameRe.MatchString(c.Subsystem) {
		return errors.New("metrics.subsystem: invalid metric name segment")
	}
	return nil
}
