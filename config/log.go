package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别：debug/info/warn/error
	Level string `json:"level"`

	// Format 输出格式：text 或 json
	Format string `json:"format"`

	// File 日志文件路径，为空时输出到 stderr
	File string `json:"file,omitempty"`

	// FxEvents 是否输出 Fx 依赖注入事件
	FxEvents bool `json:"fx_events"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "text",
	}
}

// SlogLevel 将 Level 转换为 slog.Level
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(c.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Format)
	}
}
