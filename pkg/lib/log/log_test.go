package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withDefault 测试结束后恢复默认 logger
func withDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

// TestLazyLogger_Component 测试组件字段
func TestLazyLogger_Component(t *testing.T) {
	withDefault(t)

	var buf bytes.Buffer
	SetOutputWithLevel(&buf, LevelDebug)

	Logger("core/eventbus").Debug("hello", "key", "k1")

	out := buf.String()
	assert.Contains(t, out, "component=core/eventbus")
	assert.Contains(t, out, "key=k1")
	assert.Contains(t, out, "msg=hello")
}

// TestLazyLogger_FollowsDefault 测试懒加载跟随默认 logger 切换
func TestLazyLogger_FollowsDefault(t *testing.T) {
	withDefault(t)

	l := Logger("test")

	var first, second bytes.Buffer
	SetOutput(&first)
	l.Info("one")
	SetOutput(&second)
	l.Info("two")

	assert.Contains(t, first.String(), "one")
	assert.NotContains(t, first.String(), "two")
	assert.Contains(t, second.String(), "two")
}

// TestSetup_Level 测试级别过滤
func TestSetup_Level(t *testing.T) {
	withDefault(t)

	var buf bytes.Buffer
	Setup(&buf, LevelWarn, false)

	l := Logger("test")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("also shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "also shown")
}

// TestSetup_JSON 测试 JSON 输出
func TestSetup_JSON(t *testing.T) {
	withDefault(t)

	var buf bytes.Buffer
	Setup(&buf, LevelInfo, true)

	Logger("core/metrics").With("subsystem", "eventbus").Info("registered")

	line := strings.TrimSpace(buf.String())
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "core/metrics", rec["component"])
	assert.Equal(t, "eventbus", rec["subsystem"])
	assert.Equal(t, "registered", rec["msg"])
}
