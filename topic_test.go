package statebus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type peerConfig struct {
	Name string
	Port int
}

// ============================================================================
//                              Topic 测试
// ============================================================================

// TestTopic_Identity 同名主题是不同的键，也不与字符串键冲突
func TestTopic_Identity(t *testing.T) {
	bus := MustNew()
	a := NewTopic[int]("count")
	b := NewTopic[int]("count")

	Publish(bus, a, 1)

	_, ok := CurrentValue(bus, b)
	assert.False(t, ok)
	_, ok = bus.CurrentValue("count")
	assert.False(t, ok)

	v, ok := CurrentValue(bus, a)
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

// TestTopic_NameAndString 测试名称与描述
func TestTopic_NameAndString(t *testing.T) {
	topic := NewTopic[*peerConfig]("peer")

	assert.Equal(t, "peer", topic.Name())
	assert.Equal(t, "peer[*statebus.peerConfig]", topic.String())
}

// TestTopic_Replay 类型化订阅同样回放缓存值
func TestTopic_Replay(t *testing.T) {
	bus := MustNew()
	topic := NewTopic[peerConfig]("peer")

	Publish(bus, topic, peerConfig{Name: "a", Port: 1})

	var got []peerConfig
	sub := Subscribe(bus, topic, func(c peerConfig) { got = append(got, c) })
	Publish(bus, topic, peerConfig{Name: "b", Port: 2})

	assert.Equal(t, []peerConfig{{"a", 1}, {"b", 2}}, got)

	sub.Unsubscribe()
	Publish(bus, topic, peerConfig{Name: "c", Port: 3})
	assert.Len(t, got, 2)
}

// TestTopic_NilPointerIsNoop 发布 nil 指针不改变缓存
func TestTopic_NilPointerIsNoop(t *testing.T) {
	bus := MustNew()
	topic := NewTopic[*peerConfig]("peer")

	cfg := &peerConfig{Name: "a"}
	Publish(bus, topic, cfg)
	Publish(bus, topic, nil)

	v, ok := CurrentValue(bus, topic)
	require.True(t, ok)
	assert.Same(t, cfg, v)
}

// TestTopic_ZeroValueIsCached 零值是有效值
func TestTopic_ZeroValueIsCached(t *testing.T) {
	bus := MustNew()
	topic := NewTopic[bool]("ready")

	Publish(bus, topic, false)

	var got []bool
	Subscribe(bus, topic, func(v bool) { got = append(got, v) })
	assert.Equal(t, []bool{false}, got)
}

// TestTopic_TypeMismatch 通过原始接口写入错误类型时类型化处理器被跳过
func TestTopic_TypeMismatch(t *testing.T) {
	var reported error
	bus, err := New(WithFailureHandler(func(err error) { reported = err }))
	require.NoError(t, err)

	topic := NewTopic[int]("count")
	bus.Publish(topic, "not an int")

	called := false
	Subscribe(bus, topic, func(int) { called = true })

	assert.False(t, called)
	assert.ErrorIs(t, reported, ErrTypeMismatch)

	_, ok := CurrentValue(bus, topic)
	assert.False(t, ok)

	err = bus.PublishSync(topic, 1.5)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

// TestTopic_PublishSync 测试类型化同步发布
func TestTopic_PublishSync(t *testing.T) {
	bus := MustNew()
	topic := NewTopic[string]("name")

	Subscribe(bus, topic, func(string) { panic("bad") })

	err := PublishSync(bus, topic, "x")
	assert.ErrorIs(t, err, ErrHandlerPanic)

	var perr *PanicError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, topic, perr.Key)
}

// TestTopic_NilHandler nil 处理器返回未激活的订阅
func TestTopic_NilHandler(t *testing.T) {
	bus := MustNew()
	topic := NewTopic[int]("count")

	sub := Subscribe[int](bus, topic, nil)

	assert.False(t, sub.Active())
	assert.False(t, bus.HasListeners(topic))
}
