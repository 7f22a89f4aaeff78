package statebus

import (
	"fmt"
	"reflect"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型化主题
// ════════════════════════════════════════════════════════════════════════════

// Topic 携带载荷类型的事件键
//
// Topic 按指针身份比较：两个同名的 Topic 是不同的键，也不会与字符串键冲突。
//
// 示例:
//
//	var Ready = statebus.NewTopic[bool]("ready")
//
//	statebus.Subscribe(bus, Ready, func(ok bool) { ... })
//	statebus.Publish(bus, Ready, true)
type Topic[T any] struct {
	name string
}

// NewTopic 创建类型化主题
func NewTopic[T any](name string) *Topic[T] {
	return &Topic[T]{name: name}
}

// Name 返回主题名称
func (t *Topic[T]) Name() string {
	return t.name
}

// String 返回 "name[T]" 形式的描述，出现在日志与指标标签中
func (t *Topic[T]) String() string {
	return fmt.Sprintf("%s[%s]", t.name, reflect.TypeOf((*T)(nil)).Elem())
}

// Subscribe 订阅类型化主题
//
// 若主题已有缓存值，fn 在返回前被调用一次。缓存值不是 T 类型时 fn 不会被调用，
// 总线按失败策略上报一次 ErrTypeMismatch。
func Subscribe[T any](bus EventBus, t *Topic[T], fn func(T)) Subscription {
	if fn == nil {
		return bus.Subscribe(t, nil)
	}
	return bus.Subscribe(t, HandlerFunc(func(value any) error {
		v, ok := value.(T)
		if !ok {
			return fmt.Errorf("%w: topic %s got %T", ErrTypeMismatch, t, value)
		}
		fn(v)
		return nil
	}))
}

// Publish 向类型化主题发布值
func Publish[T any](bus EventBus, t *Topic[T], v T) {
	bus.Publish(t, v)
}

// PublishSync 向类型化主题发布值并返回处理器失败
func PublishSync[T any](bus EventBus, t *Topic[T], v T) error {
	return bus.PublishSync(t, v)
}

// CurrentValue 返回主题的缓存值
//
// 缓存不存在或类型不是 T 时返回零值与 false。
func CurrentValue[T any](bus EventBus, t *Topic[T]) (T, bool) {
	var zero T
	v, ok := bus.CurrentValue(t)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
